// Package downloads writes exported files into the user's Downloads folder.
package downloads

import (
	"fmt"
	"os"
	"path/filepath"
)

// SaveFile writes content under the user's Downloads directory and returns
// the full path of the written file. The directory is created if missing.
func SaveFile(filename string, content []byte) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}

	dir := filepath.Join(home, "Downloads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create downloads directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}
