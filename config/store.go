package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists AppSettings to a JSON file. Reads are concurrent; writes
// are serialized and atomic (write-to-temp then rename).
type Store struct {
	path string

	mu       sync.RWMutex
	settings AppSettings
}

// OpenStore loads settings from path. If the file does not exist yet, the
// defaults are written out and returned, so the first run leaves a valid
// settings file behind.
func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.settings = DefaultSettings()
		if err := s.flush(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings AppSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	s.settings = settings
	return s, nil
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Save replaces the settings and persists them to disk.
func (s *Store) Save(settings AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return s.flush()
}

// ResolveProvider returns the effective configuration for a provider type:
// the stored user configuration merged over the compiled-in defaults, with
// a <PROVIDER>_MODEL environment override winning over both.
func (s *Store) ResolveProvider(providerType ProviderType) (ProviderConfig, error) {
	s.mu.RLock()
	override, err := s.settings.Provider(providerType)
	s.mu.RUnlock()
	if err != nil {
		return ProviderConfig{}, err
	}

	cfg, err := Resolve(providerType, override)
	if err != nil {
		return ProviderConfig{}, err
	}
	if model := envModelFor(providerType); model != "" {
		cfg.Model = model
	}
	return cfg, nil
}

// flush writes the settings file. Caller must hold the write lock.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
