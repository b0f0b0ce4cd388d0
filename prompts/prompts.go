// Package prompts manages the editable prompt templates behind each tool.
//
// Information Hiding:
// - JSON persistence format of the prompt collection
// - Built-in defaults and the custom/default distinction
// - Placeholder substitution syntax

package prompts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// PromptVariable documents one placeholder a template accepts.
type PromptVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Example     string `json:"example"`
	Required    bool   `json:"required"`
}

// ToolPrompt is the template configuration for a single tool.
type ToolPrompt struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Template      string           `json:"template"`
	Variables     []PromptVariable `json:"variables"`
	SystemMessage string           `json:"system_message,omitempty"`
	IsCustom      bool             `json:"is_custom"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
}

// Collection is the versioned on-disk set of prompts, keyed by tool ID.
type Collection struct {
	Version string                `json:"version"`
	Prompts map[string]ToolPrompt `json:"prompts"`
}

// DefaultCollection returns a collection holding only the built-in prompts.
func DefaultCollection() Collection {
	return Collection{
		Version: collectionVersion,
		Prompts: DefaultPrompts(),
	}
}

// Store persists the prompt collection to a JSON file. Reads are
// concurrent; writes are serialized and atomic.
type Store struct {
	path string

	mu         sync.RWMutex
	collection Collection
}

// OpenStore loads the collection from path. A missing file is seeded with
// the defaults so the first run leaves a valid prompts file behind.
func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create prompts directory: %w", err)
		}
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.collection = DefaultCollection()
		if err := s.flush(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	collection, err := parseCollection(data)
	if err != nil {
		return nil, err
	}
	s.collection = collection
	return s, nil
}

// Get returns the effective prompt for a tool: the stored custom prompt
// when one exists, otherwise the built-in default.
func (s *Store) Get(toolID string) (ToolPrompt, error) {
	s.mu.RLock()
	stored, ok := s.collection.Prompts[toolID]
	s.mu.RUnlock()
	if ok && stored.IsCustom {
		return stored, nil
	}

	if def, ok := DefaultPrompts()[toolID]; ok {
		return def, nil
	}
	if ok {
		return stored, nil
	}
	return ToolPrompt{}, fmt.Errorf("unknown tool: %q", toolID)
}

// All returns the effective prompt for every known tool.
func (s *Store) All() map[string]ToolPrompt {
	result := DefaultPrompts()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, p := range s.collection.Prompts {
		if p.IsCustom {
			result[id] = p
		} else if _, known := result[id]; !known {
			result[id] = p
		}
	}
	return result
}

// Save stores a customized prompt for a tool. The prompt is marked custom
// and its updated timestamp refreshed.
func (s *Store) Save(toolID string, prompt ToolPrompt) error {
	prompt.ID = toolID
	prompt.IsCustom = true
	prompt.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if prompt.CreatedAt == "" {
		prompt.CreatedAt = prompt.UpdatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection.Prompts[toolID] = prompt
	return s.flush()
}

// Reset restores a tool to its built-in default. Resetting a tool that was
// never customized is a no-op.
func (s *Store) Reset(toolID string) error {
	def, ok := DefaultPrompts()[toolID]
	if !ok {
		return fmt.Errorf("no default prompt found for tool: %q", toolID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection.Prompts[toolID] = def
	return s.flush()
}

// Export serializes the full collection as indented JSON.
func (s *Store) Export() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.MarshalIndent(s.collection, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize prompts for export: %w", err)
	}
	return string(data), nil
}

// Import replaces the collection with one parsed from data. The input is
// validated before anything is overwritten, and every imported prompt is
// marked custom.
func (s *Store) Import(data string) error {
	collection, err := parseCollection([]byte(data))
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for id, p := range collection.Prompts {
		p.IsCustom = true
		p.UpdatedAt = now
		collection.Prompts[id] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection = collection
	return s.flush()
}

// Substitute replaces {name} placeholders in the template with the given
// values. Placeholders with no matching value are left intact.
func Substitute(template string, values map[string]string) string {
	result := template
	for name, value := range values {
		result = strings.ReplaceAll(result, "{"+name+"}", value)
	}
	return result
}

func parseCollection(data []byte) (Collection, error) {
	var collection Collection
	if err := json.Unmarshal(data, &collection); err != nil {
		return Collection{}, fmt.Errorf("failed to parse prompts: %w", err)
	}
	if collection.Prompts == nil {
		return Collection{}, fmt.Errorf("failed to parse prompts: missing prompts map")
	}
	for id, p := range collection.Prompts {
		if p.Template == "" {
			return Collection{}, fmt.Errorf("invalid prompt %q: empty template", id)
		}
	}
	if collection.Version == "" {
		collection.Version = collectionVersion
	}
	return collection, nil
}

// flush writes the prompts file. Caller must hold the write lock.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.collection, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize prompts: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write prompts file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace prompts file: %w", err)
	}
	return nil
}
