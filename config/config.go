// Package config provides provider configuration and application settings.
//
// Two concerns live here:
// - The provider registry: compiled-in defaults per provider type and a
//   pure merge of user overrides over those defaults.
// - The settings store: a JSON file with an explicit load/save lifecycle,
//   safe for concurrent readers with a single writer.

package config

import (
	"fmt"
	"strings"
)

// ProviderType identifies a supported AI provider.
type ProviderType string

const (
	ProviderOllama    ProviderType = "ollama"
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderGemini    ProviderType = "gemini"
)

// ProviderTypes lists all supported providers in display order.
func ProviderTypes() []ProviderType {
	return []ProviderType{ProviderOllama, ProviderOpenAI, ProviderAnthropic, ProviderGemini}
}

// Provider aliases map to canonical names.
var providerAliases = map[string]ProviderType{
	"claude": ProviderAnthropic,
	"google": ProviderGemini,
	"gpt":    ProviderOpenAI,
}

// ParseProviderType parses a provider from string (case-insensitive, accepts aliases).
func ParseProviderType(s string) (ProviderType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if canonical, ok := providerAliases[normalized]; ok {
		return canonical, nil
	}
	switch ProviderType(normalized) {
	case ProviderOllama, ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return ProviderType(normalized), nil
	default:
		return "", fmt.Errorf("unknown provider: %q", s)
	}
}

// ProviderConfig holds connection parameters for one provider.
// The credential is never part of this struct; it lives in the keystore.
type ProviderConfig struct {
	ProviderType ProviderType `json:"provider_type"`
	BaseURL      string       `json:"base_url"`
	Model        string       `json:"model"`
	Enabled      bool         `json:"enabled"`
}

// providerDefaults holds the compiled-in configuration per provider.
var providerDefaults = map[ProviderType]ProviderConfig{
	ProviderOllama: {
		ProviderType: ProviderOllama,
		BaseURL:      "http://localhost:11434",
		Model:        "llama3.1",
		Enabled:      true,
	},
	ProviderOpenAI: {
		ProviderType: ProviderOpenAI,
		BaseURL:      "https://api.openai.com/v1",
		Model:        "gpt-4",
		Enabled:      false,
	},
	ProviderAnthropic: {
		ProviderType: ProviderAnthropic,
		BaseURL:      "https://api.anthropic.com",
		Model:        "claude-3-sonnet-20240229",
		Enabled:      false,
	},
	ProviderGemini: {
		ProviderType: ProviderGemini,
		BaseURL:      "https://generativelanguage.googleapis.com/v1beta",
		Model:        "gemini-pro",
		Enabled:      false,
	},
}

// Defaults returns the compiled-in configuration for a provider type.
// Pure: no disk or network access.
func Defaults(providerType ProviderType) (ProviderConfig, error) {
	cfg, ok := providerDefaults[providerType]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("unknown provider: %q", providerType)
	}
	return cfg, nil
}

// Resolve merges a user override over the defaults for a provider type,
// field by field. An explicit user value wins; an empty field falls back
// to the default, so an empty override changes nothing. The Enabled flag
// is taken from the override only when the override carries any stored
// configuration at all: false is a meaningful user choice on a saved
// config, but a fully empty override cannot express one.
func Resolve(providerType ProviderType, override ProviderConfig) (ProviderConfig, error) {
	cfg, err := Defaults(providerType)
	if err != nil {
		return ProviderConfig{}, err
	}
	if isEmptyOverride(override) {
		return cfg, nil
	}
	if override.BaseURL != "" {
		cfg.BaseURL = override.BaseURL
	}
	if override.Model != "" {
		cfg.Model = override.Model
	}
	cfg.Enabled = override.Enabled
	return cfg, nil
}

// isEmptyOverride reports whether an override carries no configuration.
// The provider type tag alone does not count; stored settings always
// persist at least a base URL and model alongside the Enabled flag.
func isEmptyOverride(override ProviderConfig) bool {
	return override.BaseURL == "" && override.Model == "" && !override.Enabled
}

// AppSettings is the full user-configurable state persisted to disk.
type AppSettings struct {
	PreferredProvider ProviderType   `json:"preferred_provider"`
	Ollama            ProviderConfig `json:"ollama"`
	OpenAI            ProviderConfig `json:"openai"`
	Anthropic         ProviderConfig `json:"anthropic"`
	Gemini            ProviderConfig `json:"gemini"`
}

// DefaultSettings returns settings with every provider at its defaults and
// Ollama preferred (the only provider usable without a credential).
func DefaultSettings() AppSettings {
	return AppSettings{
		PreferredProvider: ProviderOllama,
		Ollama:            providerDefaults[ProviderOllama],
		OpenAI:            providerDefaults[ProviderOpenAI],
		Anthropic:         providerDefaults[ProviderAnthropic],
		Gemini:            providerDefaults[ProviderGemini],
	}
}

// Provider returns the configuration for a provider type.
func (s *AppSettings) Provider(providerType ProviderType) (ProviderConfig, error) {
	switch providerType {
	case ProviderOllama:
		return s.Ollama, nil
	case ProviderOpenAI:
		return s.OpenAI, nil
	case ProviderAnthropic:
		return s.Anthropic, nil
	case ProviderGemini:
		return s.Gemini, nil
	default:
		return ProviderConfig{}, fmt.Errorf("unknown provider: %q", providerType)
	}
}

// SetProvider replaces the configuration for a provider type.
func (s *AppSettings) SetProvider(providerType ProviderType, cfg ProviderConfig) error {
	cfg.ProviderType = providerType
	switch providerType {
	case ProviderOllama:
		s.Ollama = cfg
	case ProviderOpenAI:
		s.OpenAI = cfg
	case ProviderAnthropic:
		s.Anthropic = cfg
	case ProviderGemini:
		s.Gemini = cfg
	default:
		return fmt.Errorf("unknown provider: %q", providerType)
	}
	return nil
}

// ActiveProvider returns the configuration for the preferred provider,
// falling back to Ollama when the preference is unrecognized.
func (s *AppSettings) ActiveProvider() ProviderConfig {
	cfg, err := s.Provider(s.PreferredProvider)
	if err != nil {
		return s.Ollama
	}
	return cfg
}
