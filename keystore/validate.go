package keystore

import (
	"regexp"
	"strings"

	"github.com/michael-borck/venture-lab-sub000/config"
)

// ValidationResult reports whether a key matches the provider's expected
// format, with a human-readable reason when it does not.
type ValidationResult struct {
	Valid   bool
	Message string
}

var (
	openaiKeyPattern    = regexp.MustCompile(`^sk-[a-zA-Z0-9]+$`)
	anthropicKeyPattern = regexp.MustCompile(`^sk-ant-[a-zA-Z0-9\-_]+$`)
	geminiKeyPattern    = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// Validate checks an API key against the format rules for a provider.
// Ollama accepts any non-empty bearer token since local servers define
// their own auth, if any.
func Validate(provider config.ProviderType, apiKey string) ValidationResult {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return ValidationResult{Valid: false, Message: "API key cannot be empty"}
	}

	switch provider {
	case config.ProviderOpenAI:
		if !strings.HasPrefix(key, "sk-") {
			return ValidationResult{Valid: false, Message: "OpenAI API key must start with 'sk-'"}
		}
		if len(key) < 20 {
			return ValidationResult{Valid: false, Message: "OpenAI API key seems too short"}
		}
		if !openaiKeyPattern.MatchString(key) {
			return ValidationResult{Valid: false, Message: "OpenAI API key contains invalid characters"}
		}
	case config.ProviderAnthropic:
		if !strings.HasPrefix(key, "sk-ant-") {
			return ValidationResult{Valid: false, Message: "Anthropic API key must start with 'sk-ant-'"}
		}
		if len(key) < 30 {
			return ValidationResult{Valid: false, Message: "Anthropic API key seems too short"}
		}
		if !anthropicKeyPattern.MatchString(key) {
			return ValidationResult{Valid: false, Message: "Anthropic API key contains invalid characters"}
		}
	case config.ProviderGemini:
		if len(key) < 20 {
			return ValidationResult{Valid: false, Message: "Gemini API key seems too short (minimum 20 characters)"}
		}
		if !geminiKeyPattern.MatchString(key) {
			return ValidationResult{Valid: false, Message: "Gemini API key contains invalid characters"}
		}
	case config.ProviderOllama:
		// Any non-empty token is acceptable.
	}

	return ValidationResult{Valid: true}
}

// Mask returns a display form of an API key that reveals at most the
// first and last four characters.
func Mask(apiKey string) string {
	key := strings.TrimSpace(apiKey)
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
