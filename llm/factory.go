// Provider factory - closed dispatch over the supported provider types.

package llm

import (
	"fmt"
	"time"

	"github.com/michael-borck/venture-lab-sub000/config"
)

// Recommended timeout bounds. Connection tests are interactive and fail
// fast; generation latency is much higher, and local Ollama models can
// take minutes on modest hardware.
const (
	ConnectTimeout        = 10 * time.Second
	GenerateTimeout       = 60 * time.Second
	OllamaGenerateTimeout = 300 * time.Second
)

// New creates a provider for the given resolved configuration. The apiKey
// may be empty for Ollama, which operates unauthenticated unless a bearer
// token is configured for a proxied server.
func New(cfg config.ProviderConfig, apiKey string) (Provider, error) {
	switch cfg.ProviderType {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(apiKey, cfg.BaseURL, cfg.Model), nil
	case config.ProviderAnthropic:
		return NewAnthropicProvider(apiKey, cfg.BaseURL, cfg.Model), nil
	case config.ProviderGemini:
		return NewGeminiProvider(apiKey, cfg.BaseURL, cfg.Model), nil
	case config.ProviderOllama:
		return NewOllamaProvider(apiKey, cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q", cfg.ProviderType)
	}
}

// RequiresCredential reports whether a provider cannot operate without a
// stored credential. Ollama is the exception; its bearer token is optional.
func RequiresCredential(providerType config.ProviderType) bool {
	return providerType != config.ProviderOllama
}

// GenerateTimeoutFor returns the generation timeout for a provider type.
func GenerateTimeoutFor(providerType config.ProviderType) time.Duration {
	if providerType == config.ProviderOllama {
		return OllamaGenerateTimeout
	}
	return GenerateTimeout
}
