// Package gateway dispatches generation requests to the configured AI
// provider and accounts for every dispatched request.
//
// Information Hiding:
// - Credential resolution order (environment, then keychain)
// - Per-provider timeout policy
// - Usage recording, which never affects the primary request

package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/michael-borck/venture-lab-sub000/config"
	"github.com/michael-borck/venture-lab-sub000/keystore"
	"github.com/michael-borck/venture-lab-sub000/llm"
	"github.com/michael-borck/venture-lab-sub000/usage"
)

// ErrEmptyPrompt is returned when a generation request carries no prompt.
// No provider call is made and no usage is recorded.
var ErrEmptyPrompt = errors.New("prompt must not be empty")

// ErrMissingCredential is returned when a provider requires an API key and
// none is stored or set in the environment.
var ErrMissingCredential = errors.New("no API key configured for provider")

// GenerationRequest is a single prompt to dispatch. Context carries
// free-form request metadata from the caller; only its "tool" entry is
// consulted, as a fallback for usage attribution.
type GenerationRequest struct {
	Prompt        string            `json:"prompt"`
	SystemMessage string            `json:"system_message,omitempty"`
	Temperature   float32           `json:"temperature,omitempty"`
	MaxTokens     int               `json:"max_tokens,omitempty"`
	Tool          string            `json:"tool,omitempty"`
	Context       map[string]string `json:"context,omitempty"`
}

// toolName returns the usage attribution for the request.
func (r GenerationRequest) toolName() string {
	if r.Tool != "" {
		return r.Tool
	}
	return r.Context["tool"]
}

// GenerationResult is the normalized outcome of a dispatch. Failures are
// reported in-band so callers always get a result envelope.
type GenerationResult struct {
	Success  bool            `json:"success"`
	Content  string          `json:"content,omitempty"`
	Provider string          `json:"provider"`
	Model    string          `json:"model"`
	Usage    *llm.TokenUsage `json:"usage,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// ConnectionResult is the outcome of a connection test.
type ConnectionResult struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Models  []string `json:"models,omitempty"`
}

// Service wires settings, credentials, providers and the usage ledger
// together behind the operations the frontend invokes.
type Service struct {
	settings *config.Store
	keys     *keystore.Store
	ledger   *usage.Ledger
	log      zerolog.Logger

	// newProvider is swappable in tests.
	newProvider func(config.ProviderConfig, string) (llm.Provider, error)
}

// New creates a gateway service over the given stores.
func New(settings *config.Store, keys *keystore.Store, ledger *usage.Ledger, log zerolog.Logger) *Service {
	return &Service{
		settings:    settings,
		keys:        keys,
		ledger:      ledger,
		log:         log,
		newProvider: llm.New,
	}
}

// Generate dispatches a prompt to the named provider, or to the preferred
// provider when providerType is empty. Exactly one usage record is written
// per dispatched request, whether it succeeds or fails.
func (s *Service) Generate(ctx context.Context, req GenerationRequest, providerType config.ProviderType) GenerationResult {
	if strings.TrimSpace(req.Prompt) == "" {
		return GenerationResult{Success: false, Error: ErrEmptyPrompt.Error()}
	}

	cfg, err := s.resolveProvider(providerType)
	if err != nil {
		return GenerationResult{Success: false, Error: err.Error()}
	}

	apiKey, err := s.credentialFor(cfg.ProviderType)
	if err != nil {
		return GenerationResult{
			Success:  false,
			Provider: string(cfg.ProviderType),
			Model:    cfg.Model,
			Error:    err.Error(),
		}
	}

	provider, err := s.newProvider(cfg, apiKey)
	if err != nil {
		return GenerationResult{
			Success:  false,
			Provider: string(cfg.ProviderType),
			Model:    cfg.Model,
			Error:    err.Error(),
		}
	}

	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens()
	}

	callCtx, cancel := context.WithTimeout(ctx, llm.GenerateTimeoutFor(cfg.ProviderType))
	defer cancel()

	start := time.Now()
	resp, callErr := provider.Complete(callCtx, llm.CompletionRequest{
		Prompt:        req.Prompt,
		SystemMessage: req.SystemMessage,
		Temperature:   req.Temperature,
		MaxTokens:     req.MaxTokens,
	})
	elapsed := time.Since(start)

	result := GenerationResult{
		Provider: string(cfg.ProviderType),
		Model:    cfg.Model,
	}
	switch {
	case callErr != nil:
		result.Success = false
		result.Error = llm.DescribeError(callErr)
	case strings.TrimSpace(resp.Content) == "":
		// A nominally successful call with no content is a failure; a
		// successful result always carries text.
		result.Success = false
		result.Error = fmt.Sprintf("provider %s returned an empty response", cfg.ProviderType)
	default:
		result.Success = true
		result.Content = resp.Content
		result.Usage = resp.Usage
	}

	s.record(result, req.toolName(), elapsed)
	return result
}

// TestConnection tests the stored configuration for a provider, returning
// the available models on success.
func (s *Service) TestConnection(ctx context.Context, providerType config.ProviderType) ConnectionResult {
	cfg, err := s.settings.ResolveProvider(providerType)
	if err != nil {
		return ConnectionResult{Success: false, Error: err.Error()}
	}
	return s.testConnection(ctx, cfg)
}

// TestCustomConnection tests an unsaved configuration, so settings can be
// verified before committing them.
func (s *Service) TestCustomConnection(ctx context.Context, cfg config.ProviderConfig) ConnectionResult {
	resolved, err := config.Resolve(cfg.ProviderType, cfg)
	if err != nil {
		return ConnectionResult{Success: false, Error: err.Error()}
	}
	return s.testConnection(ctx, resolved)
}

// ListModels queries the provider for its available models.
func (s *Service) ListModels(ctx context.Context, providerType config.ProviderType) ([]string, error) {
	cfg, err := s.settings.ResolveProvider(providerType)
	if err != nil {
		return nil, err
	}

	apiKey, err := s.credentialFor(cfg.ProviderType)
	if err != nil {
		return nil, err
	}

	provider, err := s.newProvider(cfg, apiKey)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, llm.ConnectTimeout)
	defer cancel()
	return provider.ListModels(callCtx)
}

func (s *Service) testConnection(ctx context.Context, cfg config.ProviderConfig) ConnectionResult {
	apiKey, err := s.credentialFor(cfg.ProviderType)
	if err != nil {
		return ConnectionResult{Success: false, Error: err.Error()}
	}

	provider, err := s.newProvider(cfg, apiKey)
	if err != nil {
		return ConnectionResult{Success: false, Error: err.Error()}
	}

	callCtx, cancel := context.WithTimeout(ctx, llm.ConnectTimeout)
	defer cancel()

	if err := provider.TestConnection(callCtx); err != nil {
		return ConnectionResult{Success: false, Error: llm.DescribeError(err)}
	}

	models, err := provider.ListModels(callCtx)
	if err != nil {
		// Reachable but not listable still counts as connected.
		s.log.Debug().Err(err).Str("provider", string(cfg.ProviderType)).
			Msg("model listing failed after successful connection test")
		return ConnectionResult{Success: true}
	}
	return ConnectionResult{Success: true, Models: models}
}

// defaultMaxTokens returns the token limit applied when a request leaves
// MaxTokens unset. LLM_MAX_TOKENS governs it; an unparseable value falls
// back to the compiled-in default.
func defaultMaxTokens() int {
	defaults, err := config.EnvGenerationDefaults()
	if err != nil {
		return 1000
	}
	return defaults.MaxTokens
}

// resolveProvider picks the explicit provider, or the preferred one when
// none is named.
func (s *Service) resolveProvider(providerType config.ProviderType) (config.ProviderConfig, error) {
	if providerType == "" {
		providerType = s.settings.Settings().PreferredProvider
	}
	cfg, err := s.settings.ResolveProvider(providerType)
	if err != nil {
		return config.ProviderConfig{}, err
	}
	return cfg, nil
}

// credentialFor resolves the API key for a provider. Providers that require
// a credential fail fast without one; Ollama proceeds with whatever is set.
func (s *Service) credentialFor(providerType config.ProviderType) (string, error) {
	apiKey, err := s.keys.Retrieve(providerType)
	if err != nil {
		if !errors.Is(err, keystore.ErrNotFound) {
			return "", fmt.Errorf("failed to read credential: %w", err)
		}
		apiKey = ""
	}
	if apiKey == "" && llm.RequiresCredential(providerType) {
		return "", fmt.Errorf("%w: %s", ErrMissingCredential, providerType)
	}
	return apiKey, nil
}

// record writes the accounting entry for a dispatched request. Recording
// failures are logged and suppressed so they never surface to the caller.
func (s *Service) record(result GenerationResult, tool string, elapsed time.Duration) {
	rec := usage.Record{
		Timestamp:      time.Now().UTC(),
		Provider:       result.Provider,
		Model:          result.Model,
		Tool:           tool,
		Success:        result.Success,
		ErrorMessage:   result.Error,
		ResponseTimeMs: elapsed.Milliseconds(),
	}
	if result.Usage != nil {
		rec.InputTokens = result.Usage.InputTokens
		rec.OutputTokens = result.Usage.OutputTokens
	}

	if err := s.ledger.Add(context.Background(), rec); err != nil {
		s.log.Warn().Err(err).Str("provider", rec.Provider).
			Msg("failed to record usage")
	}
}
