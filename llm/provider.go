// Package llm provides AI provider abstractions.
//
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Provider-specific token usage reporting
//
// Providers differ in auth scheme (bearer token, api-key header, none for
// local Ollama) and in whether they expose a model discovery endpoint; the
// Provider interface absorbs that so callers never branch on provider
// identity beyond selecting configuration.

package llm

import (
	"context"
)

// Provider defines the abstract interface for AI providers.
type Provider interface {
	// Name returns the provider name (for accounting and logging).
	Name() string

	// Model returns the configured model.
	Model() string

	// Complete sends a single-turn generation request.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ListModels returns the models the provider currently reports as
	// available. Providers without a discovery endpoint return their
	// compiled-in known list.
	ListModels(ctx context.Context) ([]string, error)

	// TestConnection issues a minimal provider-native request to verify
	// the endpoint and credential are usable. Single-shot: never retries.
	TestConnection(ctx context.Context) error
}
