// Google Gemini provider implementation using official google.golang.org/genai SDK.
//
// Information Hiding:
// - API authentication and client creation
// - Request/response format for the Gemini API
// - Model discovery via the SDK pager

package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google Gemini.
type GeminiProvider struct {
	client  *genai.Client
	model   string
	initErr error // Stores client initialization error for deferred reporting
}

// NewGeminiProvider creates a new Gemini provider.
// If client initialization fails, the error is stored and returned on first use.
func NewGeminiProvider(apiKey, baseURL, model string) *GeminiProvider {
	ctx := context.Background()
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		// Store initialization error to return on first use - preserves constructor signature
		return &GeminiProvider{
			client:  nil,
			model:   model,
			initErr: fmt.Errorf("failed to initialize Gemini client: %w", err),
		}
	}

	return &GeminiProvider{
		client:  client,
		model:   model,
		initErr: nil,
	}
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Model returns the configured model.
func (p *GeminiProvider) Model() string {
	return p.model
}

// Complete sends a generation request.
func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if p.initErr != nil {
		return CompletionResponse{}, p.initErr
	}
	if p.client == nil {
		return CompletionResponse{}, fmt.Errorf("gemini client not initialized")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.SystemMessage != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemMessage, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	response, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("chat completion failed: %w", err)
	}

	content := response.Text()
	if content == "" {
		return CompletionResponse{}, fmt.Errorf("empty response from Gemini")
	}

	var usage *TokenUsage
	if response.UsageMetadata != nil {
		usage = &TokenUsage{
			InputTokens:  int64(response.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(response.UsageMetadata.CandidatesTokenCount),
		}
	}

	return CompletionResponse{Content: content, Usage: usage}, nil
}

// ListModels queries the Gemini models endpoint.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	if p.initErr != nil {
		return nil, p.initErr
	}
	if p.client == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}

	var models []string
	for model, err := range p.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		models = append(models, strings.TrimPrefix(model.Name, "models/"))
	}
	sort.Strings(models)
	return models, nil
}

// TestConnection verifies the API key by listing models.
func (p *GeminiProvider) TestConnection(ctx context.Context) error {
	if _, err := p.ListModels(ctx); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// Verify GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)
