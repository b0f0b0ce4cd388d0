// Anthropic provider implementation using the official anthropic-sdk-go.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for the Anthropic Messages API
// - Absence of a model discovery endpoint (compiled-in known list)

package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// KnownAnthropicModels is the compiled-in model list returned by discovery.
// Anthropic exposes no listing endpoint usable with every key, so the
// gateway falls back to the models this build knows about.
var KnownAnthropicModels = []string{
	"claude-3-opus-20240229",
	"claude-3-sonnet-20240229",
	"claude-3-haiku-20240307",
}

// AnthropicProvider implements the Provider interface for Anthropic Claude.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey, baseURL, model string) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Model returns the configured model.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// Complete sends a Messages API request.
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	if req.SystemMessage != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.SystemMessage},
		}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("chat completion failed: %w", err)
	}

	content := ""
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += variant.Text
		}
	}

	var usage *TokenUsage
	if message.Usage.InputTokens > 0 || message.Usage.OutputTokens > 0 {
		usage = &TokenUsage{
			InputTokens:  message.Usage.InputTokens,
			OutputTokens: message.Usage.OutputTokens,
		}
	}

	return CompletionResponse{Content: content, Usage: usage}, nil
}

// ListModels returns the compiled-in known model list.
func (p *AnthropicProvider) ListModels(_ context.Context) ([]string, error) {
	models := make([]string, len(KnownAnthropicModels))
	copy(models, KnownAnthropicModels)
	return models, nil
}

// TestConnection issues a one-token message against the configured model.
func (p *AnthropicProvider) TestConnection(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("test")),
		},
	})
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// Verify AnthropicProvider implements Provider
var _ Provider = (*AnthropicProvider)(nil)
