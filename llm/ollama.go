// Ollama provider implementation over the local HTTP API.
//
// Information Hiding:
// - Endpoint paths for generation and model listing
// - Request/response format for the Ollama API
// - Optional bearer authentication for remote instances

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// OllamaProvider implements the Provider interface for a local or remote
// Ollama instance. The API key is optional and only sent when set.
type OllamaProvider struct {
	client  *resty.Client
	baseURL string
	model   string
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int64  `json:"prompt_eval_count"`
	EvalCount       int64  `json:"eval_count"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(apiKey, baseURL, model string) *OllamaProvider {
	client := resty.New()
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &OllamaProvider{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
	}
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Model returns the configured model.
func (p *OllamaProvider) Model() string {
	return p.model
}

// Complete sends a non-streaming generate request.
func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	prompt := req.Prompt
	if req.SystemMessage != "" {
		// The generate endpoint takes a single prompt, so the system
		// message is folded into it.
		prompt = fmt.Sprintf("System: %s\n\nUser: %s", req.SystemMessage, req.Prompt)
	}

	body := ollamaGenerateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}

	var result ollamaGenerateResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(p.baseURL + "/api/generate")
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if resp.IsError() {
		return CompletionResponse{}, apiError(resp.StatusCode(), resp.Body())
	}

	var usage *TokenUsage
	if result.PromptEvalCount > 0 || result.EvalCount > 0 {
		usage = &TokenUsage{
			InputTokens:  result.PromptEvalCount,
			OutputTokens: result.EvalCount,
		}
	}

	return CompletionResponse{Content: result.Response, Usage: usage}, nil
}

// ListModels queries the tags endpoint for locally available models.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]string, error) {
	var result ollamaTagsResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(p.baseURL + "/api/tags")
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp.StatusCode(), resp.Body())
	}

	models := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		models = append(models, m.Name)
	}
	return models, nil
}

// TestConnection verifies the instance is reachable by listing models.
func (p *OllamaProvider) TestConnection(ctx context.Context) error {
	if _, err := p.ListModels(ctx); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// Verify OllamaProvider implements Provider
var _ Provider = (*OllamaProvider)(nil)
