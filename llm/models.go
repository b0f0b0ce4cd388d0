// Package llm shared data models.
package llm

// CompletionRequest is a provider-agnostic single-turn generation request.
type CompletionRequest struct {
	Prompt        string  `json:"prompt"`
	SystemMessage string  `json:"system_message,omitempty"`
	Temperature   float32 `json:"temperature"`
	MaxTokens     int     `json:"max_tokens"`
}

// CompletionResponse is the normalized provider response.
type CompletionResponse struct {
	Content string
	Usage   *TokenUsage
}

// TokenUsage contains normalized token counts. Providers that report no
// usage yield a nil *TokenUsage; total tokens are always derived, never
// carried as a separate field.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Total returns the combined token count.
func (u TokenUsage) Total() int64 {
	return u.InputTokens + u.OutputTokens
}
