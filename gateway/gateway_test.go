package gateway

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/zalando/go-keyring"

	"github.com/michael-borck/venture-lab-sub000/config"
	"github.com/michael-borck/venture-lab-sub000/keystore"
	"github.com/michael-borck/venture-lab-sub000/llm"
	"github.com/michael-borck/venture-lab-sub000/usage"
)

// fakeProvider returns canned results and counts dispatches.
type fakeProvider struct {
	name     string
	model    string
	response llm.CompletionResponse
	err      error
	calls    int
	lastReq  llm.CompletionRequest
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Model() string { return f.model }

func (f *fakeProvider) Complete(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return llm.CompletionResponse{}, f.err
	}
	return f.response, nil
}

func (f *fakeProvider) ListModels(_ context.Context) ([]string, error) {
	return []string{f.model}, nil
}

func (f *fakeProvider) TestConnection(_ context.Context) error {
	return f.err
}

var _ llm.Provider = (*fakeProvider)(nil)

func newTestService(t *testing.T, fake *fakeProvider) *Service {
	t.Helper()
	keyring.MockInit()

	settings, err := config.OpenStore(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("failed to open settings: %v", err)
	}
	ledger, err := usage.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	t.Cleanup(func() { ledger.Close() })

	svc := New(settings, keystore.New(), ledger, zerolog.Nop())
	if fake != nil {
		svc.newProvider = func(cfg config.ProviderConfig, _ string) (llm.Provider, error) {
			fake.name = string(cfg.ProviderType)
			fake.model = cfg.Model
			return fake, nil
		}
	}
	return svc
}

func recordCount(t *testing.T, svc *Service) int {
	t.Helper()
	records, err := svc.ledger.History(context.Background(), 100, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	return len(records)
}

func TestGenerateSuccessRecordsExactlyOnce(t *testing.T) {
	fake := &fakeProvider{
		response: llm.CompletionResponse{
			Content: "three ideas",
			Usage:   &llm.TokenUsage{InputTokens: 11, OutputTokens: 22},
		},
	}
	svc := newTestService(t, fake)

	result := svc.Generate(context.Background(), GenerationRequest{
		Prompt: "give me ideas",
		Tool:   "idea_forge",
	}, config.ProviderOllama)

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.Content != "three ideas" {
		t.Errorf("unexpected content: %q", result.Content)
	}
	if result.Provider != "ollama" || result.Model != "llama3.1" {
		t.Errorf("unexpected provenance: %s/%s", result.Provider, result.Model)
	}
	if fake.calls != 1 {
		t.Errorf("provider dispatched %d times, want 1", fake.calls)
	}

	if n := recordCount(t, svc); n != 1 {
		t.Fatalf("expected exactly 1 usage record, got %d", n)
	}
	records, _ := svc.ledger.History(context.Background(), 1, 0)
	rec := records[0]
	if !rec.Success || rec.InputTokens != 11 || rec.OutputTokens != 22 || rec.Tool != "idea_forge" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestGenerateFailureStillRecordsOnce(t *testing.T) {
	fake := &fakeProvider{err: errors.New("boom")}
	svc := newTestService(t, fake)

	result := svc.Generate(context.Background(), GenerationRequest{Prompt: "hi"}, config.ProviderOllama)

	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Error, "boom") {
		t.Errorf("error not surfaced: %q", result.Error)
	}
	if fake.calls != 1 {
		t.Errorf("provider dispatched %d times, want 1 (no retry)", fake.calls)
	}

	if n := recordCount(t, svc); n != 1 {
		t.Fatalf("expected exactly 1 usage record for the failure, got %d", n)
	}
	records, _ := svc.ledger.History(context.Background(), 1, 0)
	rec := records[0]
	if rec.Success || rec.InputTokens != 0 || rec.OutputTokens != 0 {
		t.Errorf("failure record should carry zero tokens: %+v", rec)
	}
	if rec.ErrorMessage == "" {
		t.Error("failure record missing error message")
	}
}

func TestGenerateEmptyResponseIsFailure(t *testing.T) {
	fake := &fakeProvider{
		response: llm.CompletionResponse{
			Content: "   ",
			Usage:   &llm.TokenUsage{InputTokens: 5, OutputTokens: 0},
		},
	}
	svc := newTestService(t, fake)

	result := svc.Generate(context.Background(), GenerationRequest{Prompt: "hi"}, config.ProviderOllama)

	if result.Success {
		t.Fatal("a response with no content must not be reported as success")
	}
	if !strings.Contains(result.Error, "empty response") {
		t.Errorf("unexpected error: %q", result.Error)
	}
	if result.Content != "" {
		t.Errorf("failed result should carry no content, got %q", result.Content)
	}

	// The call was dispatched, so it is still accounted for.
	if n := recordCount(t, svc); n != 1 {
		t.Fatalf("expected exactly 1 usage record, got %d", n)
	}
	records, _ := svc.ledger.History(context.Background(), 1, 0)
	if records[0].Success {
		t.Error("record should reflect the failure")
	}
}

func TestGenerateMaxTokensDefaultFromEnv(t *testing.T) {
	fake := &fakeProvider{response: llm.CompletionResponse{Content: "ok"}}
	svc := newTestService(t, fake)
	t.Setenv("LLM_MAX_TOKENS", "123")

	result := svc.Generate(context.Background(), GenerationRequest{Prompt: "hi"}, config.ProviderOllama)
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	if fake.lastReq.MaxTokens != 123 {
		t.Errorf("LLM_MAX_TOKENS should govern the fallback, got %d", fake.lastReq.MaxTokens)
	}

	// An explicit request value still wins.
	result = svc.Generate(context.Background(), GenerationRequest{Prompt: "hi", MaxTokens: 50}, config.ProviderOllama)
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	if fake.lastReq.MaxTokens != 50 {
		t.Errorf("explicit max tokens overridden, got %d", fake.lastReq.MaxTokens)
	}
}

func TestGenerateEmptyPromptNeverDispatches(t *testing.T) {
	fake := &fakeProvider{}
	svc := newTestService(t, fake)

	for _, prompt := range []string{"", "   ", "\n\t"} {
		result := svc.Generate(context.Background(), GenerationRequest{Prompt: prompt}, config.ProviderOllama)
		if result.Success {
			t.Errorf("prompt %q should be rejected", prompt)
		}
	}

	if fake.calls != 0 {
		t.Errorf("empty prompts must not reach the provider, got %d calls", fake.calls)
	}
	if n := recordCount(t, svc); n != 0 {
		t.Errorf("empty prompts must not be recorded, got %d records", n)
	}
}

func TestGenerateMissingCredentialFailsFast(t *testing.T) {
	fake := &fakeProvider{}
	svc := newTestService(t, fake)
	t.Setenv("OPENAI_API_KEY", "")

	result := svc.Generate(context.Background(), GenerationRequest{Prompt: "hi"}, config.ProviderOpenAI)

	if result.Success {
		t.Fatal("expected failure without a credential")
	}
	if !strings.Contains(result.Error, "no API key") {
		t.Errorf("unexpected error: %q", result.Error)
	}
	if fake.calls != 0 {
		t.Error("missing credential must prevent dispatch")
	}
	if n := recordCount(t, svc); n != 0 {
		t.Errorf("no dispatch means no record, got %d", n)
	}
}

func TestGenerateToolAttributionFromContext(t *testing.T) {
	fake := &fakeProvider{response: llm.CompletionResponse{Content: "ok"}}
	svc := newTestService(t, fake)

	result := svc.Generate(context.Background(), GenerationRequest{
		Prompt:  "hi",
		Context: map[string]string{"tool": "global_compass"},
	}, config.ProviderOllama)
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}

	records, _ := svc.ledger.History(context.Background(), 1, 0)
	if records[0].Tool != "global_compass" {
		t.Errorf("context tool not used for attribution: %q", records[0].Tool)
	}
}

func TestGenerateUsesPreferredProviderWhenUnset(t *testing.T) {
	fake := &fakeProvider{response: llm.CompletionResponse{Content: "ok"}}
	svc := newTestService(t, fake)

	result := svc.Generate(context.Background(), GenerationRequest{Prompt: "hi"}, "")
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	if result.Provider != "ollama" {
		t.Errorf("default should be the preferred provider, got %s", result.Provider)
	}
}

func TestTestConnection(t *testing.T) {
	fake := &fakeProvider{}
	svc := newTestService(t, fake)

	result := svc.TestConnection(context.Background(), config.ProviderOllama)
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	if len(result.Models) != 1 || result.Models[0] != "llama3.1" {
		t.Errorf("unexpected models: %v", result.Models)
	}

	fake.err = errors.New("connection refused")
	result = svc.TestConnection(context.Background(), config.ProviderOllama)
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error == "" {
		t.Error("failure must carry an error message")
	}
}

func TestTestCustomConnectionResolvesDefaults(t *testing.T) {
	fake := &fakeProvider{}
	svc := newTestService(t, fake)

	result := svc.TestCustomConnection(context.Background(), config.ProviderConfig{
		ProviderType: config.ProviderOllama,
		Model:        "mistral",
	})
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	if fake.model != "mistral" {
		t.Errorf("custom model not used: %q", fake.model)
	}
}

func TestListModelsRequiresCredential(t *testing.T) {
	svc := newTestService(t, &fakeProvider{})
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := svc.ListModels(context.Background(), config.ProviderAnthropic)
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
}
