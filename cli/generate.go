package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/michael-borck/venture-lab-sub000/config"
	"github.com/michael-borck/venture-lab-sub000/gateway"
)

// GenerateOptions are the knobs exposed to the generate command.
type GenerateOptions struct {
	Provider      string
	SystemMessage string
	Temperature   float32
	MaxTokens     int
	Tool          string
}

// Generate dispatches a prompt and prints the response.
func (a *App) Generate(ctx context.Context, prompt string, opts GenerateOptions) error {
	var provider config.ProviderType
	if opts.Provider != "" {
		parsed, err := config.ParseProviderType(opts.Provider)
		if err != nil {
			return err
		}
		provider = parsed
	}

	result := a.Gateway.Generate(ctx, gateway.GenerationRequest{
		Prompt:        prompt,
		SystemMessage: opts.SystemMessage,
		Temperature:   opts.Temperature,
		MaxTokens:     opts.MaxTokens,
		Tool:          opts.Tool,
	}, provider)

	if !result.Success {
		fmt.Fprintf(os.Stderr, "Error: %s\n", result.Error)
		return fmt.Errorf("generation failed")
	}

	fmt.Println(result.Content)
	if result.Usage != nil {
		fmt.Fprintf(os.Stderr, "\n(%s/%s, %d in + %d out tokens)\n",
			result.Provider, result.Model,
			result.Usage.InputTokens, result.Usage.OutputTokens)
	}
	return nil
}

// TestConnection checks the stored configuration for a provider and prints
// the models it reports.
func (a *App) TestConnection(ctx context.Context, providerName string) error {
	provider, err := config.ParseProviderType(providerName)
	if err != nil {
		return err
	}

	result := a.Gateway.TestConnection(ctx, provider)
	if !result.Success {
		fmt.Fprintf(os.Stderr, "Connection failed: %s\n", result.Error)
		return fmt.Errorf("connection test failed")
	}

	fmt.Printf("Connected to %s\n", provider)
	for _, model := range result.Models {
		fmt.Printf("  %s\n", model)
	}
	return nil
}

// TestCustomConnection checks an unsaved configuration for a provider, so
// settings can be verified before committing them. Empty fields fall back
// to the provider defaults.
func (a *App) TestCustomConnection(ctx context.Context, providerName, baseURL, model string) error {
	provider, err := config.ParseProviderType(providerName)
	if err != nil {
		return err
	}

	result := a.Gateway.TestCustomConnection(ctx, config.ProviderConfig{
		ProviderType: provider,
		BaseURL:      baseURL,
		Model:        model,
		Enabled:      true,
	})
	if !result.Success {
		fmt.Fprintf(os.Stderr, "Connection failed: %s\n", result.Error)
		return fmt.Errorf("connection test failed")
	}

	fmt.Printf("Connected to %s\n", provider)
	for _, model := range result.Models {
		fmt.Printf("  %s\n", model)
	}
	return nil
}

// Models lists the models a provider reports.
func (a *App) Models(ctx context.Context, providerName string) error {
	provider, err := config.ParseProviderType(providerName)
	if err != nil {
		return err
	}

	models, err := a.Gateway.ListModels(ctx, provider)
	if err != nil {
		return err
	}

	for _, model := range models {
		fmt.Println(model)
	}
	return nil
}
