package cli

import (
	"encoding/json"
	"fmt"

	"github.com/michael-borck/venture-lab-sub000/config"
)

// ShowSettings prints the current settings as JSON. Settings never contain
// credentials, so the full document is safe to display.
func (a *App) ShowSettings() error {
	settings := a.Settings.Settings()
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// SetPreferredProvider changes the default provider for generation.
func (a *App) SetPreferredProvider(providerName string) error {
	provider, err := config.ParseProviderType(providerName)
	if err != nil {
		return err
	}

	settings := a.Settings.Settings()
	settings.PreferredProvider = provider
	if err := a.Settings.Save(settings); err != nil {
		return err
	}
	fmt.Printf("Preferred provider set to %s\n", provider)
	return nil
}

// ProviderUpdate carries the fields of a provider configuration a command
// wants to change. Nil fields are left as stored.
type ProviderUpdate struct {
	BaseURL *string
	Model   *string
	Enabled *bool
}

// ConfigureProvider updates the stored configuration for a provider.
func (a *App) ConfigureProvider(providerName string, update ProviderUpdate) error {
	provider, err := config.ParseProviderType(providerName)
	if err != nil {
		return err
	}

	settings := a.Settings.Settings()
	cfg, err := settings.Provider(provider)
	if err != nil {
		return err
	}

	if update.BaseURL != nil {
		cfg.BaseURL = *update.BaseURL
	}
	if update.Model != nil {
		cfg.Model = *update.Model
	}
	if update.Enabled != nil {
		cfg.Enabled = *update.Enabled
	}

	if err := settings.SetProvider(provider, cfg); err != nil {
		return err
	}
	if err := a.Settings.Save(settings); err != nil {
		return err
	}

	resolved, err := config.Resolve(provider, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s: model=%s url=%s enabled=%t\n",
		provider, resolved.Model, resolved.BaseURL, resolved.Enabled)
	return nil
}
