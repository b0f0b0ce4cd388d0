package cli

import (
	"fmt"

	"github.com/michael-borck/venture-lab-sub000/config"
	"github.com/michael-borck/venture-lab-sub000/keystore"
)

// SetKey validates and stores an API key for a provider.
func (a *App) SetKey(providerName, apiKey string) error {
	provider, err := config.ParseProviderType(providerName)
	if err != nil {
		return err
	}

	if result := keystore.Validate(provider, apiKey); !result.Valid {
		return fmt.Errorf("invalid API key: %s", result.Message)
	}

	if err := a.Keys.Store(provider, apiKey); err != nil {
		return err
	}
	fmt.Printf("Stored API key for %s (%s)\n", provider, keystore.Mask(apiKey))
	return nil
}

// GetKey prints the stored API key for a provider. Unlike KeyStatus this
// is an explicit retrieval and outputs the raw key.
func (a *App) GetKey(providerName string) error {
	provider, err := config.ParseProviderType(providerName)
	if err != nil {
		return err
	}

	apiKey, err := a.Keys.Retrieve(provider)
	if err != nil {
		return err
	}
	if apiKey == "" {
		return fmt.Errorf("no API key configured for %s", provider)
	}
	fmt.Println(apiKey)
	return nil
}

// DeleteKey removes the stored API key for a provider.
func (a *App) DeleteKey(providerName string) error {
	provider, err := config.ParseProviderType(providerName)
	if err != nil {
		return err
	}

	if err := a.Keys.Delete(provider); err != nil {
		return err
	}
	fmt.Printf("Deleted API key for %s\n", provider)
	return nil
}

// KeyStatus prints the credential status for every provider. Only masked
// previews are shown, never the key itself.
func (a *App) KeyStatus() error {
	statuses := a.Keys.StatusAll()

	fmt.Println("API key status:")
	for _, provider := range config.ProviderTypes() {
		status := statuses[provider]
		if status.Exists {
			fmt.Printf("  %-10s configured (%s)\n", provider, status.MaskedKey)
		} else {
			fmt.Printf("  %-10s not configured\n", provider)
		}
	}
	return nil
}

// TestKeychain verifies the OS keychain is usable via a scratch entry.
func (a *App) TestKeychain() error {
	if err := a.Keys.TestAccess(); err != nil {
		return fmt.Errorf("keychain access failed: %w", err)
	}
	fmt.Println("Keychain access OK")
	return nil
}
