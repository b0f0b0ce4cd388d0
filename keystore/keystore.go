// Package keystore stores provider credentials in the OS keychain.
//
// Secrets live exclusively in the operating system's secure storage
// (Keychain on macOS, Secret Service on Linux, Credential Manager on
// Windows) under the "venture-lab" service. They are never written to the
// settings file, never logged, and never cached in memory beyond the
// duration of a single call. Environment variables of the form
// <PROVIDER>_API_KEY override the keychain for retrieval and existence
// checks, which keeps headless and CI use working without a keychain
// daemon.

package keystore

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/michael-borck/venture-lab-sub000/config"
)

const serviceName = "venture-lab"

var (
	// ErrNotFound is returned when no credential is stored for a provider.
	ErrNotFound = errors.New("api key not found")
	// ErrInvalidInput is returned for empty or malformed credentials.
	ErrInvalidInput = errors.New("invalid api key")
)

// KeyStatus describes a stored credential without revealing it.
type KeyStatus struct {
	Provider  string `json:"provider"`
	Exists    bool   `json:"exists"`
	MaskedKey string `json:"masked_key,omitempty"`
}

// Store holds no state; every operation round-trips to the OS keychain.
type Store struct{}

// New returns a keystore backed by the OS keychain.
func New() *Store {
	return &Store{}
}

func account(provider config.ProviderType) string {
	return string(provider) + "_api_key"
}

// envVarName returns the environment variable consulted before the keychain.
func envVarName(provider config.ProviderType) string {
	return strings.ToUpper(string(provider)) + "_API_KEY"
}

// Store validates and writes the credential for a provider, overwriting any
// existing one. Returns ErrInvalidInput when the key fails the provider's
// format rules.
func (s *Store) Store(provider config.ProviderType, apiKey string) error {
	if result := Validate(provider, apiKey); !result.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidInput, result.Message)
	}
	if err := keyring.Set(serviceName, account(provider), strings.TrimSpace(apiKey)); err != nil {
		return fmt.Errorf("failed to store api key: %w", err)
	}
	return nil
}

// Retrieve returns the credential for a provider. The environment variable
// override wins over the keychain. Returns ErrNotFound when neither is set.
func (s *Store) Retrieve(provider config.ProviderType) (string, error) {
	if key := strings.TrimSpace(os.Getenv(envVarName(provider))); key != "" {
		return key, nil
	}
	secret, err := keyring.Get(serviceName, account(provider))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w for provider %q", ErrNotFound, provider)
	}
	if err != nil {
		return "", fmt.Errorf("failed to retrieve api key: %w", err)
	}
	return secret, nil
}

// Delete removes the credential for a provider. Idempotent: deleting an
// absent key succeeds.
func (s *Store) Delete(provider config.ProviderType) error {
	err := keyring.Delete(serviceName, account(provider))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	return nil
}

// Exists reports whether a credential is available for a provider, via
// either the environment or the keychain.
func (s *Store) Exists(provider config.ProviderType) bool {
	if strings.TrimSpace(os.Getenv(envVarName(provider))) != "" {
		return true
	}
	_, err := keyring.Get(serviceName, account(provider))
	return err == nil
}

// StatusAll returns the credential status for every known provider.
// No field of the result ever contains a full secret.
func (s *Store) StatusAll() map[config.ProviderType]KeyStatus {
	statuses := make(map[config.ProviderType]KeyStatus, len(config.ProviderTypes()))
	for _, provider := range config.ProviderTypes() {
		status := KeyStatus{Provider: string(provider)}
		if key, err := s.Retrieve(provider); err == nil {
			status.Exists = true
			status.MaskedKey = Mask(key)
		}
		statuses[provider] = status
	}
	return statuses
}

// TestAccess verifies the keychain backend is reachable by writing,
// reading back, and deleting a scratch entry. The scratch account bypasses
// key validation.
func (s *Store) TestAccess() error {
	const testAccount = "keychain_test"
	const testValue = "venture-lab-keychain-probe"

	if err := keyring.Set(serviceName, testAccount, testValue); err != nil {
		return fmt.Errorf("keychain write failed: %w", err)
	}
	got, err := keyring.Get(serviceName, testAccount)
	if err != nil {
		return fmt.Errorf("keychain read failed: %w", err)
	}
	if got != testValue {
		_ = keyring.Delete(serviceName, testAccount)
		return errors.New("keychain test failed: retrieved value does not match")
	}
	if err := keyring.Delete(serviceName, testAccount); err != nil {
		return fmt.Errorf("keychain delete failed: %w", err)
	}
	return nil
}
