// Environment variable overrides.
//
// Two kinds of overrides are honored, both read at resolution time so a
// .env file loaded at startup works the same as the process environment:
// - <PROVIDER>_MODEL overrides the stored model for that provider.
// - LLM_TEMPERATURE and LLM_MAX_TOKENS set generation defaults.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// GenerationDefaults are the sampling parameters used when a request does
// not set its own.
type GenerationDefaults struct {
	Temperature float32
	MaxTokens   int
}

// EnvGenerationDefaults reads generation defaults from the environment,
// falling back to the compiled-in values. Returns an error for unparseable
// values rather than silently ignoring them.
func EnvGenerationDefaults() (GenerationDefaults, error) {
	temperature, err := getEnvFloat32("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return GenerationDefaults{}, err
	}

	maxTokens, err := getEnvInt("LLM_MAX_TOKENS", 1000)
	if err != nil {
		return GenerationDefaults{}, err
	}

	return GenerationDefaults{
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

// modelEnvVar returns the environment variable that overrides the model
// for a provider, e.g. OPENAI_MODEL.
func modelEnvVar(providerType ProviderType) string {
	return strings.ToUpper(string(providerType)) + "_MODEL"
}

// envModelFor returns the model override from the environment, or "" when
// none is set.
func envModelFor(providerType ProviderType) string {
	return strings.TrimSpace(os.Getenv(modelEnvVar(providerType)))
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvFloat32(key string, defaultVal float32) (float32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return float32(f), nil
}
