package config

import (
	"errors"
	"strings"
)

// ErrNoAPIKey signals that every credential source came up empty.
var ErrNoAPIKey = errors.New(
	"no API key configured: pass -api-key, set model.apiKey in the config file, or export GEMINI_API_KEY / GOOGLE_API_KEY")

// ResolveAPIKey picks the model credential by fixed priority: explicit
// argument, config-file value, then the GEMINI_API_KEY and GOOGLE_API_KEY
// environment variables. lookup abstracts os.Getenv so resolution stays a
// pure function of its inputs.
func ResolveAPIKey(explicit, fromConfig string, lookup func(string) string) (string, error) {
	if lookup == nil {
		lookup = func(string) string { return "" }
	}

	for _, candidate := range []string{explicit, fromConfig, lookup(apiKeyEnv), lookup(altAPIKeyEnv)} {
		if v := strings.TrimSpace(candidate); v != "" {
			return v, nil
		}
	}

	return "", ErrNoAPIKey
}
