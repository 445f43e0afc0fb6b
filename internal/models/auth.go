package models

import (
	"fmt"
	"os"
	"strings"

	"github.com/dohr-michael/taskchat/internal/config"
)

// defaultKeyEnv maps drivers to their conventional API key env vars.
var defaultKeyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"claude": "ANTHROPIC_API_KEY",
	"gemini": "GEMINI_API_KEY",
}

// ResolveAPIKey resolves the API key for a provider.
// Resolution order: direct api_key → ${VAR} reference → driver default env.
func ResolveAPIKey(cfg config.ProviderConfig) (string, error) {
	key := strings.TrimSpace(cfg.Auth.APIKey)
	if strings.HasPrefix(key, "${") && strings.HasSuffix(key, "}") {
		key = os.Getenv(key[2 : len(key)-1])
	}
	if key != "" {
		return key, nil
	}

	envVar, ok := defaultKeyEnv[strings.ToLower(cfg.Driver)]
	if !ok {
		return "", fmt.Errorf("unknown driver %q: cannot resolve auth", cfg.Driver)
	}
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s not set", envVar)
}
