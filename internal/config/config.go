// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
)

// DefaultAnthropicModel is used when REVIEWLOOP_ANTHROPIC_MODEL is unset.
const DefaultAnthropicModel = "claude-sonnet-4-5-20250929"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr      string
	DBPath          string
	WebhookSecret   string
	GitHubToken     string
	AnthropicAPIKey string
	AnthropicModel  string
}

// HasGitHubCredentials returns true when a GitHub token is configured. Without
// one the app still mirrors webhook deliveries, but membership sync and
// auto-review are disabled.
func (c *Config) HasGitHubCredentials() bool {
	return c.GitHubToken != ""
}

// HasAnthropicCredentials returns true when an Anthropic API key is
// configured; auto-review requires it.
func (c *Config) HasAnthropicCredentials() bool {
	return c.AnthropicAPIKey != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. REVIEWLOOP_WEBHOOK_SECRET is required: without it, webhook
// signatures cannot be verified and the endpoint would accept forged
// deliveries. Optional variables with defaults: REVIEWLOOP_LISTEN_ADDR
// (127.0.0.1:8080), REVIEWLOOP_DB_PATH (reviewloop.db),
// REVIEWLOOP_ANTHROPIC_MODEL. REVIEWLOOP_GITHUB_TOKEN and
// REVIEWLOOP_ANTHROPIC_API_KEY are optional and gate the provider client and
// the reviewer respectively.
func Load() (*Config, error) {
	secret := os.Getenv("REVIEWLOOP_WEBHOOK_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("REVIEWLOOP_WEBHOOK_SECRET is required")
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("REVIEWLOOP_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "reviewloop.db"
	if v, ok := os.LookupEnv("REVIEWLOOP_DB_PATH"); ok {
		dbPath = v
	}

	anthropicModel := DefaultAnthropicModel
	if v, ok := os.LookupEnv("REVIEWLOOP_ANTHROPIC_MODEL"); ok {
		anthropicModel = v
	}

	return &Config{
		ListenAddr:      listenAddr,
		DBPath:          dbPath,
		WebhookSecret:   secret,
		GitHubToken:     os.Getenv("REVIEWLOOP_GITHUB_TOKEN"),
		AnthropicAPIKey: os.Getenv("REVIEWLOOP_ANTHROPIC_API_KEY"),
		AnthropicModel:  anthropicModel,
	}, nil
}
