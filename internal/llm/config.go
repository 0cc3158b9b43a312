package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// envPrefix namespaces every model setting variable.
const envPrefix = "KYSYMYSSOTA_"

// Config selects and configures a model provider.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini",
	// "openrouter", "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single request including retries.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific settings.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig holds OpenAI-specific settings. BaseURL overrides the
// endpoint for OpenAI-compatible APIs.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiConfig holds Gemini-specific settings.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// OpenRouterConfig holds OpenRouter-specific settings.
type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig tunes the retry decorator.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with defaults for every provider.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv reads KYSYMYSSOTA_* variables over defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	envOverride(&cfg.Provider, "LLM_PROVIDER")
	envOverride(&cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.Anthropic.Model, "ANTHROPIC_MODEL")
	envOverride(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	envOverride(&cfg.OpenAI.Model, "OPENAI_MODEL")
	envOverride(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	envOverride(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	envOverride(&cfg.Gemini.Model, "GEMINI_MODEL")
	envOverride(&cfg.OpenRouter.APIKey, "OPENROUTER_API_KEY")
	envOverride(&cfg.OpenRouter.Model, "OPENROUTER_MODEL")

	return cfg
}

func envOverride(dst *string, name string) {
	if v := os.Getenv(envPrefix + name); v != "" {
		*dst = v
	}
}

// DiscoverConfig probes the vendors' standard API key variables in
// priority order and returns a Config for the first key found.
func DiscoverConfig() (Config, bool) {
	probes := []struct {
		env string
		set func(*Config, string)
	}{
		{"GEMINI_API_KEY", func(c *Config, k string) { c.Provider = "gemini"; c.Gemini.APIKey = k }},
		{"OPENAI_API_KEY", func(c *Config, k string) { c.Provider = "openai"; c.OpenAI.APIKey = k }},
		{"ANTHROPIC_API_KEY", func(c *Config, k string) { c.Provider = "anthropic"; c.Anthropic.APIKey = k }},
		{"OPENROUTER_API_KEY", func(c *Config, k string) { c.Provider = "openrouter"; c.OpenRouter.APIKey = k }},
	}

	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg := DefaultConfig()
			p.set(&cfg, k)
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has an API key. The mock
// provider needs none.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}

	keys := map[string]string{
		"anthropic":  c.Anthropic.APIKey,
		"openai":     c.OpenAI.APIKey,
		"gemini":     c.Gemini.APIKey,
		"openrouter": c.OpenRouter.APIKey,
	}
	key, ok := keys[c.Provider]
	if !ok {
		return fmt.Errorf("unknown model provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s%s_API_KEY is required for the %s provider",
			envPrefix, strings.ToUpper(c.Provider), c.Provider)
	}
	return nil
}
