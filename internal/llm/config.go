package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

type Config struct {
	// Provider is one of the Provider* names. Empty means no LLM features.
	Provider string

	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Retry     RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Anthropic: AnthropicConfig{Model: "claude-haiku"},
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:    GeminiConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool { return c.Provider != "" }

// ConfigFromEnv reads CIFRA_LLM_* variables. Without CIFRA_LLM_PROVIDER it
// falls back to the first standard *_API_KEY it finds, and to a disabled
// config when there is none.
func ConfigFromEnv() Config {
	return configFrom(os.Getenv)
}

func configFrom(getenv func(string) string) Config {
	cfg := DefaultConfig()
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Anthropic.APIKey, "CIFRA_ANTHROPIC_API_KEY")
	set(&cfg.Anthropic.Model, "CIFRA_ANTHROPIC_MODEL")
	set(&cfg.OpenAI.APIKey, "CIFRA_OPENAI_API_KEY")
	set(&cfg.OpenAI.Model, "CIFRA_OPENAI_MODEL")
	set(&cfg.OpenAI.BaseURL, "CIFRA_OPENAI_BASE_URL")
	set(&cfg.Gemini.APIKey, "CIFRA_GEMINI_API_KEY")
	set(&cfg.Gemini.Model, "CIFRA_GEMINI_MODEL")
	if d, err := time.ParseDuration(getenv("CIFRA_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}

	if p := getenv("CIFRA_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
		return cfg
	}
	discover(&cfg, getenv)
	return cfg
}

// discover picks the provider from standard key variables, Gemini first.
func discover(cfg *Config, getenv func(string) string) {
	candidates := []struct {
		provider string
		env      string
		key      *string
	}{
		{ProviderGemini, "GEMINI_API_KEY", &cfg.Gemini.APIKey},
		{ProviderOpenAI, "OPENAI_API_KEY", &cfg.OpenAI.APIKey},
		{ProviderAnthropic, "ANTHROPIC_API_KEY", &cfg.Anthropic.APIKey},
	}
	for _, c := range candidates {
		if *c.key != "" {
			cfg.Provider = c.provider
			return
		}
	}
	for _, c := range candidates {
		if k := getenv(c.env); k != "" {
			cfg.Provider = c.provider
			*c.key = k
			return
		}
	}
}

// Validate checks that the selected provider has a key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case ProviderAnthropic:
		key, env = c.Anthropic.APIKey, "CIFRA_ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		key, env = c.OpenAI.APIKey, "CIFRA_OPENAI_API_KEY"
	case ProviderGemini:
		key, env = c.Gemini.APIKey, "CIFRA_GEMINI_API_KEY"
	case ProviderMock:
		return nil
	case "":
		return fmt.Errorf("no LLM provider configured")
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
