package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Provider string

const (
	ProviderGroq      Provider = "groq"
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

const envPrefix = "GOODGIT_"

// Config carries every tunable the pipeline needs: credential, endpoint,
// timeout, retry policy and size limits. It is built once by the front end
// and passed down explicitly; nothing below main reads the environment.
type Config struct {
	Provider Provider `koanf:"provider"`
	APIKey   string   `koanf:"-"`
	Model    string   `koanf:"model"`
	// Endpoint overrides the provider's default API URL. Mostly for tests.
	Endpoint       string        `koanf:"endpoint"`
	Timeout        time.Duration `koanf:"timeout"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryDelay     time.Duration `koanf:"retry_delay"`
	MaxDiffBytes   int           `koanf:"max_diff_bytes"`
	MaxDescription int           `koanf:"max_description"`
}

func defaults(k *koanf.Koanf) {
	k.Set("timeout", "30s")
	k.Set("max_retries", 1)
	k.Set("retry_delay", "1s")
	k.Set("max_diff_bytes", 16*1024)
	k.Set("max_description", 72)
}

// Load reads GOODGIT_* environment overrides on top of the defaults and
// resolves the provider credential. This is the only place besides IsDebug
// that touches ambient environment state.
func Load() (Config, error) {
	k := koanf.New(".")
	defaults(k)

	transform := func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}
	if err := k.Load(env.Provider(envPrefix, ".", transform), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := resolveCredential(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// resolveCredential picks the provider credential. An explicit
// GOODGIT_PROVIDER wins; otherwise the first available key does, Groq first
// since it is the default backend.
func resolveCredential(cfg *Config) error {
	keys := map[Provider]string{
		ProviderGroq:      os.Getenv("GROQ_API_KEY"),
		ProviderAnthropic: os.Getenv("ANTHROPIC_API_KEY"),
		ProviderOpenAI:    os.Getenv("OPENAI_API_KEY"),
	}

	if cfg.Provider != "" {
		key, ok := keys[cfg.Provider]
		if !ok {
			return fmt.Errorf("unknown provider %q (expected groq, anthropic or openai)", cfg.Provider)
		}
		if key == "" {
			return fmt.Errorf("provider %q selected but its API key is not set", cfg.Provider)
		}
		cfg.APIKey = key
		return nil
	}

	for _, p := range []Provider{ProviderGroq, ProviderAnthropic, ProviderOpenAI} {
		if keys[p] != "" {
			cfg.Provider = p
			cfg.APIKey = keys[p]
			return nil
		}
	}
	return fmt.Errorf("no API key found. Set GROQ_API_KEY, ANTHROPIC_API_KEY or OPENAI_API_KEY")
}

func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.MaxDiffBytes <= 0 {
		return fmt.Errorf("max_diff_bytes must be positive, got %d", c.MaxDiffBytes)
	}
	if c.MaxDescription <= 0 {
		return fmt.Errorf("max_description must be positive, got %d", c.MaxDescription)
	}
	return nil
}

// IsDebug reports whether verbose debug logging was requested.
func IsDebug() bool {
	return os.Getenv("DEBUG") != ""
}
