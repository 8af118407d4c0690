package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearKeys(t *testing.T) {
	t.Helper()
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
}

func TestLoadDefaults(t *testing.T) {
	clearKeys(t)
	t.Setenv("GROQ_API_KEY", "gk-123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderGroq, cfg.Provider)
	assert.Equal(t, "gk-123", cfg.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, 16*1024, cfg.MaxDiffBytes)
	assert.Equal(t, 72, cfg.MaxDescription)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearKeys(t)
	t.Setenv("GROQ_API_KEY", "gk-123")
	t.Setenv("GOODGIT_TIMEOUT", "5s")
	t.Setenv("GOODGIT_MAX_RETRIES", "3")
	t.Setenv("GOODGIT_MODEL", "llama-3.1-8b-instant")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.Model)
}

func TestLoadProviderPrecedence(t *testing.T) {
	clearKeys(t)
	t.Setenv("ANTHROPIC_API_KEY", "ak-1")
	t.Setenv("OPENAI_API_KEY", "ok-1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "ak-1", cfg.APIKey)
}

func TestLoadExplicitProviderWins(t *testing.T) {
	clearKeys(t)
	t.Setenv("GROQ_API_KEY", "gk-1")
	t.Setenv("OPENAI_API_KEY", "ok-1")
	t.Setenv("GOODGIT_PROVIDER", "openai")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "ok-1", cfg.APIKey)
}

func TestLoadExplicitProviderWithoutKeyFails(t *testing.T) {
	clearKeys(t)
	t.Setenv("GROQ_API_KEY", "gk-1")
	t.Setenv("GOODGIT_PROVIDER", "openai")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai")
}

func TestLoadWithoutAnyKeyFails(t *testing.T) {
	clearKeys(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestValidate(t *testing.T) {
	valid := Config{
		Timeout:        time.Second,
		MaxRetries:     1,
		RetryDelay:     time.Second,
		MaxDiffBytes:   1024,
		MaxDescription: 72,
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Timeout = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.MaxRetries = -1
	assert.Error(t, bad.Validate())

	bad = valid
	bad.MaxDiffBytes = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.MaxDescription = 0
	assert.Error(t, bad.Validate())
}
