package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.Model)
	assert.Equal(t, 0.7, cfg.OpenAI.Temperature)
	assert.Equal(t, 30*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, 2, cfg.OpenAI.MaxRetries)
	assert.False(t, cfg.Quote.UseMock)
	assert.Equal(t, "strict", cfg.Quote.IDPolicy)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadRequiresAPIKeyOutsideMockMode(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("USE_MOCK", "false")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadMockModeWithoutAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("USE_MOCK", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Quote.UseMock)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("ID_POLICY", "LENIENT")
	t.Setenv("RATE_LIMIT_RPM", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, 0.2, cfg.OpenAI.Temperature)
	assert.Equal(t, "lenient", cfg.Quote.IDPolicy)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadRejectsUnknownIDPolicy(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ID_POLICY", "whatever")

	_, err := Load()
	assert.Error(t, err)
}

func TestMockOverrideAfterFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("USE_MOCK", "false")

	cfg := FromEnv()
	require.Error(t, cfg.Validate())

	cfg.Quote.UseMock = true
	assert.NoError(t, cfg.Validate())
}
