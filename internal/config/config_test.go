package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 1100*time.Millisecond, cfg.RelatedCooldown)
	assert.Equal(t, 30*time.Second, cfg.RelatedTimeout)
	assert.Equal(t, 60, cfg.GeminiMaxRPM)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Empty(t, cfg.GeminiAPIKey, "api key is optional at startup")
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RELATED_COOLDOWN_MS", "250")
	t.Setenv("RELATED_TIMEOUT_SECONDS", "0")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TRACE_SAMPLE_RATIO", "1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.RelatedCooldown)
	assert.Zero(t, cfg.RelatedTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 1.0, cfg.TraceSampleRatio)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:             "8080",
			ContentDir:       "./content",
			GeminiMaxRPM:     60,
			RelatedCooldown:  time.Second,
			TraceSampleRatio: 0.5,
			StatsInterval:    time.Minute,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = "http" }},
		{"zero cooldown", func(c *Config) { c.RelatedCooldown = 0 }},
		{"negative timeout", func(c *Config) { c.RelatedTimeout = -time.Second }},
		{"ratio above one", func(c *Config) { c.TraceSampleRatio = 1.5 }},
		{"zero rpm", func(c *Config) { c.GeminiMaxRPM = 0 }},
		{"zero stats interval", func(c *Config) { c.StatsInterval = 0 }},
		{"no content dir", func(c *Config) { c.ContentDir = "" }},
	}

	require.NoError(t, base().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
