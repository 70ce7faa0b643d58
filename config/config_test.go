package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("PORT", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Service.Port)
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Metrics.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_TrimsTrailingSlashFromBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.internal:9000/")
	t.Setenv("API_TIMEOUT", "3s")

	cfg := Load()

	assert.Equal(t, "http://api.internal:9000", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantMsg string
	}{
		{"bad port", func(c *Config) { c.Service.Port = "abc" }, "PORT must be a valid number"},
		{"bad env", func(c *Config) { c.Service.Env = "qa" }, "ENV must be one of"},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, "API_BASE_URL must be an absolute URL"},
		{"missing secret in prod", func(c *Config) { c.Service.Env = "production" }, "SESSION_SECRET"},
		{"bad sample rate", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.SampleRate = 2
		}, "OTEL_SAMPLE_RATE"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "LOG_LEVEL"},
		{"bad metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "METRICS_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestGetEnvDurationSecondsWithMax_FallsBack(t *testing.T) {
	t.Setenv("X_DELAY", "2m")
	assert.Equal(t, 5, getEnvDurationSecondsWithMax("X_DELAY", 5, 30))

	t.Setenv("X_DELAY", "nonsense")
	assert.Equal(t, 5, getEnvDurationSecondsWithMax("X_DELAY", 5, 30))

	t.Setenv("X_DELAY", "12s")
	assert.Equal(t, 12, getEnvDurationSecondsWithMax("X_DELAY", 5, 30))
}
