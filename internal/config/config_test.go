package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithEnvVars(t *testing.T) {
	os.Setenv("COACH_PORT", "9090")
	os.Setenv("COACH_DEBUG", "true")
	os.Setenv("COACH_LOG_FORMAT", "json")
	os.Setenv("COACH_MODEL_BASE_URL", "http://ollama:11434/v1")
	os.Setenv("COACH_MODEL_NAME", "llama3")
	os.Setenv("COACH_MODEL_TEMPERATURE", "0.2")
	os.Setenv("COACH_MODEL_TIMEOUT", "30s")
	os.Setenv("COACH_CORS_ALLOWED_ORIGINS", "https://coach.example.com,https://app.example.com")
	os.Setenv("COACH_SENTRY_DSN", "https://key@sentry.example.com/1")
	defer func() {
		os.Unsetenv("COACH_PORT")
		os.Unsetenv("COACH_DEBUG")
		os.Unsetenv("COACH_LOG_FORMAT")
		os.Unsetenv("COACH_MODEL_BASE_URL")
		os.Unsetenv("COACH_MODEL_NAME")
		os.Unsetenv("COACH_MODEL_TEMPERATURE")
		os.Unsetenv("COACH_MODEL_TIMEOUT")
		os.Unsetenv("COACH_CORS_ALLOWED_ORIGINS")
		os.Unsetenv("COACH_SENTRY_DSN")
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "http://ollama:11434/v1", cfg.ModelBaseURL)
	assert.Equal(t, "llama3", cfg.ModelName)
	assert.InDelta(t, 0.2, cfg.ModelTemperature, 0.0001)
	assert.Equal(t, 30*time.Second, cfg.ModelTimeout)
	assert.Equal(t, []string{"https://coach.example.com", "https://app.example.com"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.HasSentry())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ModelBaseURL)
	assert.Equal(t, "ollama", cfg.ModelAPIKey)
	assert.Equal(t, "mistral:latest", cfg.ModelName)
	assert.InDelta(t, 0.5, cfg.ModelTemperature, 0.0001)
	assert.Equal(t, 120*time.Second, cfg.ModelTimeout)
	assert.Equal(t, []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}, cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(1048576), cfg.MaxBodyBytes)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.HasSentry())
}

func TestLoad_InvalidTemperature(t *testing.T) {
	t.Setenv("COACH_MODEL_TEMPERATURE", "3.5")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "COACH_MODEL_TEMPERATURE")
}

func TestLoad_ZeroTemperatureRejected(t *testing.T) {
	t.Setenv("COACH_MODEL_TEMPERATURE", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "greater than 0")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("COACH_MODEL_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_TIMEOUT")
}
