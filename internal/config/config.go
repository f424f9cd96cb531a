package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8000"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	ModelBaseURL     string        `envconfig:"MODEL_BASE_URL" default:"http://localhost:11434/v1"`
	ModelAPIKey      string        `envconfig:"MODEL_API_KEY" default:"ollama"`
	ModelName        string        `envconfig:"MODEL_NAME" default:"mistral:latest"`
	ModelTemperature float32       `envconfig:"MODEL_TEMPERATURE" default:"0.5"`
	ModelTimeout     time.Duration `envconfig:"MODEL_TIMEOUT" default:"120s"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173,http://127.0.0.1:3000,http://127.0.0.1:5173"`
	MaxBodyBytes       int64    `envconfig:"MAX_BODY_BYTES" default:"1048576"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("COACH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	// The chat client omits a zero temperature, which would hand sampling back to the server default.
	if cfg.ModelTemperature <= 0 || cfg.ModelTemperature > 2 {
		return nil, fmt.Errorf("invalid COACH_MODEL_TEMPERATURE %v: must be greater than 0 and at most 2", cfg.ModelTemperature)
	}

	return &cfg, nil
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
