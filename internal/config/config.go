// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration
type Config struct {
	ServerPort string `env:"PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// Primary database. SQLite by default; set DB_TYPE to postgres or
	// mysql together with DB_URL for a networked database.
	DatabaseType string `env:"DB_TYPE" envDefault:"sqlite"`
	DatabaseURL  string `env:"DB_URL"`
	DatabasePath string `env:"DB_PATH" envDefault:"./guessquest.db"`

	// Local fallback store for scores when the primary is unreachable.
	// Empty disables it. Ignored when the primary is already SQLite.
	FallbackDBPath string `env:"FALLBACK_DB_PATH" envDefault:"./guessquest-fallback.db"`

	// Question generator. Disabled when the API key is empty.
	OpenAIAPIKey       string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel        string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	GenerationAttempts int           `env:"GENERATION_ATTEMPTS" envDefault:"3"`
	ContentTimeout     time.Duration `env:"CONTENT_TIMEOUT" envDefault:"45s"`

	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	SessionRetention   time.Duration `env:"SESSION_RETENTION" envDefault:"5m"`

	ScoreQueueSize int `env:"SCORE_QUEUE_SIZE" envDefault:"64"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "sqlite3" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DB_URL is required when DB_TYPE is %s", cfg.DatabaseType)
	}
	return cfg, nil
}
