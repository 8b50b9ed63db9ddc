package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q", cfg.DatabaseType)
	}
	if cfg.SessionIdleTimeout != 30*time.Minute {
		t.Errorf("SessionIdleTimeout = %v", cfg.SessionIdleTimeout)
	}
	if cfg.GenerationAttempts != 3 {
		t.Errorf("GenerationAttempts = %d", cfg.GenerationAttempts)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_URL", "postgres://localhost/guessquest")
	t.Setenv("SESSION_IDLE_TIMEOUT", "10m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != "9000" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.DatabaseType != "postgres" || cfg.DatabaseURL == "" {
		t.Errorf("db config = %q %q", cfg.DatabaseType, cfg.DatabaseURL)
	}
	if cfg.SessionIdleTimeout != 10*time.Minute {
		t.Errorf("SessionIdleTimeout = %v", cfg.SessionIdleTimeout)
	}
}

func TestLoadRequiresURLForNetworkedDB(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for postgres without DB_URL")
	}
}
