package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/labcopy")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.Env != "development" || !cfg.IsDev() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.DBMaxConns != 10 || cfg.DBMinConns != 2 {
		t.Errorf("pool sizes = %d/%d, want 10/2", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without DATABASE_URL")
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/labcopy")
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.Env != "production" || cfg.LogLevel != "debug" {
		t.Errorf("got %+v", cfg)
	}
	if cfg.IsDev() {
		t.Error("production config reports IsDev")
	}
}

func TestValidateAuthSecret(t *testing.T) {
	cfg := &Config{Env: "production", LogLevel: "info"}
	if err := cfg.Validate(); err == nil {
		t.Error("production config without AUTH_SECRET validated")
	}
	cfg.AuthSecret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	// Development runs without a secret.
	dev := &Config{Env: "development", LogLevel: "info"}
	if err := dev.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateLogLevel(t *testing.T) {
	cfg := &Config{Env: "development", LogLevel: "verbose"}
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log level validated")
	}
}
