package config

import (
	"errors"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("ALGORITHM", "HS256")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.JWTExpiry != 30*time.Minute {
		t.Errorf("JWTExpiry = %s, want 30m", cfg.JWTExpiry)
	}
	if !cfg.DB.Local || cfg.DB.SQLitePath != "temp.db" {
		t.Errorf("DB = %+v, want local temp.db", cfg.DB)
	}
	if cfg.DB.ConnectAttempts != 5 || cfg.DB.ConnectDelay != 5*time.Second {
		t.Errorf("connect retry = %d x %s, want 5 x 5s", cfg.DB.ConnectAttempts, cfg.DB.ConnectDelay)
	}
	if cfg.ModelPath != "models/model.json" {
		t.Errorf("ModelPath = %q", cfg.ModelPath)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://titanic-fullstack.appspot.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadMissingSigningConfig(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("ALGORITHM", "")

	_, err := Load()
	if !errors.Is(err, ErrSecretRequired) {
		t.Errorf("expected ErrSecretRequired, got %v", err)
	}
	if !errors.Is(err, ErrAlgorithmRequired) {
		t.Errorf("expected ErrAlgorithmRequired, got %v", err)
	}
}

func TestLoadNetworkedBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_LOCAL", "false")
	t.Setenv("DB_HOST", "mysql")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_USER", "titanic")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "predictions")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://example.com ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.DB.Local {
		t.Error("DB.Local = true, want false")
	}
	if cfg.DB.Host != "mysql" || cfg.DB.Port != "3307" || cfg.DB.User != "titanic" || cfg.DB.Name != "predictions" {
		t.Errorf("DB = %+v", cfg.DB)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://example.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"DB_LOCAL", "maybe"},
		{"ACCESS_TOKEN_EXPIRE_MINUTES", "soon"},
		{"ACCESS_TOKEN_EXPIRE_MINUTES", "0"},
		{"DB_CONNECT_DELAY", "5"},
		{"DB_CONNECT_DELAY", "0s"},
		{"DB_CONNECT_DELAY", "-1s"},
		{"DB_CONNECT_ATTEMPTS", "0"},
		{"DB_CONNECT_ATTEMPTS", "-3"},
		{"RATE_LIMIT_RPS", "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q expected error", tt.key, tt.value)
			}
		})
	}
}
