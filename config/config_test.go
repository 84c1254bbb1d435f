package config_test

import (
	"log/slog"
	"testing"

	"github.com/ErlanBelekov/swinggity/config"
)

const testSecret = "config-test-secret-at-least-32-chars"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/swinggity")
	t.Setenv("JWT_SECRET", testSecret)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Env != "local" {
		t.Errorf("Env = %q, want local", cfg.Env)
	}
	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Port)
	}
	if cfg.SecureCookies() {
		t.Error("local env must not require secure cookies")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_URL", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for empty DATABASE_URL")
	}
}

func TestLoad_ShortJWTSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "too-short")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for short JWT_SECRET")
	}
}

func TestLoad_ProductionRequiresResend(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when RESEND_* missing in production")
	}

	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("RESEND_FROM", "hello@swinggity.com")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.SecureCookies() {
		t.Error("production must use secure cookies")
	}
}

func TestLoad_TrimsClientURL(t *testing.T) {
	setRequired(t)
	t.Setenv("CLIENT_URL", "https://swinggity.com/")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ClientURL != "https://swinggity.com" {
		t.Errorf("ClientURL = %q", cfg.ClientURL)
	}
}

func TestLoad_AllowedOriginsList(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		cfg := &config.Config{LogLevel: in}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoad_BcryptCostBounds(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}

	t.Setenv("BCRYPT_COST", "3")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for bcrypt cost below 4")
	}
}

func TestLoad_TrustedProxies(t *testing.T) {
	setRequired(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1,10.0.0.0/8")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[1] != "10.0.0.0/8" {
		t.Errorf("TrustedProxies = %v", cfg.TrustedProxies)
	}
}
