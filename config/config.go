package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"5000" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	// Empty keeps rate-limit counters in process memory.
	RedisURL string `env:"REDIS_URL"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret    string `env:"JWT_SECRET,required" validate:"required,min=32"`
	ResendAPIKey string `env:"RESEND_API_KEY"      validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"         validate:"required_if=Env production,required_if=Env staging"`

	ClientURL      string   `env:"CLIENT_URL"           envDefault:"http://localhost:5173" validate:"required,url"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	// Proxies whose X-Forwarded-For is honored for rate limiting. Empty trusts none.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10" validate:"min=4,max=31"`

	SweepSchedule string `env:"SWEEP_SCHEDULE" envDefault:"@every 15m" validate:"required"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")

	return cfg, nil
}

// SecureCookies reports whether cookies must carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return c.Env != "local"
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
