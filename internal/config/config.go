// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store driver names.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Auth mode names.
const (
	AuthModeToken  = "token"
	AuthModeStatic = "static"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Key store. The memory driver needs no external services and is
	// meant for development.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Cache (Redis). Used for IP rate limiting; optional when rate
	// limiting is disabled.
	RedisURL string `env:"REDIS_URL"`

	// Identity provider. In token mode credentials are verified
	// against AuthTokenInfoURL; static mode accepts AuthStaticToken as
	// the sole credential for a fixed development identity.
	AuthMode         string `env:"AUTH_MODE" envDefault:"token"`
	AuthTokenInfoURL string `env:"AUTH_TOKENINFO_URL"`
	AuthStaticToken  string `env:"AUTH_STATIC_TOKEN" envDefault:"dev-token"`
	AuthStaticUserID string `env:"AUTH_STATIC_USER_ID" envDefault:"dev-user"`
	AuthStaticEmail  string `env:"AUTH_STATIC_EMAIL" envDefault:"dev@localhost"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// Metrics
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or inconsistent.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks cross-field requirements that env tags cannot express.
func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required with STORE_DRIVER=postgres")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.AuthMode {
	case AuthModeToken:
		if c.AuthTokenInfoURL == "" {
			return fmt.Errorf("AUTH_TOKENINFO_URL is required with AUTH_MODE=token")
		}
	case AuthModeStatic:
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}

	if c.RateLimitEnabled && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required with RATE_LIMIT_ENABLED=true")
	}

	return nil
}
