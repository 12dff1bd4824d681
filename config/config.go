// Package config loads process configuration from WANDERLUST_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/pkg/logger"
)

const (
	Prefix       = "WANDERLUST_"
	MinSecretLen = 32
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	BasePath string `env:"BASE_PATH" envDefault:"/api"`

	// DatabaseDSN selects Postgres storage. Empty keeps everything in the
	// LocalStore SQLite file.
	DatabaseDSN string `env:"DATABASE_DSN"`
	LocalStore  string `env:"LOCAL_STORE" envDefault:"wanderlust.db"`

	Secret        string        `env:"SECRET"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	CacheMaxSize  int           `env:"CACHE_MAX_SIZE" envDefault:"500"`

	KYCSubmitDelay time.Duration `env:"KYC_SUBMIT_DELAY" envDefault:"2s"`
	PaymentDelay   time.Duration `env:"PAYMENT_DELAY" envDefault:"3s"`
	SubmitTimeout  time.Duration `env:"SUBMIT_TIMEOUT" envDefault:"30s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`

	SeedDemo bool `env:"SEED_DEMO" envDefault:"true"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: Prefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.Secret == "" {
		return core.ErrSecretRequired
	}
	if len(c.Secret) < MinSecretLen {
		return fmt.Errorf("%w - minimum of %d characters", core.ErrSecretTooShort, MinSecretLen)
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("%w: session max age must be positive", core.ErrInvalidInput)
	}
	return nil
}

func (c *Config) Logger() *logger.Config {
	return &logger.Config{Level: logger.Level(c.LogLevel), JSON: c.LogJSON}
}

func (c *Config) Cache() core.CacheConfig {
	return core.CacheConfig{TTL: c.CacheTTL, MaxSize: c.CacheMaxSize}
}

func (c *Config) Session() core.SessionConfig {
	return core.SessionConfig{MaxAge: c.SessionMaxAge}
}
