// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. In development an
optional .env file is loaded first through 'joho/godotenv'.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, stores) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Session Backends

const (
	// SessionBackendRedis keeps sessions in Redis with key expiry.
	SessionBackendRedis = "redis"

	// SessionBackendPostgres keeps sessions in the auth.session table.
	SessionBackendPostgres = "postgres"
)

// # Configuration Schema

// Config holds all runtime configuration for the Serenity API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Sessions
	SessionBackend       string        `env:"SESSION_BACKEND"        envDefault:"redis"`
	SessionTTL           time.Duration `env:"SESSION_TTL"            envDefault:"24h"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"10m"`
	CookieSecure         bool          `env:"COOKIE_SECURE"          envDefault:"true"`

	// StoreTimeout bounds every individual call to a backing store.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"3s"`

	// CalendarTimezone is the IANA zone in which activity days are counted.
	CalendarTimezone string `env:"CALENDAR_TIMEZONE" envDefault:"UTC"`

	// Observability
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env is normal outside development; any other read error is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case SessionBackendRedis, SessionBackendPostgres:
	default:
		return fmt.Errorf("config: SESSION_BACKEND must be %q or %q, got %q",
			SessionBackendRedis, SessionBackendPostgres, c.SessionBackend)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive, got %s", c.SessionTTL)
	}

	if c.StoreTimeout <= 0 {
		return fmt.Errorf("config: STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}

	if c.SessionSweepInterval < 0 {
		return fmt.Errorf("config: SESSION_SWEEP_INTERVAL must not be negative, got %s", c.SessionSweepInterval)
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
