// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/serenity/internal/platform/config"
)

/*
TestLoad_Defaults verifies that only the connection URLs are mandatory.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/serenity")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, config.SessionBackendRedis, cfg.SessionBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Minute, cfg.SessionSweepInterval)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "UTC", cfg.CalendarTimezone)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestLoad_MissingRequired ensures startup fails without a database URL.
*/
func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestConfig_Validate covers the cross-field rules.
*/
func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			SessionBackend: config.SessionBackendPostgres,
			SessionTTL:     time.Hour,
			StoreTimeout:   time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"valid", func(*config.Config) {}, false},
		{"unknown_backend", func(c *config.Config) { c.SessionBackend = "memcached" }, true},
		{"zero_ttl", func(c *config.Config) { c.SessionTTL = 0 }, true},
		{"zero_store_timeout", func(c *config.Config) { c.StoreTimeout = 0 }, true},
		{"negative_sweep", func(c *config.Config) { c.SessionSweepInterval = -time.Second }, true},
		{"disabled_sweep", func(c *config.Config) { c.SessionSweepInterval = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
