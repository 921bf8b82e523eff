// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres provides the managed PostgreSQL connection pool shared by
// every repository in the Serenity API.
//
// # Architecture
//
// Repositories receive the *pgxpool.Pool by constructor. This package only
// owns its lifecycle: tuning, startup validation, health pings and the pool
// gauges exposed on /metrics.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taibuivan/serenity/internal/platform/constants"
)

// Pool sizing for the Serenity workload: short auth and progression
// transactions, no long-running reports.
const (
	maxConns          = 20
	minConns          = 4
	maxConnLifetime   = 45 * time.Minute
	maxConnIdleTime   = 10 * time.Minute
	healthCheckPeriod = 1 * time.Minute
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
)

// Options tunes connection-level behaviour.
type Options struct {
	// StatementTimeout caps every statement server-side. Zero leaves the
	// server default in place.
	StatementTimeout time.Duration
}

// NewPool creates and validates a new PostgreSQL connection pool.
//
// Every connection runs in UTC so DATE columns never shift with the server
// zone, and is tagged with the application name for pg_stat_activity.
//
// # Parameters
//   - ctx: Context for the initial connection attempt.
//   - dsn: A libpq-compatible connection string or postgres:// URL.
//   - options: Connection tuning.
//   - logger: Structured logger for pool-level events.
func NewPool(ctx context.Context, dsn string, options Options, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = minConns
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	runtimeParams := poolConfig.ConnConfig.RuntimeParams
	runtimeParams["application_name"] = constants.AppName
	runtimeParams["timezone"] = "UTC"
	if options.StatementTimeout > 0 {
		runtimeParams["statement_timeout"] = strconv.FormatInt(options.StatementTimeout.Milliseconds(), 10)
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.Int("max_conns", int(pool.Stat().MaxConns())),
		slog.Duration("statement_timeout", options.StatementTimeout),
	)

	return pool, nil
}

// Ping verifies that the PostgreSQL connection pool is healthy.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}

	return nil
}

// RegisterStats exposes pool occupancy gauges on registerer.
func RegisterStats(registerer prometheus.Registerer, pool *pgxpool.Pool) error {
	gauge := func(name, help string, value func(*pgxpool.Stat) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "serenity",
			Subsystem: "pg_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(value(pool.Stat())) })
	}

	collectors := []prometheus.Collector{
		gauge("acquired_conns", "Connections currently checked out", (*pgxpool.Stat).AcquiredConns),
		gauge("idle_conns", "Idle connections in the pool", (*pgxpool.Stat).IdleConns),
		gauge("total_conns", "All open connections", (*pgxpool.Stat).TotalConns),
	}

	for _, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			return fmt.Errorf("postgres: register pool stats: %w", err)
		}
	}

	return nil
}
