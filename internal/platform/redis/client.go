// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides the managed client behind the Redis session store.

Sessions are the only data kept here: each is a JSON value whose key expires
shortly after the session does, plus one sorted set indexing expiry instants
for the background sweep.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/serenity/internal/platform/constants"
)

const (
	dialTimeout = 3 * time.Second
	pingTimeout = 2 * time.Second
	poolSize    = 16
	minIdle     = 2
	maxIdle     = 8
)

// NewClient parses a Redis URL and returns a connected client.
//
// Socket read and write deadlines follow storeTimeout, so a stalled server
// fails a session lookup inside the same budget the services enforce.
//
// # Parameters
//   - context: Context for the initial ping.
//   - redisURL: Redis connection URL.
//   - storeTimeout: Per-command socket deadline.
//   - logger: Structured logger for connection events.
func NewClient(context stdctx.Context, redisURL string, storeTimeout time.Duration, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.ClientName = constants.AppName
	options.PoolSize = poolSize
	options.MinIdleConns = minIdle
	options.MaxIdleConns = maxIdle
	options.DialTimeout = dialTimeout
	options.ReadTimeout = storeTimeout
	options.WriteTimeout = storeTimeout
	options.ContextTimeoutEnabled = true

	client := redis.NewClient(options)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
	)

	return client, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}

// RegisterStats exposes connection pool gauges on registerer.
func RegisterStats(registerer prometheus.Registerer, client *redis.Client) error {
	gauge := func(name, help string, value func(*redis.PoolStats) uint32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "serenity",
			Subsystem: "redis_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(value(client.PoolStats())) })
	}

	collectors := []prometheus.Collector{
		gauge("total_conns", "All open connections", func(stats *redis.PoolStats) uint32 { return stats.TotalConns }),
		gauge("idle_conns", "Idle connections in the pool", func(stats *redis.PoolStats) uint32 { return stats.IdleConns }),
		gauge("wait_timeouts", "Times a connection could not be obtained in time", func(stats *redis.PoolStats) uint32 { return stats.Timeouts }),
	}

	for _, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			return fmt.Errorf("redis: register pool stats: %w", err)
		}
	}

	return nil
}
