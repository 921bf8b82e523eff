// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/serenity/internal/platform/metrics"
)

// SessionSweeper periodically removes expired sessions.
//
// Lookups already delete expired sessions lazily; the sweeper reclaims the
// ones nobody presents again. A slow tick simply delays the next one.
type SessionSweeper struct {
	store    SessionStore
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewSessionSweeper constructs a sweeper. interval <= 0 disables it.
func NewSessionSweeper(store SessionStore, interval, timeout time.Duration, logger *slog.Logger, recorder *metrics.Metrics) *SessionSweeper {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &SessionSweeper{
		store:    store,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		metrics:  recorder,
	}
}

// Start launches the sweep loop in a goroutine that exits when ctx is done.
func (sweeper *SessionSweeper) Start(ctx context.Context) {
	if sweeper.interval <= 0 {
		sweeper.logger.Info("session_sweeper_disabled")
		return
	}

	go sweeper.run(ctx)
}

func (sweeper *SessionSweeper) run(ctx context.Context) {
	ticker := time.NewTicker(sweeper.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = sweeper.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single bounded sweep and logs its outcome.
func (sweeper *SessionSweeper) SweepOnce(ctx context.Context) (int, error) {
	tickCtx, cancel := context.WithTimeout(ctx, sweeper.timeout)
	defer cancel()

	removed, err := sweeper.store.SweepExpired(tickCtx)
	if err != nil {
		sweeper.logger.Warn("session_sweep_failed", slog.Any("error", err))
		return 0, err
	}

	sweeper.metrics.SessionsSwept(removed)
	if removed > 0 {
		sweeper.logger.Info("session_sweep_completed", slog.Int("removed", removed))
	}

	return removed, nil
}
