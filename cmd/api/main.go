// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Serenity HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire access, progression and auth services.
//  7. Start the session sweeper.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/serenity/internal/api"
	"github.com/taibuivan/serenity/internal/identity/access"
	"github.com/taibuivan/serenity/internal/identity/auth"
	"github.com/taibuivan/serenity/internal/platform/clock"
	"github.com/taibuivan/serenity/internal/platform/config"
	"github.com/taibuivan/serenity/internal/platform/constants"
	"github.com/taibuivan/serenity/internal/platform/metrics"
	"github.com/taibuivan/serenity/internal/platform/migration"
	pgstore "github.com/taibuivan/serenity/internal/platform/postgres"
	redisstore "github.com/taibuivan/serenity/internal/platform/redis"
	"github.com/taibuivan/serenity/internal/progression"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("session_backend", cfg.SessionBackend),
		slog.String("calendar_timezone", cfg.CalendarTimezone),
	)

	location, err := clock.LoadLocation(cfg.CalendarTimezone)
	must(log, err, "load calendar timezone")
	clk := clock.NewSystem(location)

	// Root context for background workers; cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration is caught quickly.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, pgstore.Options{StatementTimeout: cfg.StoreTimeout}, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("postgres_pool_closing")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, cfg.StoreTimeout, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("redis_client_closing")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Observability ──────────────────────────────────────────────────
	var recorder *metrics.Metrics
	if cfg.MetricsEnabled {
		recorder = metrics.New()
		must(log, pgstore.RegisterStats(recorder.Registry(), pool), "register postgres stats")
		must(log, redisstore.RegisterStats(recorder.Registry(), rdb), "register redis stats")
	}

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	permissionService := access.NewService(access.DefaultCatalog(), access.NewOverrideRepository(pool), cfg.StoreTimeout)

	streaks := progression.NewStreakEngine(progression.NewStreakRepository(pool), clk, cfg.StoreTimeout)
	badges := progression.NewBadgeEvaluator(
		progression.DefaultCatalog(),
		progression.NewBadgeProgressRepository(pool),
		progression.NewCounterSource(pool),
		clk,
		cfg.StoreTimeout,
	)
	activityRecorder := progression.NewRecorder(streaks, badges, clk, recorder)

	var sessions auth.SessionStore
	switch cfg.SessionBackend {
	case config.SessionBackendPostgres:
		sessions = auth.NewPostgresSessionStore(pool, clk)
	default:
		sessions = auth.NewRedisSessionStore(rdb, clk)
	}

	authService := auth.NewService(
		auth.NewCredentialRepository(pool),
		sessions,
		activityRecorder,
		clk,
		recorder,
		auth.Options{SessionTTL: cfg.SessionTTL, StoreTimeout: cfg.StoreTimeout},
	)

	auth.NewSessionSweeper(sessions, cfg.SessionSweepInterval, cfg.StoreTimeout, log, recorder).Start(rootCtx)

	// ── 8. Health handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Auth:        auth.NewHandler(authService, permissionService, cfg.CookieSecure),
		Access:      access.NewHandler(permissionService),
		Progression: progression.NewHandler(activityRecorder),
	}

	server := api.NewServer(rootCtx, cfg, log, api.Dependencies{
		Sessions:    authService,
		Permissions: permissionService,
		Metrics:     recorder,
	}, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	rootCancel()

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// newLogger builds the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
