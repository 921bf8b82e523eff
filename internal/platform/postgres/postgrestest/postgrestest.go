// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package postgrestest connects repository tests to a real PostgreSQL database.

Tests are skipped unless SERENITY_TEST_DATABASE_URL points at a disposable
database. The schema is migrated to the latest version once per process.
Tests share the database, so each one scopes its rows with [ID].
*/
package postgrestest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/serenity/internal/platform/migration"
	"github.com/taibuivan/serenity/internal/platform/postgres"
	"github.com/taibuivan/serenity/pkg/uuid"
)

// EnvDatabaseURL names the variable holding the test database DSN.
const EnvDatabaseURL = "SERENITY_TEST_DATABASE_URL"

var (
	migrateOnce sync.Once
	migrateErr  error
)

// Pool returns a migrated connection pool closed at test cleanup, or skips the test.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set", EnvDatabaseURL)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	migrateOnce.Do(func() {
		migrateErr = migration.RunUp(dsn, migrationsDir(), logger)
	})
	if migrateErr != nil {
		t.Fatalf("migrate test database: %v", migrateErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dsn, postgres.Options{StatementTimeout: 5 * time.Second}, logger)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

// ID returns a fresh identifier with a readable prefix.
func ID(prefix string) string {
	return prefix + "-" + uuid.New()
}

// migrationsDir resolves data/migrations from this file's location.
func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "data", "migrations")
}
