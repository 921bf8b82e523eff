// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the SQL schema in data/migrations at startup
// through golang-migrate.
//
// The API refuses to serve traffic against a schema it does not recognise,
// so a dirty or failed migration aborts boot.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers the "pgx5" scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunUp applies all pending UP migrations.
//
// # Parameters
//   - dsn: postgres:// or postgresql:// URL (pgx5:// is accepted as-is).
//   - migrationsPath: Directory holding NNNNNN_name.up.sql / .down.sql pairs.
//   - logger: Structured logger for migration events.
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	if info, err := os.Stat(migrationsPath); err != nil || !info.IsDir() {
		return fmt.Errorf("migration: %q is not a readable directory", migrationsPath)
	}

	migrator, err := migrate.New("file://"+migrationsPath, pgx5URL(dsn))
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceErr, databaseErr := migrator.Close()
		if err := errors.Join(sourceErr, databaseErr); err != nil {
			logger.Warn("migration_close_failed", slog.Any("error", err))
		}
	}()

	migrator.Log = &slogAdapter{logger: logger}

	from, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to read version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: schema is dirty at version %d, fix it by hand and force the version", from)
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("migration_up_to_date", slog.Uint64("version", uint64(from)))
		return nil
	case err != nil:
		return fmt.Errorf("migration: up failed: %w", err)
	}

	to, _, _ := migrator.Version()
	logger.Info("migration_applied",
		slog.Uint64("from_version", uint64(from)),
		slog.Uint64("to_version", uint64(to)),
	)

	return nil
}

// pgx5URL rewrites a postgres URL to the scheme the pgx/v5 driver registers.
func pgx5URL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// slogAdapter satisfies migrate.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (adapter *slogAdapter) Printf(format string, args ...any) {
	adapter.logger.Debug("migration_progress", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (adapter *slogAdapter) Verbose() bool { return false }
