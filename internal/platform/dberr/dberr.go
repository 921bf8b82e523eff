// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level storage errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/serenity/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a storage error and wraps it into a meaningful [apperr.AppError].
//
// Errors that already are [apperr.AppError] pass through untouched, so repositories
// can return domain sentinels and services can call Wrap unconditionally.
// Everything else (driver errors, timeouts, cancelled contexts) collapses into
// PERSISTENCE_UNAVAILABLE with the action recorded on the cause for logs.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Already classified
	if apperr.IsAppError(err) {
		return err
	}

	// 2. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 3. Anything else is the store being unreachable, slow or broken
	return apperr.PersistenceUnavailable(fmt.Errorf("%s: %w", action, err))
}

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// IsForeignKeyViolation reports whether err is a Postgres foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
