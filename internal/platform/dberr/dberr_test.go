// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/serenity/internal/platform/apperr"
	"github.com/taibuivan/serenity/internal/platform/dberr"
)

/*
TestWrap classifies storage errors into application error codes.
*/
func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"Missing row", fmt.Errorf("lookup: %w", pgx.ErrNoRows), apperr.CodeNotFound},
		{"Already classified", apperr.NotFound("Identity"), apperr.CodeNotFound},
		{"Deadline", context.DeadlineExceeded, apperr.CodePersistenceUnavailable},
		{"Driver failure", errors.New("connection reset by peer"), apperr.CodePersistenceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dberr.Wrap(tt.err, "test_action")
			assert.True(t, apperr.HasCode(err, tt.wantCode), "got %v", err)
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "test_action"))
}

/*
TestConstraintViolations matches Postgres SQLSTATE codes through wrapping.
*/
func TestConstraintViolations(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantUnique     bool
		wantForeignKey bool
	}{
		{"Unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, true, false},
		{"Foreign key", fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}), false, true},
		{"Other SQLSTATE", &pgconn.PgError{Code: pgerrcode.CheckViolation}, false, false},
		{"Plain error", errors.New("boom"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantUnique, dberr.IsUniqueViolation(tt.err))
			assert.Equal(t, tt.wantForeignKey, dberr.IsForeignKeyViolation(tt.err))
		})
	}
}
