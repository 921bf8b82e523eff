// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestPgx5URL rewrites only the postgres schemes.
*/
func TestPgx5URL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/serenity", "pgx5://u:p@db:5432/serenity"},
		{"postgresql://u:p@db/serenity?sslmode=disable", "pgx5://u:p@db/serenity?sslmode=disable"},
		{"pgx5://db/serenity", "pgx5://db/serenity"},
		{"host=db dbname=serenity", "host=db dbname=serenity"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, pgx5URL(tt.in))
		})
	}
}

/*
TestRunUp_MissingDirectory fails before touching the database.
*/
func TestRunUp_MissingDirectory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := RunUp("postgres://localhost/none", t.TempDir()+"/missing", logger)
	assert.Error(t, err)
}
