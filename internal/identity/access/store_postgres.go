// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/serenity/internal/platform/apperr"
	"github.com/taibuivan/serenity/internal/platform/database/schema"
	"github.com/taibuivan/serenity/internal/platform/dberr"
)

// PostgresOverrideRepository implements [OverrideRepository] over auth.admin_permission.
type PostgresOverrideRepository struct {
	pool *pgxpool.Pool
}

// NewOverrideRepository creates a new PostgreSQL implementation of the OverrideRepository.
func NewOverrideRepository(pool *pgxpool.Pool) *PostgresOverrideRepository {
	return &PostgresOverrideRepository{pool: pool}
}

/*
ListByIdentity fetches every permission row attached to the identity.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - []string: Granted tokens ordered by grant time
  - error: Database errors
*/
func (repository *PostgresOverrideRepository) ListByIdentity(context context.Context, identityID string) ([]string, error) {
	table := schema.AuthAdminPermission
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s, %s`,
		table.Permission, table.Table, table.IdentityID, table.GrantedAt, table.Permission,
	)

	rows, err := repository.pool.Query(context, query, identityID)
	if err != nil {
		return nil, fmt.Errorf("postgres_override_repo_list_failed: %w", err)
	}

	permissions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres_override_repo_scan_failed: %w", err)
	}

	return permissions, nil
}

/*
Add inserts a grant row, keeping the original grant when one exists.

Parameters:
  - context: context.Context
  - identityID: string
  - permission: Permission
  - grantedBy: string

Returns:
  - error: apperr.NotFound if the identity does not exist, otherwise database errors
*/
func (repository *PostgresOverrideRepository) Add(context context.Context, identityID string, permission Permission, grantedBy string) error {
	table := schema.AuthAdminPermission
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (%s, %s) DO NOTHING`,
		table.Table, table.IdentityID, table.Permission, table.GrantedBy, table.GrantedAt,
		table.IdentityID, table.Permission,
	)

	if _, err := repository.pool.Exec(context, query, identityID, string(permission), grantedBy); err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.NotFound("Identity")
		}
		return fmt.Errorf("postgres_override_repo_add_failed: %w", err)
	}

	return nil
}
