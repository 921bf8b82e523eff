// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/serenity/internal/platform/apperr"
	"github.com/taibuivan/serenity/internal/platform/clock"
	"github.com/taibuivan/serenity/internal/platform/database/schema"
	"github.com/taibuivan/serenity/internal/platform/dberr"
	"github.com/taibuivan/serenity/internal/platform/sec"
)

// # Credential Repository

// PostgresCredentialRepository implements [CredentialRepository] over auth.identity.
type PostgresCredentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository creates a new PostgreSQL implementation of the CredentialRepository.
func NewCredentialRepository(pool *pgxpool.Pool) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{pool: pool}
}

// loginKeyColumns maps a key to its indexed column. Values are never interpolated.
var loginKeyColumns = map[LoginKey]string{
	LoginKeyIdentifier: schema.AuthIdentity.Identifier,
	LoginKeyEmail:      schema.AuthIdentity.Email,
}

// identityColumns is the select list shared by reads and the insert.
var identityColumns = strings.Join(schema.AuthIdentity.Columns(), ", ")

/*
FindByLoginKey retrieves the credential for a normalized login key.

Parameters:
  - context: context.Context
  - key: LoginKey
  - value: string

Returns:
  - *Credential: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresCredentialRepository) FindByLoginKey(context context.Context, key LoginKey, value string) (*Credential, error) {
	column, ok := loginKeyColumns[key]
	if !ok {
		return nil, fmt.Errorf("postgres_credential_repo_unknown_key: %s", key)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		identityColumns, schema.AuthIdentity.Table, column,
	)

	credential := &Credential{}
	err := repository.pool.QueryRow(context, query, value).Scan(
		&credential.Identity.ID,
		&credential.Identity.Kind,
		&credential.Identifier,
		&credential.Email,
		&credential.PasswordHash,
		&credential.Identity.OrganizationID,
		&credential.Disabled,
		&credential.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Identity")
		}
		return nil, fmt.Errorf("postgres_credential_repo_find_failed: %w", err)
	}

	credential.Identity.Role = credential.Identity.Kind.Role()
	return credential, nil
}

/*
Create persists a new identity row.

Parameters:
  - context: context.Context
  - credential: *Credential

Returns:
  - error: apperr.Conflict on a duplicate login key, or database errors
*/
func (repository *PostgresCredentialRepository) Create(context context.Context, credential *Credential) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schema.AuthIdentity.Table, identityColumns,
	)

	_, err := repository.pool.Exec(context, query,
		credential.Identity.ID,
		credential.Identity.Kind,
		credential.Identifier,
		credential.Email,
		credential.PasswordHash,
		credential.Identity.OrganizationID,
		credential.Disabled,
		credential.CreatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("An account with this login already exists")
		}
		return fmt.Errorf("postgres_credential_repo_create_failed: %w", err)
	}

	return nil
}

// # Session Store

// PostgresSessionStore implements [SessionStore] over auth.session.
type PostgresSessionStore struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

// NewPostgresSessionStore creates a new PostgreSQL-backed SessionStore.
func NewPostgresSessionStore(pool *pgxpool.Pool, clk clock.Clock) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool, clock: clk}
}

/*
Put inserts the session row, replacing any row with the same hash.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Database errors
*/
func (store *PostgresSessionStore) Put(context context.Context, session *Session) error {
	table := schema.AuthSession
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s`,
		table.Table, strings.Join(table.Columns(), ", "),
		table.TokenHash,
		table.IdentityID, table.IdentityID,
		table.Kind, table.Kind,
		table.Role, table.Role,
		table.OrganizationID, table.OrganizationID,
		table.CreatedAt, table.CreatedAt,
		table.ExpiresAt, table.ExpiresAt,
	)

	_, err := store.pool.Exec(context, query,
		session.TokenHash,
		session.IdentityID,
		session.Kind,
		session.Role,
		session.OrganizationID,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_session_put_failed: %w", err)
	}

	return nil
}

/*
Get loads the session row and enforces expiry.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Live session
  - error: ErrSessionNotFound, ErrSessionExpired or database errors
*/
func (store *PostgresSessionStore) Get(context context.Context, tokenHash string) (*Session, error) {
	table := schema.AuthSession
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		table.IdentityID, table.Kind, table.Role, table.OrganizationID, table.CreatedAt, table.ExpiresAt,
		table.Table, table.TokenHash,
	)

	session := &Session{TokenHash: tokenHash}
	var kind, role string

	err := store.pool.QueryRow(context, query, tokenHash).Scan(
		&session.IdentityID,
		&kind,
		&role,
		&session.OrganizationID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("postgres_session_get_failed: %w", err)
	}

	session.Kind = sec.Kind(kind)
	session.Role = sec.Role(role)

	if session.ExpiredAt(store.clock.Now()) {
		if err := store.Delete(context, tokenHash); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}

	return session, nil
}

/*
Delete removes the session row.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - error: Database errors
*/
func (store *PostgresSessionStore) Delete(context context.Context, tokenHash string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.AuthSession.Table, schema.AuthSession.TokenHash)

	if _, err := store.pool.Exec(context, query, tokenHash); err != nil {
		return fmt.Errorf("postgres_session_delete_failed: %w", err)
	}

	return nil
}

/*
SweepExpired physically removes sessions whose expiry has passed.

Parameters:
  - context: context.Context

Returns:
  - int: Rows deleted
  - error: Database errors
*/
func (store *PostgresSessionStore) SweepExpired(context context.Context) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= $1`, schema.AuthSession.Table, schema.AuthSession.ExpiresAt)

	tag, err := store.pool.Exec(context, query, store.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("postgres_session_sweep_failed: %w", err)
	}

	return int(tag.RowsAffected()), nil
}
