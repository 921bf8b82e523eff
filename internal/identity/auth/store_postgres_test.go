// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/serenity/internal/identity/auth"
	"github.com/taibuivan/serenity/internal/platform/apperr"
	"github.com/taibuivan/serenity/internal/platform/clock"
	"github.com/taibuivan/serenity/internal/platform/postgres/postgrestest"
	"github.com/taibuivan/serenity/internal/platform/sec"
)

/*
TestPostgresCredentialRepository covers lookups by both login keys and the
duplicate-key conflict.
*/
func TestPostgresCredentialRepository(t *testing.T) {
	pool := postgrestest.Pool(t)
	repository := auth.NewCredentialRepository(pool)
	ctx := context.Background()

	identifier := postgrestest.ID("S")
	email := postgrestest.ID("staff") + "@school.edu"
	organization := organizationID

	student := &auth.Credential{
		Identity:     sec.Identity{ID: postgrestest.ID("student"), Kind: sec.KindStudent, OrganizationID: &organization},
		Identifier:   &identifier,
		PasswordHash: "hash",
		CreatedAt:    start,
	}
	staff := &auth.Credential{
		Identity:     sec.Identity{ID: postgrestest.ID("admin"), Kind: sec.KindAdmin, OrganizationID: &organization},
		Email:        &email,
		PasswordHash: "hash",
		Disabled:     true,
		CreatedAt:    start,
	}
	require.NoError(t, repository.Create(ctx, student))
	require.NoError(t, repository.Create(ctx, staff))

	tests := []struct {
		name     string
		key      auth.LoginKey
		value    string
		wantID   string
		wantRole sec.Role
		wantCode string
	}{
		{"Student by identifier", auth.LoginKeyIdentifier, identifier, student.Identity.ID, sec.RoleStudent, ""},
		{"Staff by email", auth.LoginKeyEmail, email, staff.Identity.ID, sec.RoleAdmin, ""},
		{"Identifier is not an email", auth.LoginKeyEmail, identifier, "", "", apperr.CodeNotFound},
		{"Unknown identifier", auth.LoginKeyIdentifier, postgrestest.ID("S"), "", "", apperr.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			credential, err := repository.FindByLoginKey(ctx, tt.key, tt.value)
			if tt.wantCode != "" {
				assert.True(t, apperr.HasCode(err, tt.wantCode), "got %v", err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, credential.Identity.ID)
			assert.Equal(t, tt.wantRole, credential.Identity.Role)
			require.NotNil(t, credential.Identity.OrganizationID)
			assert.Equal(t, organizationID, *credential.Identity.OrganizationID)
		})
	}

	t.Run("Disabled flag round-trips", func(t *testing.T) {
		credential, err := repository.FindByLoginKey(ctx, auth.LoginKeyEmail, email)
		require.NoError(t, err)
		assert.True(t, credential.Disabled)
	})

	t.Run("Duplicate identifier", func(t *testing.T) {
		duplicate := *student
		duplicate.Identity.ID = postgrestest.ID("student")

		err := repository.Create(ctx, &duplicate)
		assert.True(t, apperr.HasCode(err, apperr.CodeConflict), "got %v", err)
	})
}

/*
TestPostgresSessionStore checks validity around the expiry instant, eager
deletion, idempotent delete and the sweep.
*/
func TestPostgresSessionStore(t *testing.T) {
	pool := postgrestest.Pool(t)
	clk := clock.NewFixed(start)
	store := auth.NewPostgresSessionStore(pool, clk)
	ctx := context.Background()

	expiresAt := start.Add(sessionTTL)
	organization := organizationID

	newSession := func(expiresAt time.Time) *auth.Session {
		return &auth.Session{
			TokenHash:      postgrestest.ID("hash"),
			IdentityID:     postgrestest.ID("student"),
			Kind:           sec.KindStudent,
			Role:           sec.RoleStudent,
			OrganizationID: &organization,
			CreatedAt:      start,
			ExpiresAt:      expiresAt,
		}
	}

	t.Run("Expiry boundary", func(t *testing.T) {
		session := newSession(expiresAt)
		require.NoError(t, store.Put(ctx, session))

		clk.Set(expiresAt.Add(-time.Microsecond))
		loaded, err := store.Get(ctx, session.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, session.IdentityID, loaded.IdentityID)
		assert.Equal(t, sec.RoleStudent, loaded.Role)
		assert.True(t, expiresAt.Equal(loaded.ExpiresAt))

		clk.Set(expiresAt)
		_, err = store.Get(ctx, session.TokenHash)
		assert.ErrorIs(t, err, auth.ErrSessionExpired)

		_, err = store.Get(ctx, session.TokenHash)
		assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		clk.Set(start)
		session := newSession(expiresAt)
		require.NoError(t, store.Put(ctx, session))

		require.NoError(t, store.Delete(ctx, session.TokenHash))
		require.NoError(t, store.Delete(ctx, session.TokenHash))

		_, err := store.Get(ctx, session.TokenHash)
		assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	})

	t.Run("Sweep keeps live sessions", func(t *testing.T) {
		clk.Set(start)
		expired := newSession(expiresAt)
		live := newSession(expiresAt.Add(time.Second))
		require.NoError(t, store.Put(ctx, expired))
		require.NoError(t, store.Put(ctx, live))

		clk.Set(expiresAt.Add(500 * time.Millisecond))
		removed, err := store.SweepExpired(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, removed, 1)

		_, err = store.Get(ctx, expired.TokenHash)
		assert.ErrorIs(t, err, auth.ErrSessionNotFound)

		_, err = store.Get(ctx, live.TokenHash)
		assert.NoError(t, err)
	})
}
