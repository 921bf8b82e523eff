// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/serenity/internal/identity/access"
	"github.com/taibuivan/serenity/internal/platform/apperr"
	"github.com/taibuivan/serenity/internal/platform/postgres/postgrestest"
	"github.com/taibuivan/serenity/internal/platform/sec"
)

/*
TestPostgresOverrideRepository covers grant writes against the identity
foreign key and duplicate grants.
*/
func TestPostgresOverrideRepository(t *testing.T) {
	pool := postgrestest.Pool(t)
	repository := access.NewOverrideRepository(pool)
	ctx := context.Background()

	adminID := postgrestest.ID("admin")
	_, err := pool.Exec(ctx, `
		INSERT INTO auth.identity (id, kind, email, passwordhash, organizationid)
		VALUES ($1, 'admin', $2, 'hash', 'org-1')`,
		adminID, adminID+"@school.edu",
	)
	require.NoError(t, err)

	tests := []struct {
		name       string
		identityID string
		permission access.Permission
		wantCode   string
	}{
		{"Grant to admin", adminID, access.ReportsView, ""},
		{"Repeat grant", adminID, access.ReportsView, ""},
		{"Second permission", adminID, access.AdminsView, ""},
		{"Unknown identity", postgrestest.ID("ghost"), access.ReportsView, apperr.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repository.Add(ctx, tt.identityID, tt.permission, "grantor")
			if tt.wantCode != "" {
				assert.True(t, apperr.HasCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
		})
	}

	raw, err := repository.ListByIdentity(ctx, adminID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{string(access.ReportsView), string(access.AdminsView)}, raw)

	t.Run("Service reports unknown recipients as not found", func(t *testing.T) {
		service := access.NewService(access.DefaultCatalog(), repository, time.Second)
		superAdmin := &sec.Identity{ID: "root", Kind: sec.KindSuperAdmin, Role: sec.RoleSuperAdmin}

		err := service.Grant(ctx, superAdmin, postgrestest.ID("ghost"), access.ReportsView)
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound), "got %v", err)
	})
}
