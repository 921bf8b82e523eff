// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/serenity/internal/platform/ctxutil"
	"github.com/taibuivan/serenity/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_Identity verifies that the resolved identity and token travel together.
*/
func TestContext_Identity(t *testing.T) {
	ctx := context.Background()
	organization := "org-1"
	identity := &sec.Identity{
		ID:             "student-123",
		Kind:           sec.KindStudent,
		Role:           sec.RoleStudent,
		OrganizationID: &organization,
	}

	// 1. Initially should be nil
	assert.Nil(t, ctxutil.GetIdentity(ctx))
	assert.Empty(t, ctxutil.GetSessionToken(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithIdentity(ctx, identity, "opaque-token")
	retrieved := ctxutil.GetIdentity(ctx)

	assert.NotNil(t, retrieved)
	assert.Equal(t, "student-123", retrieved.ID)
	assert.Equal(t, sec.RoleStudent, retrieved.Role)
	assert.True(t, retrieved.InOrganization("org-1"))
	assert.Equal(t, "opaque-token", ctxutil.GetSessionToken(ctx))
}
