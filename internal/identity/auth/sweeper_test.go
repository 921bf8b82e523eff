// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/serenity/internal/identity/auth"
)

/*
TestSessionSweeper_SweepOnce removes only expired sessions and counts them.
*/
func TestSessionSweeper_SweepOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for i := 0; i < 3; i++ {
		_, err := f.service.AuthenticateStudent(ctx, studentIdentifier, password)
		require.NoError(t, err)
	}

	f.clock.Advance(sessionTTL / 2)
	live, err := f.service.AuthenticateStaff(ctx, staffEmail, password)
	require.NoError(t, err)

	f.clock.Advance(sessionTTL / 2)
	sweeper := auth.NewSessionSweeper(f.sessions, time.Minute, time.Second, logger, f.metrics)

	removed, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Equal(t, 1, f.sessions.Len())

	_, err = f.service.ResolveSession(ctx, live.Token)
	assert.NoError(t, err)

	expected := `
# HELP serenity_sessions_swept_total Expired sessions removed by the background sweeper
# TYPE serenity_sessions_swept_total counter
serenity_sessions_swept_total 3
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "serenity_sessions_swept_total"))

	t.Run("Store failure", func(t *testing.T) {
		f.sessions.Err = errors.New("connection reset")
		defer func() { f.sessions.Err = nil }()

		_, err := sweeper.SweepOnce(ctx)
		assert.Error(t, err)
	})
}

/*
TestSessionSweeper_Start stops with its context and is inert when disabled.
*/
func TestSessionSweeper_Start(t *testing.T) {
	f := newFixture(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := f.service.AuthenticateStudent(context.Background(), studentIdentifier, password)
	require.NoError(t, err)
	f.clock.Advance(2 * sessionTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auth.NewSessionSweeper(f.sessions, 0, time.Second, logger, nil).Start(ctx)
	assert.Equal(t, 1, f.sessions.Len())

	auth.NewSessionSweeper(f.sessions, 5*time.Millisecond, time.Second, logger, nil).Start(ctx)
	assert.Eventually(t, func() bool { return f.sessions.Len() == 0 }, time.Second, 5*time.Millisecond)
}
