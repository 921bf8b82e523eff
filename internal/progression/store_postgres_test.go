// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progression_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/serenity/internal/platform/clock"
	"github.com/taibuivan/serenity/internal/platform/postgres/postgrestest"
	"github.com/taibuivan/serenity/internal/progression"
)

/*
TestPostgresStreakRepository advances a stored streak and serializes
concurrent writers for one identity.
*/
func TestPostgresStreakRepository(t *testing.T) {
	pool := postgrestest.Pool(t)
	repository := progression.NewStreakRepository(pool)
	ctx := context.Background()

	advance := func(date clock.Date) func(progression.StreakRecord) (progression.StreakRecord, bool) {
		return func(current progression.StreakRecord) (progression.StreakRecord, bool) {
			next, changed := current.Advance(date)
			next.UpdatedAt = date.Midnight()
			return next, changed
		}
	}

	identityID := postgrestest.ID("student")

	record, err := repository.Find(ctx, identityID)
	require.NoError(t, err)
	assert.Nil(t, record)

	steps := []struct {
		name      string
		day       clock.Date
		wantCount int
		wantBest  int
	}{
		{"First day", day1, 1, 1},
		{"Next day", day1.AddDays(1), 2, 2},
		{"Same day again", day1.AddDays(1), 2, 2},
		{"After a gap", day1.AddDays(4), 1, 2},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			record, err := repository.Apply(ctx, identityID, advance(step.day))
			require.NoError(t, err)
			assert.Equal(t, step.wantCount, record.Count)
			assert.Equal(t, step.wantBest, record.BestCount)

			stored, err := repository.Find(ctx, identityID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, step.wantCount, stored.Count)
			assert.Equal(t, step.day, stored.LastActiveDate)
		})
	}

	t.Run("Concurrent writers", func(t *testing.T) {
		concurrentID := postgrestest.ID("student")

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = repository.Apply(ctx, concurrentID, advance(day1))
			}()
		}
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}

		stored, err := repository.Find(ctx, concurrentID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, 1, stored.Count)
	})
}

/*
TestPostgresBadgeProgressRepository checks that upserts never lower progress
and never clear an earned badge.
*/
func TestPostgresBadgeProgressRepository(t *testing.T) {
	pool := postgrestest.Pool(t)
	repository := progression.NewBadgeProgressRepository(pool)
	ctx := context.Background()

	identityID := postgrestest.ID("student")
	earnedAt := day1.Midnight().Add(9 * time.Hour)
	later := earnedAt.Add(24 * time.Hour)

	write := func(rows ...progression.BadgeProgress) {
		t.Helper()
		require.NoError(t, repository.Apply(ctx, identityID, func(map[string]progression.BadgeProgress) []progression.BadgeProgress {
			return rows
		}))
	}

	write(progression.BadgeProgress{BadgeID: "journal-4", Progress: 50})
	write(progression.BadgeProgress{BadgeID: "journal-4", Progress: 25})
	write(progression.BadgeProgress{BadgeID: "streak-2", Progress: 100, Earned: true, EarnedAt: &earnedAt})
	write(progression.BadgeProgress{BadgeID: "streak-2", Progress: 50, Earned: false, EarnedAt: &later})

	rows, err := repository.ListByIdentity(ctx, identityID)
	require.NoError(t, err)

	byID := make(map[string]progression.BadgeProgress, len(rows))
	for _, row := range rows {
		byID[row.BadgeID] = row
	}
	require.Len(t, byID, 2)

	assert.Equal(t, 50, byID["journal-4"].Progress)
	assert.False(t, byID["journal-4"].Earned)
	assert.Nil(t, byID["journal-4"].EarnedAt)

	assert.Equal(t, 100, byID["streak-2"].Progress)
	assert.True(t, byID["streak-2"].Earned)
	require.NotNil(t, byID["streak-2"].EarnedAt)
	assert.True(t, earnedAt.Equal(*byID["streak-2"].EarnedAt))

	t.Run("Apply sees stored rows", func(t *testing.T) {
		var seen map[string]progression.BadgeProgress
		require.NoError(t, repository.Apply(ctx, identityID, func(current map[string]progression.BadgeProgress) []progression.BadgeProgress {
			seen = current
			return nil
		}))
		assert.Equal(t, 50, seen["journal-4"].Progress)
		assert.True(t, seen["streak-2"].Earned)
	})
}

/*
TestPostgresCounterSource reads totals and treats a missing row as zero.
*/
func TestPostgresCounterSource(t *testing.T) {
	pool := postgrestest.Pool(t)
	source := progression.NewCounterSource(pool)
	ctx := context.Background()

	identityID := postgrestest.ID("student")
	_, err := pool.Exec(ctx, `
		INSERT INTO progression.activity_total (identityid, kind, total)
		VALUES ($1, 'journal', 7)`,
		identityID,
	)
	require.NoError(t, err)

	tests := []struct {
		name string
		kind progression.ActivityKind
		want int
	}{
		{"Stored total", progression.ActivityJournal, 7},
		{"Missing row", progression.ActivityMoodCheckin, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := source.Count(ctx, identityID, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}
}
