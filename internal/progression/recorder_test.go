// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progression_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/serenity/internal/platform/clock"
	"github.com/taibuivan/serenity/internal/platform/metrics"
	"github.com/taibuivan/serenity/internal/progression"
	"github.com/taibuivan/serenity/internal/storage/memory"
)

type recorderFixture struct {
	recorder *progression.Recorder
	clock    *clock.Fixed
	counters *memory.CounterSource
	metrics  *metrics.Metrics
}

func newRecorderFixture(t *testing.T) *recorderFixture {
	t.Helper()

	clk := clock.NewFixed(day1.Midnight().Add(9 * time.Hour))
	counters := memory.NewCounterSource()
	recorder := metrics.New()

	streaks := progression.NewStreakEngine(memory.NewStreakRepository(), clk, time.Second)
	badges := progression.NewBadgeEvaluator(progression.DefaultCatalog(), memory.NewBadgeProgressRepository(), counters, clk, time.Second)

	return &recorderFixture{
		recorder: progression.NewRecorder(streaks, badges, clk, recorder),
		clock:    clk,
		counters: counters,
		metrics:  recorder,
	}
}

/*
TestRecorder_ConcurrentSameIdentity fires many simultaneous records for one
identity and checks that the outcome equals a single sequential call.
*/
func TestRecorder_ConcurrentSameIdentity(t *testing.T) {
	fixture := newRecorderFixture(t)
	ctx := context.Background()

	const callers = 32

	run := func() [][]progression.BadgeDefinition {
		results := make([][]progression.BadgeDefinition, callers)
		errs := make([]error, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				update, err := fixture.recorder.Record(ctx, "s-1", progression.ActivityJournal)
				if err != nil {
					errs[i] = err
					return
				}
				results[i] = update.NewlyEarned
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
		return results
	}

	// Day 1: everyone sees count 1
	run()
	overview, err := fixture.recorder.Overview(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 1, overview.Streak.Count)

	// Day 2: count 2 and streak-2 handed out exactly once
	fixture.clock.Advance(24 * time.Hour)
	results := run()

	earned := 0
	for _, newly := range results {
		for _, badge := range newly {
			if badge.ID == "streak-2" {
				earned++
			}
		}
	}
	assert.Equal(t, 1, earned)

	overview, err = fixture.recorder.Overview(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 2, overview.Streak.Count)
	assert.Equal(t, 2, overview.Streak.BestCount)

	expected := `
# HELP serenity_badges_earned_total Badges unlocked, by badge id
# TYPE serenity_badges_earned_total counter
serenity_badges_earned_total{badge="streak-2"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(fixture.metrics.Registry(), strings.NewReader(expected), "serenity_badges_earned_total"))
}

/*
TestRecorder_Record combines the streak touch with counter-driven badges.
*/
func TestRecorder_Record(t *testing.T) {
	fixture := newRecorderFixture(t)
	ctx := context.Background()

	fixture.counters.Set("s-2", progression.ActivityJournal, 1)

	update, err := fixture.recorder.Record(ctx, "s-2", progression.ActivityJournal)
	require.NoError(t, err)
	assert.Equal(t, 1, update.Streak.Count)
	assert.Equal(t, []string{"journal-1"}, update.Summary().NewlyEarnedBadgeIDs)

	// Retried call
	update, err = fixture.recorder.Record(ctx, "s-2", progression.ActivityJournal)
	require.NoError(t, err)
	assert.Equal(t, 1, update.Streak.Count)
	assert.Empty(t, update.NewlyEarned)
	assert.NotNil(t, update.Summary().NewlyEarnedBadgeIDs)

	overview, err := fixture.recorder.Overview(ctx, "s-2")
	require.NoError(t, err)
	assert.Equal(t, progression.CatalogVersion, overview.CatalogVersion)
	assert.Len(t, overview.Badges, len(progression.DefaultCatalog().Definitions()))
}

/*
TestRecorder_CancelledContext surfaces a cancelled caller as a storage failure.
*/
func TestRecorder_CancelledContext(t *testing.T) {
	fixture := newRecorderFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fixture.recorder.Record(ctx, "s-3", progression.ActivityJournal)
	assert.Error(t, err)
}
