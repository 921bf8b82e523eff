// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progression_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/serenity/internal/platform/clock"
	"github.com/taibuivan/serenity/internal/progression"
	"github.com/taibuivan/serenity/internal/storage/memory"
)

var day1 = clock.NewDate(2026, time.March, 1)

/*
TestStreakRecord_Advance walks the streak state machine.
*/
func TestStreakRecord_Advance(t *testing.T) {
	existing := progression.StreakRecord{IdentityID: "s-1", Count: 4, BestCount: 6, LastActiveDate: day1}

	tests := []struct {
		name        string
		record      progression.StreakRecord
		date        clock.Date
		wantCount   int
		wantBest    int
		wantDate    clock.Date
		wantChanged bool
	}{
		{"No record starts at one", progression.StreakRecord{}, day1, 1, 1, day1, true},
		{"Same day is a no-op", existing, day1, 4, 6, day1, false},
		{"Next day increments", existing, day1.AddDays(1), 5, 6, day1.AddDays(1), true},
		{"Gap resets to one", existing, day1.AddDays(2), 1, 6, day1.AddDays(2), true},
		{"Earlier date is ignored", existing, day1.AddDays(-1), 4, 6, day1, false},
		{
			"Passing best count raises it",
			progression.StreakRecord{Count: 6, BestCount: 6, LastActiveDate: day1},
			day1.AddDays(1), 7, 7, day1.AddDays(1), true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, changed := tt.record.Advance(tt.date)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantCount, next.Count)
			assert.Equal(t, tt.wantBest, next.BestCount)
			assert.Equal(t, tt.wantDate, next.LastActiveDate)
		})
	}
}

/*
TestStreakEngine_Touch covers idempotence, continuity and the gap reset
against a real repository.
*/
func TestStreakEngine_Touch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		dates     []clock.Date
		wantCount int
		wantBest  int
	}{
		{"Same date twice", []clock.Date{day1, day1}, 1, 1},
		{"Three consecutive days", []clock.Date{day1, day1.AddDays(1), day1.AddDays(2)}, 3, 3},
		{"Gap day resets", []clock.Date{day1, day1.AddDays(2)}, 1, 1},
		{"Best survives a reset", []clock.Date{day1, day1.AddDays(1), day1.AddDays(5)}, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := progression.NewStreakEngine(memory.NewStreakRepository(), clock.NewFixed(day1.Midnight()), time.Second)

			var record *progression.StreakRecord
			for _, date := range tt.dates {
				var err error
				record, err = engine.Touch(ctx, "s-1", date)
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantCount, record.Count)
			assert.Equal(t, tt.wantBest, record.BestCount)
			assert.Equal(t, tt.dates[len(tt.dates)-1], record.LastActiveDate)

			stored, err := engine.Current(ctx, "s-1")
			require.NoError(t, err)
			assert.Equal(t, *record, *stored)
		})
	}
}

/*
TestStreakEngine_Current reports a zero record for unknown identities.
*/
func TestStreakEngine_Current(t *testing.T) {
	engine := progression.NewStreakEngine(memory.NewStreakRepository(), clock.NewFixed(day1.Midnight()), time.Second)

	record, err := engine.Current(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", record.IdentityID)
	assert.Zero(t, record.Count)
	assert.False(t, record.Exists())
}
