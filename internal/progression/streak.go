// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progression

import (
	"context"
	"time"

	"github.com/taibuivan/serenity/internal/platform/clock"
	"github.com/taibuivan/serenity/internal/platform/dberr"
)

// StreakRecord is an identity's run of consecutive active days.
type StreakRecord struct {
	IdentityID     string     `json:"identity_id"`
	Count          int        `json:"count"`
	BestCount      int        `json:"best_count"`
	LastActiveDate clock.Date `json:"last_active_date"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Exists reports whether the record has ever been touched.
func (record StreakRecord) Exists() bool {
	return !record.LastActiveDate.IsZero()
}

// Advance applies one activity on date and returns the next record and
// whether anything changed.
//
//	no record          -> count 1
//	same day           -> unchanged
//	next day           -> count + 1
//	gap of 2+ days     -> count 1
//	earlier than last  -> unchanged
func (record StreakRecord) Advance(date clock.Date) (StreakRecord, bool) {
	next := record

	switch {
	case !record.Exists():
		next.Count = 1
	case !date.After(record.LastActiveDate):
		return record, false
	case date.DaysSince(record.LastActiveDate) == 1:
		next.Count = record.Count + 1
	default:
		next.Count = 1
	}

	next.LastActiveDate = date
	if next.Count > next.BestCount {
		next.BestCount = next.Count
	}

	return next, true
}

// StreakEngine owns all writes to streak records.
type StreakEngine struct {
	repository StreakRepository
	clock      clock.Clock
	timeout    time.Duration
}

// NewStreakEngine constructs a new [StreakEngine].
func NewStreakEngine(repository StreakRepository, clk clock.Clock, timeout time.Duration) *StreakEngine {
	return &StreakEngine{repository: repository, clock: clk, timeout: timeout}
}

/*
Touch records activity for the identity on the given calendar date.

Description: Runs [StreakRecord.Advance] inside the repository's serialized
read-modify-write. Repeating a touch for the same date is a no-op.

Parameters:
  - context: context.Context
  - identityID: string
  - activityDate: clock.Date (in the canonical calendar zone)

Returns:
  - *StreakRecord: The record after the touch
  - error: PersistenceUnavailable on storage failure
*/
func (engine *StreakEngine) Touch(ctx context.Context, identityID string, activityDate clock.Date) (*StreakRecord, error) {
	touchCtx, cancel := context.WithTimeout(ctx, engine.timeout)
	defer cancel()

	now := engine.clock.Now()

	record, err := engine.repository.Apply(touchCtx, identityID, func(current StreakRecord) (StreakRecord, bool) {
		current.IdentityID = identityID
		next, changed := current.Advance(activityDate)
		if changed {
			next.UpdatedAt = now
		}
		return next, changed
	})
	if err != nil {
		return nil, dberr.Wrap(err, "streak_engine_touch")
	}

	return record, nil
}

/*
Current returns the stored streak, or a zero record if none exists.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - *StreakRecord: Stored or zero-valued record
  - error: PersistenceUnavailable on storage failure
*/
func (engine *StreakEngine) Current(ctx context.Context, identityID string) (*StreakRecord, error) {
	findCtx, cancel := context.WithTimeout(ctx, engine.timeout)
	defer cancel()

	record, err := engine.repository.Find(findCtx, identityID)
	if err != nil {
		return nil, dberr.Wrap(err, "streak_engine_current")
	}
	if record == nil {
		return &StreakRecord{IdentityID: identityID}, nil
	}

	return record, nil
}
