// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progression

import (
	"context"
	"log/slog"

	"github.com/taibuivan/serenity/internal/platform/apperr"
	"github.com/taibuivan/serenity/internal/platform/clock"
	"github.com/taibuivan/serenity/internal/platform/ctxutil"
	"github.com/taibuivan/serenity/internal/platform/metrics"
	"github.com/taibuivan/serenity/pkg/keylock"
)

// Update is the combined outcome of one recorded activity.
type Update struct {
	Streak      StreakRecord      `json:"streak"`
	NewlyEarned []BadgeDefinition `json:"newly_earned"`
}

// Summary is the compact form returned to clients for notifications.
type Summary struct {
	StreakCount         int      `json:"streak_count"`
	NewlyEarnedBadgeIDs []string `json:"newly_earned_badge_ids"`
}

// Summary reduces the update to the streak count and badge ids.
func (update *Update) Summary() Summary {
	ids := make([]string, 0, len(update.NewlyEarned))
	for _, badge := range update.NewlyEarned {
		ids = append(ids, badge.ID)
	}
	return Summary{StreakCount: update.Streak.Count, NewlyEarnedBadgeIDs: ids}
}

// Overview is the full progression state of one identity.
type Overview struct {
	Streak         StreakRecord  `json:"streak"`
	Badges         []BadgeStatus `json:"badges"`
	CatalogVersion string        `json:"catalog_version"`
}

// Recorder is the single entry point that turns an activity into progression.
type Recorder struct {
	streaks *StreakEngine
	badges  *BadgeEvaluator
	clock   clock.Clock
	locks   *keylock.Locker
	metrics *metrics.Metrics
}

// NewRecorder constructs a new [Recorder]. metrics may be nil.
func NewRecorder(streaks *StreakEngine, badges *BadgeEvaluator, clk clock.Clock, recorder *metrics.Metrics) *Recorder {
	return &Recorder{
		streaks: streaks,
		badges:  badges,
		clock:   clk,
		locks:   keylock.New(),
		metrics: recorder,
	}
}

/*
Record applies one activity for the identity.

Description: Touches the streak for today in the canonical zone, then
re-evaluates badges against fresh counters. Concurrent calls for the same
identity run one at a time; different identities never wait on each other.
Repeating a call is safe and never double-counts.

Parameters:
  - context: context.Context
  - identityID: string
  - kind: ActivityKind

Returns:
  - *Update: Streak after the touch and badges earned by this call
  - error: PersistenceUnavailable on storage failure
*/
func (recorder *Recorder) Record(ctx context.Context, identityID string, kind ActivityKind) (*Update, error) {
	unlock, err := recorder.locks.Lock(ctx, identityID)
	if err != nil {
		return nil, apperr.PersistenceUnavailable(err)
	}
	defer unlock()

	// 1. Streak
	streak, err := recorder.streaks.Touch(ctx, identityID, recorder.clock.Today())
	if err != nil {
		return nil, err
	}

	// 2. Counters, with the streak just produced
	counters, err := recorder.badges.Gather(ctx, identityID, streak)
	if err != nil {
		return nil, err
	}

	// 3. Badges
	newlyEarned, err := recorder.badges.Evaluate(ctx, identityID, counters)
	if err != nil {
		return nil, err
	}

	recorder.metrics.ActivityRecorded(string(kind))

	logger := ctxutil.GetLogger(ctx)
	for _, badge := range newlyEarned {
		recorder.metrics.BadgeEarned(badge.ID)
		logger.InfoContext(ctx, "badge_earned",
			slog.String("identity_id", identityID),
			slog.String("badge_id", badge.ID),
			slog.String("catalog_version", recorder.badges.Catalog().Version()),
		)
	}

	return &Update{Streak: *streak, NewlyEarned: newlyEarned}, nil
}

/*
Overview returns the identity's streak and every badge's progress.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - *Overview: Current state
  - error: PersistenceUnavailable on storage failure
*/
func (recorder *Recorder) Overview(ctx context.Context, identityID string) (*Overview, error) {
	streak, err := recorder.streaks.Current(ctx, identityID)
	if err != nil {
		return nil, err
	}

	badges, err := recorder.badges.Progress(ctx, identityID)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Streak:         *streak,
		Badges:         badges,
		CatalogVersion: recorder.badges.Catalog().Version(),
	}, nil
}
