// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progression

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/serenity/internal/platform/clock"
	"github.com/taibuivan/serenity/internal/platform/dberr"
)

// BadgeStatus joins a catalog badge with an identity's stored progress.
type BadgeStatus struct {
	BadgeDefinition
	Progress int        `json:"progress"`
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

// BadgeEvaluator owns all writes to badge progress.
type BadgeEvaluator struct {
	catalog    *Catalog
	repository BadgeProgressRepository
	counters   CounterSource
	clock      clock.Clock
	timeout    time.Duration
}

// NewBadgeEvaluator constructs a new [BadgeEvaluator].
func NewBadgeEvaluator(catalog *Catalog, repository BadgeProgressRepository, counters CounterSource, clk clock.Clock, timeout time.Duration) *BadgeEvaluator {
	return &BadgeEvaluator{
		catalog:    catalog,
		repository: repository,
		counters:   counters,
		clock:      clk,
		timeout:    timeout,
	}
}

// Catalog returns the badge catalog the evaluator runs against.
func (evaluator *BadgeEvaluator) Catalog() *Catalog { return evaluator.catalog }

/*
Gather fetches every counter the catalog reads.

Description: Distinct activity totals are fetched concurrently. The streak
metric comes from the record the StreakEngine just produced, so it always
reflects the current touch.

Parameters:
  - context: context.Context
  - identityID: string
  - streak: *StreakRecord (nil counts as zero)

Returns:
  - Counters: Values keyed by metric
  - error: PersistenceUnavailable on storage failure
*/
func (evaluator *BadgeEvaluator) Gather(ctx context.Context, identityID string, streak *StreakRecord) (Counters, error) {
	gatherCtx, cancel := context.WithTimeout(ctx, evaluator.timeout)
	defer cancel()

	counters := make(Counters)
	if streak != nil {
		counters[MetricStreak] = streak.Count
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(gatherCtx)

	for _, metric := range evaluator.catalog.Metrics() {
		kind, ok := metric.ActivityKind()
		if !ok {
			continue
		}

		group.Go(func() error {
			value, err := evaluator.counters.Count(groupCtx, identityID, kind)
			if err != nil {
				return fmt.Errorf("badge_evaluator_count_%s_failed: %w", kind, err)
			}

			mu.Lock()
			counters[metric] = value
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, dberr.Wrap(err, "badge_evaluator_gather")
	}

	return counters, nil
}

/*
Evaluate recomputes progress for every unearned badge and returns the ones
whose threshold was crossed by this call.

Description: Stored progress only ever rises. Earned badges are skipped
entirely, so a second call with unchanged counters returns nothing.

Parameters:
  - context: context.Context
  - identityID: string
  - counters: Counters

Returns:
  - []BadgeDefinition: Newly earned badges in catalog order
  - error: PersistenceUnavailable on storage failure
*/
func (evaluator *BadgeEvaluator) Evaluate(ctx context.Context, identityID string, counters Counters) ([]BadgeDefinition, error) {
	evaluateCtx, cancel := context.WithTimeout(ctx, evaluator.timeout)
	defer cancel()

	now := evaluator.clock.Now()
	newlyEarned := make([]BadgeDefinition, 0)

	err := evaluator.repository.Apply(evaluateCtx, identityID, func(current map[string]BadgeProgress) []BadgeProgress {
		// Apply may be handed a fresh snapshot; start clean each time.
		newlyEarned = newlyEarned[:0]
		var changed []BadgeProgress

		for _, badge := range evaluator.catalog.definitions {
			stored, exists := current[badge.ID]
			if stored.Earned {
				continue
			}

			next := BadgeProgress{
				IdentityID: identityID,
				BadgeID:    badge.ID,
				Progress:   max(stored.Progress, badge.Percent(counters)),
			}

			if badge.Satisfied(counters) {
				earnedAt := now
				next.Progress = 100
				next.Earned = true
				next.EarnedAt = &earnedAt
				newlyEarned = append(newlyEarned, badge)
			}

			if !exists || next.Progress != stored.Progress || next.Earned {
				changed = append(changed, next)
			}
		}

		return changed
	})
	if err != nil {
		return nil, dberr.Wrap(err, "badge_evaluator_evaluate")
	}

	return newlyEarned, nil
}

/*
Progress lists every catalog badge with the identity's stored progress.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - []BadgeStatus: One entry per catalog badge; missing rows report zero
  - error: PersistenceUnavailable on storage failure
*/
func (evaluator *BadgeEvaluator) Progress(ctx context.Context, identityID string) ([]BadgeStatus, error) {
	listCtx, cancel := context.WithTimeout(ctx, evaluator.timeout)
	defer cancel()

	rows, err := evaluator.repository.ListByIdentity(listCtx, identityID)
	if err != nil {
		return nil, dberr.Wrap(err, "badge_evaluator_progress")
	}

	byBadge := make(map[string]BadgeProgress, len(rows))
	for _, row := range rows {
		byBadge[row.BadgeID] = row
	}

	statuses := make([]BadgeStatus, 0, len(evaluator.catalog.definitions))
	for _, badge := range evaluator.catalog.definitions {
		row := byBadge[badge.ID]
		statuses = append(statuses, BadgeStatus{
			BadgeDefinition: badge,
			Progress:        row.Progress,
			Earned:          row.Earned,
			EarnedAt:        row.EarnedAt,
		})
	}

	return statuses, nil
}
