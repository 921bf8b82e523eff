// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package memory provides in-process implementations of every repository
contract in the Serenity API.

They back unit tests and single-node local runs. Each store guards its
state with one mutex, which also gives Apply the same per-identity
serialization the Postgres advisory lock provides.
*/
package memory

import (
	"context"
	"sync"

	"github.com/taibuivan/serenity/internal/progression"
)

// # Streaks

// StreakRepository implements [progression.StreakRepository].
type StreakRepository struct {
	mu      sync.Mutex
	records map[string]progression.StreakRecord
}

// NewStreakRepository creates an empty repository.
func NewStreakRepository() *StreakRepository {
	return &StreakRepository{records: make(map[string]progression.StreakRecord)}
}

// Find returns a copy of the stored record, or nil.
func (repository *StreakRepository) Find(ctx context.Context, identityID string) (*progression.StreakRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	record, ok := repository.records[identityID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Apply runs mutate under the store lock and keeps best_count monotonic.
func (repository *StreakRepository) Apply(ctx context.Context, identityID string, mutate func(current progression.StreakRecord) (progression.StreakRecord, bool)) (*progression.StreakRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	current, ok := repository.records[identityID]
	if !ok {
		current = progression.StreakRecord{IdentityID: identityID}
	}

	next, changed := mutate(current)
	if !changed {
		return &current, nil
	}

	next.BestCount = max(next.BestCount, current.BestCount)
	repository.records[identityID] = next
	return &next, nil
}

// # Badge Progress

// BadgeProgressRepository implements [progression.BadgeProgressRepository].
type BadgeProgressRepository struct {
	mu   sync.Mutex
	rows map[string]map[string]progression.BadgeProgress
}

// NewBadgeProgressRepository creates an empty repository.
func NewBadgeProgressRepository() *BadgeProgressRepository {
	return &BadgeProgressRepository{rows: make(map[string]map[string]progression.BadgeProgress)}
}

// ListByIdentity returns copies of the identity's rows.
func (repository *BadgeProgressRepository) ListByIdentity(ctx context.Context, identityID string) ([]progression.BadgeProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	out := make([]progression.BadgeProgress, 0, len(repository.rows[identityID]))
	for _, row := range repository.rows[identityID] {
		out = append(out, row)
	}
	return out, nil
}

// Apply runs mutate under the store lock with the same monotonic merge as
// the Postgres upsert.
func (repository *BadgeProgressRepository) Apply(ctx context.Context, identityID string, mutate func(current map[string]progression.BadgeProgress) []progression.BadgeProgress) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored := repository.rows[identityID]
	snapshot := make(map[string]progression.BadgeProgress, len(stored))
	for id, row := range stored {
		snapshot[id] = row
	}

	changed := mutate(snapshot)
	if len(changed) == 0 {
		return nil
	}

	if stored == nil {
		stored = make(map[string]progression.BadgeProgress)
		repository.rows[identityID] = stored
	}

	for _, row := range changed {
		previous, ok := stored[row.BadgeID]
		if ok {
			row.Progress = max(row.Progress, previous.Progress)
			row.Earned = row.Earned || previous.Earned
			if previous.EarnedAt != nil {
				row.EarnedAt = previous.EarnedAt
			}
		}
		row.IdentityID = identityID
		stored[row.BadgeID] = row
	}

	return nil
}

// # Counters

// CounterSource implements [progression.CounterSource] with settable totals.
type CounterSource struct {
	mu     sync.Mutex
	totals map[string]map[progression.ActivityKind]int

	// Err, when set, is returned by every Count to simulate an outage.
	Err error
}

// NewCounterSource creates a source where every total is zero.
func NewCounterSource() *CounterSource {
	return &CounterSource{totals: make(map[string]map[progression.ActivityKind]int)}
}

// Count returns the stored total.
func (source *CounterSource) Count(ctx context.Context, identityID string, kind progression.ActivityKind) (int, error) {
	if source.Err != nil {
		return 0, source.Err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	source.mu.Lock()
	defer source.mu.Unlock()
	return source.totals[identityID][kind], nil
}

// Set overwrites one total, standing in for the content service that owns it.
func (source *CounterSource) Set(identityID string, kind progression.ActivityKind, total int) {
	source.mu.Lock()
	defer source.mu.Unlock()

	if source.totals[identityID] == nil {
		source.totals[identityID] = make(map[progression.ActivityKind]int)
	}
	source.totals[identityID][kind] = total
}
