// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progression

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/serenity/internal/platform/clock"
	"github.com/taibuivan/serenity/internal/platform/database/schema"
)

// lockIdentity takes a transaction-scoped advisory lock for the identity.
// It is released automatically on commit or rollback.
func lockIdentity(context context.Context, tx pgx.Tx, identityID string) error {
	const query = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
	if _, err := tx.Exec(context, query, "progression:"+identityID); err != nil {
		return fmt.Errorf("postgres_progression_advisory_lock_failed: %w", err)
	}
	return nil
}

// # Streak Repository

// PostgresStreakRepository implements [StreakRepository] over progression.streak.
type PostgresStreakRepository struct {
	pool *pgxpool.Pool
}

// NewStreakRepository creates a new PostgreSQL implementation of the StreakRepository.
func NewStreakRepository(pool *pgxpool.Pool) *PostgresStreakRepository {
	return &PostgresStreakRepository{pool: pool}
}

var (
	streakTable = schema.ProgressionStreak

	selectStreak = fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		streakTable.Count, streakTable.BestCount, streakTable.LastActiveDate, streakTable.UpdatedAt,
		streakTable.Table, streakTable.IdentityID,
	)

	upsertStreak = fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%[2]s) DO UPDATE SET
			%[3]s = EXCLUDED.%[3]s,
			%[4]s = GREATEST(%[1]s.%[4]s, EXCLUDED.%[4]s),
			%[5]s = EXCLUDED.%[5]s,
			%[6]s = EXCLUDED.%[6]s`,
		streakTable.Table, streakTable.IdentityID, streakTable.Count,
		streakTable.BestCount, streakTable.LastActiveDate, streakTable.UpdatedAt,
	)
)

// scanStreak reads one streak row; a missing row yields (nil, nil).
func scanStreak(row pgx.Row, identityID string) (*StreakRecord, error) {
	record := &StreakRecord{IdentityID: identityID}
	var lastActive time.Time

	err := row.Scan(&record.Count, &record.BestCount, &lastActive, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record.LastActiveDate = clock.DateOf(lastActive)
	return record, nil
}

/*
Find retrieves the streak row for the identity.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - *StreakRecord: nil when absent
  - error: Database errors
*/
func (repository *PostgresStreakRepository) Find(context context.Context, identityID string) (*StreakRecord, error) {
	record, err := scanStreak(repository.pool.QueryRow(context, selectStreak, identityID), identityID)
	if err != nil {
		return nil, fmt.Errorf("postgres_streak_repo_find_failed: %w", err)
	}
	return record, nil
}

/*
Apply performs the serialized read-modify-write of one streak row.

Description: Opens a transaction, takes the identity's advisory lock, reads
the row, and upserts mutate's result. best_count is guarded with GREATEST so
it can never shrink.

Parameters:
  - context: context.Context
  - identityID: string
  - mutate: func(current StreakRecord) (StreakRecord, bool)

Returns:
  - *StreakRecord: Record after the call
  - error: Database errors
*/
func (repository *PostgresStreakRepository) Apply(context context.Context, identityID string, mutate func(current StreakRecord) (StreakRecord, bool)) (*StreakRecord, error) {
	tx, err := repository.pool.Begin(context)
	if err != nil {
		return nil, fmt.Errorf("postgres_streak_repo_begin_failed: %w", err)
	}
	defer func() { _ = tx.Rollback(context) }()

	if err := lockIdentity(context, tx, identityID); err != nil {
		return nil, err
	}

	stored, err := scanStreak(tx.QueryRow(context, selectStreak, identityID), identityID)
	if err != nil {
		return nil, fmt.Errorf("postgres_streak_repo_read_failed: %w", err)
	}

	current := StreakRecord{IdentityID: identityID}
	if stored != nil {
		current = *stored
	}

	next, changed := mutate(current)
	if !changed {
		return &current, nil
	}

	_, err = tx.Exec(context, upsertStreak,
		identityID,
		next.Count,
		next.BestCount,
		next.LastActiveDate.Midnight(),
		next.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres_streak_repo_upsert_failed: %w", err)
	}

	if err := tx.Commit(context); err != nil {
		return nil, fmt.Errorf("postgres_streak_repo_commit_failed: %w", err)
	}

	return &next, nil
}

// # Badge Progress Repository

// PostgresBadgeProgressRepository implements [BadgeProgressRepository] over progression.badge_progress.
type PostgresBadgeProgressRepository struct {
	pool *pgxpool.Pool
}

// NewBadgeProgressRepository creates a new PostgreSQL implementation of the BadgeProgressRepository.
func NewBadgeProgressRepository(pool *pgxpool.Pool) *PostgresBadgeProgressRepository {
	return &PostgresBadgeProgressRepository{pool: pool}
}

var (
	badgeTable = schema.ProgressionBadgeProgress

	selectBadgeProgress = fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		badgeTable.IdentityID, badgeTable.BadgeID, badgeTable.Progress, badgeTable.Earned, badgeTable.EarnedAt,
		badgeTable.Table, badgeTable.IdentityID,
	)

	upsertBadgeProgress = fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE SET
			%[4]s = GREATEST(%[1]s.%[4]s, EXCLUDED.%[4]s),
			%[5]s = %[1]s.%[5]s OR EXCLUDED.%[5]s,
			%[6]s = COALESCE(%[1]s.%[6]s, EXCLUDED.%[6]s),
			%[7]s = EXCLUDED.%[7]s`,
		badgeTable.Table, badgeTable.IdentityID, badgeTable.BadgeID,
		badgeTable.Progress, badgeTable.Earned, badgeTable.EarnedAt, badgeTable.UpdatedAt,
	)
)

// queryBadgeProgress runs selectBadgeProgress on any pgx querier.
func queryBadgeProgress(context context.Context, querier interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
}, identityID string) ([]BadgeProgress, error) {
	rows, err := querier.Query(context, selectBadgeProgress, identityID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (BadgeProgress, error) {
		var progress BadgeProgress
		err := row.Scan(&progress.IdentityID, &progress.BadgeID, &progress.Progress, &progress.Earned, &progress.EarnedAt)
		return progress, err
	})
}

/*
ListByIdentity fetches every progress row for the identity.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - []BadgeProgress: Stored rows
  - error: Database errors
*/
func (repository *PostgresBadgeProgressRepository) ListByIdentity(context context.Context, identityID string) ([]BadgeProgress, error) {
	progress, err := queryBadgeProgress(context, repository.pool, identityID)
	if err != nil {
		return nil, fmt.Errorf("postgres_badge_repo_list_failed: %w", err)
	}
	return progress, nil
}

/*
Apply performs the serialized read-modify-write of an identity's badge rows.

Description: Rows returned by mutate are upserted in one batch. progress uses
GREATEST, earned is OR-ed and earnedat keeps the first stamp, so even a
writer that bypassed the lock could not regress a row.

Parameters:
  - context: context.Context
  - identityID: string
  - mutate: func(current map[string]BadgeProgress) []BadgeProgress

Returns:
  - error: Database errors
*/
func (repository *PostgresBadgeProgressRepository) Apply(context context.Context, identityID string, mutate func(current map[string]BadgeProgress) []BadgeProgress) error {
	tx, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_badge_repo_begin_failed: %w", err)
	}
	defer func() { _ = tx.Rollback(context) }()

	if err := lockIdentity(context, tx, identityID); err != nil {
		return err
	}

	rows, err := queryBadgeProgress(context, tx, identityID)
	if err != nil {
		return fmt.Errorf("postgres_badge_repo_read_failed: %w", err)
	}

	current := make(map[string]BadgeProgress, len(rows))
	for _, row := range rows {
		current[row.BadgeID] = row
	}

	changed := mutate(current)
	if len(changed) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, row := range changed {
		batch.Queue(upsertBadgeProgress, identityID, row.BadgeID, row.Progress, row.Earned, row.EarnedAt)
	}

	if err := tx.SendBatch(context, batch).Close(); err != nil {
		return fmt.Errorf("postgres_badge_repo_upsert_failed: %w", err)
	}

	if err := tx.Commit(context); err != nil {
		return fmt.Errorf("postgres_badge_repo_commit_failed: %w", err)
	}

	return nil
}

// # Counter Source

// PostgresCounterSource implements [CounterSource] over progression.activity_total.
type PostgresCounterSource struct {
	pool *pgxpool.Pool
}

// NewCounterSource creates a new PostgreSQL implementation of the CounterSource.
func NewCounterSource(pool *pgxpool.Pool) *PostgresCounterSource {
	return &PostgresCounterSource{pool: pool}
}

/*
Count reads one activity total.

Parameters:
  - context: context.Context
  - identityID: string
  - kind: ActivityKind

Returns:
  - int: Total, zero if the row is missing
  - error: Database errors
*/
func (source *PostgresCounterSource) Count(context context.Context, identityID string, kind ActivityKind) (int, error) {
	table := schema.ProgressionActivityTotal
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s = $2`,
		table.Total, table.Table, table.IdentityID, table.Kind,
	)

	var total int
	err := source.pool.QueryRow(context, query, identityID, string(kind)).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("postgres_counter_source_count_failed: %w", err)
	}

	return total, nil
}
