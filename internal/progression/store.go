// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progression

import "context"

// # Streak Data Access

// StreakRepository defines the data access contract for streak records.
type StreakRepository interface {

	/*
		Find returns the stored streak for an identity.

		Parameters:
		  - context: context.Context
		  - identityID: string

		Returns:
		  - *StreakRecord: nil when the identity has never been active
		  - error: Database retrieval failures
	*/
	Find(context context.Context, identityID string) (*StreakRecord, error)

	/*
		Apply runs mutate against the current record while holding the identity's
		lock, and persists the result when mutate reports a change.

		Parameters:
		  - context: context.Context
		  - identityID: string
		  - mutate: func(current StreakRecord) (StreakRecord, bool) (zero record if none stored)

		Returns:
		  - *StreakRecord: The record after the call
		  - error: Persistence failures
	*/
	Apply(context context.Context, identityID string, mutate func(current StreakRecord) (StreakRecord, bool)) (*StreakRecord, error)
}

// # Badge Data Access

// BadgeProgressRepository defines the data access contract for badge progress rows.
type BadgeProgressRepository interface {

	/*
		ListByIdentity returns every stored progress row for an identity.

		Parameters:
		  - context: context.Context
		  - identityID: string

		Returns:
		  - []BadgeProgress: Rows in no particular order
		  - error: Database retrieval failures
	*/
	ListByIdentity(context context.Context, identityID string) ([]BadgeProgress, error)

	/*
		Apply hands mutate the identity's rows keyed by badge id while holding the
		identity's lock, then upserts the rows it returns. Upserts never lower
		progress and never clear earned.

		Parameters:
		  - context: context.Context
		  - identityID: string
		  - mutate: func(current map[string]BadgeProgress) []BadgeProgress

		Returns:
		  - error: Persistence failures
	*/
	Apply(context context.Context, identityID string, mutate func(current map[string]BadgeProgress) []BadgeProgress) error
}

// # Counter Access

// CounterSource reads per-kind activity totals maintained by content services.
type CounterSource interface {

	/*
		Count returns how many activities of kind the identity has performed.

		Parameters:
		  - context: context.Context
		  - identityID: string
		  - kind: ActivityKind

		Returns:
		  - int: Total, zero if none recorded
		  - error: Retrieval failures
	*/
	Count(context context.Context, identityID string, kind ActivityKind) (int, error)
}
