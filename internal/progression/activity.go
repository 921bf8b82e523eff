// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package progression turns user activity into streaks and badges.

Architecture:

  - Recorder: The single entry point. Every login and tracked action calls Record.
  - StreakEngine: Per-identity consecutive-day state machine.
  - BadgeEvaluator: Recomputes progress toward the fixed badge catalog and
    reports badges whose threshold was crossed by this call.

Read-modify-write on one identity's records is serialized twice: by an
in-process key lock in the Recorder, and by a transaction-scoped advisory
lock in the Postgres repositories for writers in other processes.
Both engines are idempotent, so a retried Record never double-counts.
*/
package progression

import "fmt"

// ActivityKind names a tracked user action.
type ActivityKind string

// # Activity Kinds

const (
	ActivityLogin          ActivityKind = "login"
	ActivityJournal        ActivityKind = "journal"
	ActivityMoodCheckin    ActivityKind = "mood_checkin"
	ActivityResourceAccess ActivityKind = "resource_access"
	ActivitySelfHelp       ActivityKind = "self_help"
)

var activityKinds = []ActivityKind{
	ActivityLogin,
	ActivityJournal,
	ActivityMoodCheckin,
	ActivityResourceAccess,
	ActivitySelfHelp,
}

// ParseActivityKind validates raw against the known kinds.
func ParseActivityKind(raw string) (ActivityKind, error) {
	for _, kind := range activityKinds {
		if string(kind) == raw {
			return kind, nil
		}
	}
	return "", fmt.Errorf("progression: unknown activity kind %q", raw)
}
