// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ProgressionBadgeProgressTable represents the 'progression.badge_progress' table
type ProgressionBadgeProgressTable struct {
	Table      string
	IdentityID string
	BadgeID    string
	Progress   string
	Earned     string
	EarnedAt   string
	UpdatedAt  string
}

// ProgressionBadgeProgress is the schema definition for progression.badge_progress
var ProgressionBadgeProgress = ProgressionBadgeProgressTable{
	Table:      "progression.badge_progress",
	IdentityID: "identityid",
	BadgeID:    "badgeid",
	Progress:   "progress",
	Earned:     "earned",
	EarnedAt:   "earnedat",
	UpdatedAt:  "updatedat",
}
