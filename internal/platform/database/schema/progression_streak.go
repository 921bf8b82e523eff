// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ProgressionStreakTable represents the 'progression.streak' table
type ProgressionStreakTable struct {
	Table          string
	IdentityID     string
	Count          string
	BestCount      string
	LastActiveDate string
	UpdatedAt      string
}

// ProgressionStreak is the schema definition for progression.streak
var ProgressionStreak = ProgressionStreakTable{
	Table:          "progression.streak",
	IdentityID:     "identityid",
	Count:          "count",
	BestCount:      "bestcount",
	LastActiveDate: "lastactivedate",
	UpdatedAt:      "updatedat",
}
