// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ProgressionActivityTotalTable represents the 'progression.activity_total' table
type ProgressionActivityTotalTable struct {
	Table      string
	IdentityID string
	Kind       string
	Total      string
	UpdatedAt  string
}

// ProgressionActivityTotal is the schema definition for progression.activity_total
var ProgressionActivityTotal = ProgressionActivityTotalTable{
	Table:      "progression.activity_total",
	IdentityID: "identityid",
	Kind:       "kind",
	Total:      "total",
	UpdatedAt:  "updatedat",
}
