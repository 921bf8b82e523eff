// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progression

import (
	"fmt"
	"time"
)

// Metric names an aggregate counter a badge predicate reads.
type Metric string

// # Metrics

const (
	// MetricStreak is the current consecutive-day count.
	MetricStreak Metric = "streak"

	MetricLoginTotal          Metric = "login_total"
	MetricJournalTotal        Metric = "journal_total"
	MetricMoodCheckinTotal    Metric = "mood_checkin_total"
	MetricResourceAccessTotal Metric = "resource_access_total"
	MetricSelfHelpTotal       Metric = "self_help_total"
)

var metricKinds = map[Metric]ActivityKind{
	MetricLoginTotal:          ActivityLogin,
	MetricJournalTotal:        ActivityJournal,
	MetricMoodCheckinTotal:    ActivityMoodCheckin,
	MetricResourceAccessTotal: ActivityResourceAccess,
	MetricSelfHelpTotal:       ActivitySelfHelp,
}

// ActivityKind returns the activity whose running total the metric reads.
// The streak metric has none.
func (m Metric) ActivityKind() (ActivityKind, bool) {
	kind, ok := metricKinds[m]
	return kind, ok
}

// Counters holds the counter values one evaluation runs against.
type Counters map[Metric]int

// BadgeDefinition is a fixed achievement: earned once counter(Metric) >= Threshold.
type BadgeDefinition struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Metric      Metric `json:"metric"`
	Threshold   int    `json:"threshold"`
}

// Satisfied reports whether the predicate holds for counters.
func (badge BadgeDefinition) Satisfied(counters Counters) bool {
	return counters[badge.Metric] >= badge.Threshold
}

// Percent returns progress toward the threshold, clamped to 0..100.
func (badge BadgeDefinition) Percent(counters Counters) int {
	value := counters[badge.Metric]
	if value <= 0 {
		return 0
	}
	if value >= badge.Threshold {
		return 100
	}
	return value * 100 / badge.Threshold
}

// BadgeProgress is one identity's stored progress toward one badge.
type BadgeProgress struct {
	IdentityID string     `json:"identity_id"`
	BadgeID    string     `json:"badge_id"`
	Progress   int        `json:"progress"`
	Earned     bool       `json:"earned"`
	EarnedAt   *time.Time `json:"earned_at,omitempty"`
}

// # Badge Catalog

// CatalogVersion identifies the built-in badge table. Bump it whenever a
// definition changes so stored progress can be audited against its rules.
const CatalogVersion = "2026.1"

// Catalog is an ordered, immutable list of badge definitions.
type Catalog struct {
	version     string
	definitions []BadgeDefinition
}

// NewCatalog validates definitions and builds a catalog.
func NewCatalog(version string, definitions []BadgeDefinition) (*Catalog, error) {
	catalog := &Catalog{
		version:     version,
		definitions: make([]BadgeDefinition, 0, len(definitions)),
	}
	seen := make(map[string]struct{}, len(definitions))

	for _, badge := range definitions {
		if badge.ID == "" {
			return nil, fmt.Errorf("progression: badge with empty id")
		}
		if _, duplicate := seen[badge.ID]; duplicate {
			return nil, fmt.Errorf("progression: duplicate badge id %q", badge.ID)
		}
		if badge.Threshold <= 0 {
			return nil, fmt.Errorf("progression: badge %q needs a positive threshold", badge.ID)
		}
		if _, ok := badge.Metric.ActivityKind(); !ok && badge.Metric != MetricStreak {
			return nil, fmt.Errorf("progression: badge %q uses unknown metric %q", badge.ID, badge.Metric)
		}

		catalog.definitions = append(catalog.definitions, badge)
		seen[badge.ID] = struct{}{}
	}

	return catalog, nil
}

// Version returns the catalog version string.
func (catalog *Catalog) Version() string { return catalog.version }

// Definitions returns a copy of the badges in catalog order.
func (catalog *Catalog) Definitions() []BadgeDefinition {
	out := make([]BadgeDefinition, len(catalog.definitions))
	copy(out, catalog.definitions)
	return out
}

// Metrics returns the distinct metrics the catalog reads, in first-use order.
func (catalog *Catalog) Metrics() []Metric {
	seen := make(map[Metric]struct{})
	var metrics []Metric
	for _, badge := range catalog.definitions {
		if _, ok := seen[badge.Metric]; ok {
			continue
		}
		seen[badge.Metric] = struct{}{}
		metrics = append(metrics, badge.Metric)
	}
	return metrics
}

// DefaultCatalog returns the built-in badge table.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog(CatalogVersion, []BadgeDefinition{
		{ID: "streak-2", Label: "Back Again", Description: "Active two days in a row", Metric: MetricStreak, Threshold: 2},
		{ID: "streak-7", Label: "Week Warrior", Description: "Active seven days in a row", Metric: MetricStreak, Threshold: 7},
		{ID: "streak-30", Label: "Steady Mind", Description: "Active thirty days in a row", Metric: MetricStreak, Threshold: 30},
		{ID: "logins-10", Label: "Regular", Description: "Signed in ten times", Metric: MetricLoginTotal, Threshold: 10},
		{ID: "journal-1", Label: "Dear Diary", Description: "Wrote a first journal entry", Metric: MetricJournalTotal, Threshold: 1},
		{ID: "journal-10", Label: "Reflective Writer", Description: "Wrote ten journal entries", Metric: MetricJournalTotal, Threshold: 10},
		{ID: "mood-7", Label: "Mood Tracker", Description: "Checked in on mood seven times", Metric: MetricMoodCheckinTotal, Threshold: 7},
		{ID: "resources-5", Label: "Curious Learner", Description: "Opened five wellness resources", Metric: MetricResourceAccessTotal, Threshold: 5},
		{ID: "self-help-3", Label: "Self-Care Starter", Description: "Completed three self-help sessions", Metric: MetricSelfHelpTotal, Threshold: 3},
	})
	if err != nil {
		panic(err)
	}
	return catalog
}
