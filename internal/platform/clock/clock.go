// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package clock provides the time source and calendar-date policy for the platform.

Streaks and badge timestamps depend on which calendar day an action falls on.
Server-local time is not a safe default for a multi-school deployment, so every
"today" is computed in one explicit, configured location (UTC unless
CALENDAR_TIMEZONE says otherwise).
*/
package clock

import (
	"fmt"
	"time"
)

// # Time Sources

// Clock supplies the current instant and the current calendar date.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time

	// Today returns the calendar date of Now in the canonical location.
	Today() Date
}

// System is the production [Clock] backed by [time.Now].
type System struct {
	location *time.Location
}

// NewSystem creates a [System] clock that computes dates in location.
// A nil location means UTC.
func NewSystem(location *time.Location) *System {
	if location == nil {
		location = time.UTC
	}
	return &System{location: location}
}

// Now returns the current instant in the canonical location.
func (system *System) Now() time.Time {
	return time.Now().In(system.location)
}

// Today returns the current calendar date in the canonical location.
func (system *System) Today() Date {
	return DateOf(system.Now())
}

// Location returns the canonical location.
func (system *System) Location() *time.Location {
	return system.location
}

// LoadLocation resolves a configured timezone name, treating "" as UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "UTC" {
		return time.UTC, nil
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("clock: unknown timezone %q: %w", name, err)
	}
	return location, nil
}
