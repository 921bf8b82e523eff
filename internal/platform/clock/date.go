// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package clock

import (
	"fmt"
	"time"
)

// dateLayout is the ISO-8601 calendar date format used on the wire and in logs.
const dateLayout = "2006-01-02"

// # Calendar Dates

// Date is a civil calendar date with no time-of-day and no location.
//
// The zero value is the "no date" sentinel (see [Date.IsZero]).
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
// Convert t to the canonical location first when it comes from elsewhere.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// NewDate builds a normalized date (e.g. March 32 becomes April 1).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("clock: invalid date %q: %w", value, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Midnight returns 00:00 UTC of the date. Used as the storage representation.
func (d Date) Midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days later (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Midnight().AddDate(0, 0, n))
}

// DaysSince returns the number of calendar days from earlier to d.
// It is negative when earlier is after d.
func (d Date) DaysSince(earlier Date) int {
	return int(d.Midnight().Sub(earlier.Midnight()).Hours() / 24)
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Midnight().Before(other.Midnight())
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.Midnight().After(other.Midnight())
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Midnight().Format(dateLayout)
}

// MarshalText implements [encoding.TextMarshaler] so dates serialize as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
