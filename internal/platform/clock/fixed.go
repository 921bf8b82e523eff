// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package clock

import (
	"sync"
	"time"
)

// Fixed is a manually advanced [Clock] for tests and replay tooling.
// It is safe for concurrent use.
type Fixed struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFixed returns a clock frozen at now.
func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

// Now returns the frozen instant.
func (fixed *Fixed) Now() time.Time {
	fixed.mu.RLock()
	defer fixed.mu.RUnlock()
	return fixed.now
}

// Today returns the calendar date of the frozen instant.
func (fixed *Fixed) Today() Date {
	return DateOf(fixed.Now())
}

// Set moves the clock to now.
func (fixed *Fixed) Set(now time.Time) {
	fixed.mu.Lock()
	defer fixed.mu.Unlock()
	fixed.now = now
}

// Advance moves the clock forward by duration.
func (fixed *Fixed) Advance(duration time.Duration) {
	fixed.mu.Lock()
	defer fixed.mu.Unlock()
	fixed.now = fixed.now.Add(duration)
}
