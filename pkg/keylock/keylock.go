// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package keylock provides mutual exclusion keyed by string.

Callers holding different keys never block each other. Entries are
reference-counted and removed once no goroutine holds or waits for them,
so memory stays proportional to the number of keys currently in use.
*/
package keylock

import (
	"context"
	"sync"
)

type entry struct {
	// slot is a one-token semaphore; holding the token means holding the lock.
	slot chan struct{}
	refs int
}

// Locker hands out per-key locks. The zero value is not usable; call [New].
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty Locker.
func New() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

// Lock blocks until key is free or ctx is done.
//
// On success it returns the release function, which must be called exactly once.
func (locker *Locker) Lock(ctx context.Context, key string) (func(), error) {
	held := locker.acquire(key)

	select {
	case held.slot <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-held.slot
				locker.release(key, held)
			})
		}, nil
	case <-ctx.Done():
		locker.release(key, held)
		return nil, ctx.Err()
	}
}

// acquire registers interest in key and returns its entry.
func (locker *Locker) acquire(key string) *entry {
	locker.mu.Lock()
	defer locker.mu.Unlock()

	held, ok := locker.entries[key]
	if !ok {
		held = &entry{slot: make(chan struct{}, 1)}
		locker.entries[key] = held
	}
	held.refs++
	return held
}

// release drops interest in key and frees the entry when unused.
func (locker *Locker) release(key string, held *entry) {
	locker.mu.Lock()
	defer locker.mu.Unlock()

	held.refs--
	if held.refs == 0 {
		delete(locker.entries, key)
	}
}

// Len reports how many keys are currently held or awaited.
func (locker *Locker) Len() int {
	locker.mu.Lock()
	defer locker.mu.Unlock()
	return len(locker.entries)
}
