// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/serenity/internal/identity/auth"
	"github.com/taibuivan/serenity/internal/platform/apperr"
	"github.com/taibuivan/serenity/internal/platform/clock"
)

// # Credentials

// CredentialRepository implements [auth.CredentialRepository].
type CredentialRepository struct {
	mu          sync.RWMutex
	identifiers map[string]auth.Credential
	emails      map[string]auth.Credential
}

// NewCredentialRepository creates an empty repository.
func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{
		identifiers: make(map[string]auth.Credential),
		emails:      make(map[string]auth.Credential),
	}
}

// FindByLoginKey returns a copy of the matching credential.
func (repository *CredentialRepository) FindByLoginKey(ctx context.Context, key auth.LoginKey, value string) (*auth.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repository.mu.RLock()
	defer repository.mu.RUnlock()

	var (
		credential auth.Credential
		ok         bool
	)
	switch key {
	case auth.LoginKeyIdentifier:
		credential, ok = repository.identifiers[value]
	case auth.LoginKeyEmail:
		credential, ok = repository.emails[value]
	}
	if !ok {
		return nil, apperr.NotFound("Credential")
	}
	return &credential, nil
}

// Create stores credential, rejecting a login key that is already taken.
func (repository *CredentialRepository) Create(ctx context.Context, credential *auth.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	if credential.Identifier != nil {
		if _, taken := repository.identifiers[*credential.Identifier]; taken {
			return apperr.Conflict("Identifier already in use")
		}
	}
	if credential.Email != nil {
		if _, taken := repository.emails[*credential.Email]; taken {
			return apperr.Conflict("Email already in use")
		}
	}

	if credential.Identifier != nil {
		repository.identifiers[*credential.Identifier] = *credential
	}
	if credential.Email != nil {
		repository.emails[*credential.Email] = *credential
	}
	return nil
}

// SetDisabled flips the disabled flag on every copy of an identity's credential.
func (repository *CredentialRepository) SetDisabled(identityID string, disabled bool) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, index := range []map[string]auth.Credential{repository.identifiers, repository.emails} {
		for key, credential := range index {
			if credential.Identity.ID == identityID {
				credential.Disabled = disabled
				index[key] = credential
			}
		}
	}
}

// # Sessions

// SessionStore implements [auth.SessionStore] over a map.
type SessionStore struct {
	mu       sync.Mutex
	clock    clock.Clock
	sessions map[string]auth.Session

	// Delay, when set, stalls every call until it elapses or the context ends.
	Delay time.Duration

	// Err, when set, is returned by every call to simulate an outage.
	Err error
}

// NewSessionStore creates an empty store that reads time from clk.
func NewSessionStore(clk clock.Clock) *SessionStore {
	return &SessionStore{clock: clk, sessions: make(map[string]auth.Session)}
}

func (store *SessionStore) enter(ctx context.Context) error {
	if store.Err != nil {
		return store.Err
	}
	if store.Delay > 0 {
		timer := time.NewTimer(store.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
	return ctx.Err()
}

// Put stores a copy of session.
func (store *SessionStore) Put(ctx context.Context, session *auth.Session) error {
	if err := store.enter(ctx); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.sessions[session.TokenHash] = *session
	return nil
}

// Get returns the live session, deleting it first if it has expired.
func (store *SessionStore) Get(ctx context.Context, tokenHash string) (*auth.Session, error) {
	if err := store.enter(ctx); err != nil {
		return nil, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	session, ok := store.sessions[tokenHash]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	if session.ExpiredAt(store.clock.Now()) {
		delete(store.sessions, tokenHash)
		return nil, auth.ErrSessionExpired
	}
	return &session, nil
}

// Delete removes a session if present.
func (store *SessionStore) Delete(ctx context.Context, tokenHash string) error {
	if err := store.enter(ctx); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.sessions, tokenHash)
	return nil
}

// SweepExpired removes every expired session.
func (store *SessionStore) SweepExpired(ctx context.Context) (int, error) {
	if err := store.enter(ctx); err != nil {
		return 0, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	now := store.clock.Now()
	removed := 0
	for hash, session := range store.sessions {
		if session.ExpiredAt(now) {
			delete(store.sessions, hash)
			removed++
		}
	}
	return removed, nil
}

// Len reports how many sessions are stored, expired ones included.
func (store *SessionStore) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.sessions)
}
