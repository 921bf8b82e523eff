// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/taibuivan/serenity/internal/identity/access"
	"github.com/taibuivan/serenity/internal/platform/apperr"
)

// OverrideRepository implements [access.OverrideRepository].
type OverrideRepository struct {
	mu         sync.RWMutex
	grants     map[string][]string
	identities map[string]struct{}

	// Err, when set, is returned by every lookup to simulate an outage.
	Err error
}

// NewOverrideRepository creates an empty repository.
func NewOverrideRepository() *OverrideRepository {
	return &OverrideRepository{
		grants:     make(map[string][]string),
		identities: make(map[string]struct{}),
	}
}

// Register declares identities that grants may reference, mirroring the
// foreign key on auth.admin_permission.
func (repository *OverrideRepository) Register(identityIDs ...string) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, id := range identityIDs {
		repository.identities[id] = struct{}{}
	}
}

// Grant attaches raw permission tokens to an identity and registers it.
func (repository *OverrideRepository) Grant(identityID string, permissions ...string) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.identities[identityID] = struct{}{}
	repository.grants[identityID] = append(repository.grants[identityID], permissions...)
}

// ListByIdentity returns a copy of the identity's tokens.
func (repository *OverrideRepository) ListByIdentity(ctx context.Context, identityID string) ([]string, error) {
	if repository.Err != nil {
		return nil, repository.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repository.mu.RLock()
	defer repository.mu.RUnlock()
	return append([]string(nil), repository.grants[identityID]...), nil
}

// Add implements the grant write; duplicates are ignored and unregistered
// identities are reported as not found.
func (repository *OverrideRepository) Add(ctx context.Context, identityID string, permission access.Permission, _ string) error {
	if repository.Err != nil {
		return repository.Err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.identities[identityID]; !ok {
		return apperr.NotFound("Identity")
	}

	if !slices.Contains(repository.grants[identityID], string(permission)) {
		repository.grants[identityID] = append(repository.grants[identityID], string(permission))
	}
	return nil
}
