// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/serenity/internal/platform/apperr"
	"github.com/taibuivan/serenity/internal/platform/ctxutil"
	"github.com/taibuivan/serenity/internal/platform/dberr"
	"github.com/taibuivan/serenity/internal/platform/sec"
)

// Service resolves permissions for live requests.
//
// It loads the override snapshot for the identity, then defers to the pure
// [Resolver]. Only Admin identities carry overrides.
type Service struct {
	resolver  *Resolver
	overrides OverrideRepository
	timeout   time.Duration
}

// NewService constructs a new [Service]. timeout bounds each override lookup.
func NewService(catalog *Catalog, overrides OverrideRepository, timeout time.Duration) *Service {
	return &Service{
		resolver:  NewResolver(catalog),
		overrides: overrides,
		timeout:   timeout,
	}
}

/*
HasPermission reports whether the identity holds the permission.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - permission: Permission

Returns:
  - bool: true if granted by role or override
  - error: PersistenceUnavailable if overrides could not be loaded
*/
func (service *Service) HasPermission(context context.Context, identity *sec.Identity, permission Permission) (bool, error) {
	if identity == nil {
		return false, nil
	}

	// Role grants answer most checks without touching storage
	if service.resolver.HasPermission(identity, nil, permission) {
		return true, nil
	}

	overrides, err := service.loadOverrides(context, identity)
	if err != nil {
		return false, err
	}

	return service.resolver.HasPermission(identity, overrides, permission), nil
}

/*
Permissions returns the effective permission list for the identity.

Parameters:
  - context: context.Context
  - identity: *sec.Identity

Returns:
  - []Permission: Sorted union of role grants and overrides
  - error: PersistenceUnavailable if overrides could not be loaded
*/
func (service *Service) Permissions(context context.Context, identity *sec.Identity) ([]Permission, error) {
	overrides, err := service.loadOverrides(context, identity)
	if err != nil {
		return nil, err
	}

	return service.resolver.Resolve(identity, overrides).Sorted(), nil
}

/*
Grant attaches one permission override to an admin profile.

Description: A grantor can only hand out permissions they hold themselves.
Overrides on non-admin identities are stored but never consulted.

Parameters:
  - context: context.Context
  - grantor: *sec.Identity
  - identityID: string (recipient)
  - permission: Permission

Returns:
  - error: Unauthorized, Forbidden, ValidationError, NotFound (unknown recipient)
    or PersistenceUnavailable
*/
func (service *Service) Grant(ctx context.Context, grantor *sec.Identity, identityID string, permission Permission) error {
	if grantor == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if !permission.IsKnown() {
		return apperr.ValidationError("Validation failed", apperr.FieldError{Field: "permission", Message: "Unknown permission"})
	}
	if identityID == "" {
		return apperr.ValidationError("Validation failed", apperr.FieldError{Field: "identity_id", Message: "This field is required"})
	}

	held, err := service.HasPermission(ctx, grantor, permission)
	if err != nil {
		return err
	}
	if !held {
		return apperr.Forbidden("Cannot grant a permission you do not hold")
	}

	addCtx, cancel := context.WithTimeout(ctx, service.timeout)
	defer cancel()

	if err := service.overrides.Add(addCtx, identityID, permission, grantor.ID); err != nil {
		return dberr.Wrap(err, "access_service_grant")
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "permission_granted",
		slog.String("identity_id", identityID),
		slog.String("permission", string(permission)),
		slog.String("granted_by", grantor.ID),
	)

	return nil
}

// loadOverrides fetches and validates the override snapshot for admins.
// Unknown tokens in storage are dropped and logged, never granted.
func (service *Service) loadOverrides(ctx context.Context, identity *sec.Identity) (PermissionSet, error) {
	if identity == nil || identity.Kind != sec.KindAdmin || service.overrides == nil {
		return nil, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, service.timeout)
	defer cancel()

	raw, err := service.overrides.ListByIdentity(lookupCtx, identity.ID)
	if err != nil {
		return nil, dberr.Wrap(err, "access_service_load_overrides")
	}

	set := make(PermissionSet, len(raw))
	for _, token := range raw {
		permission, err := ParsePermission(token)
		if err != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "permission_override_ignored",
				slog.String("identity_id", identity.ID),
				slog.String("permission", token),
			)
			continue
		}
		set[permission] = struct{}{}
	}

	return set, nil
}
