// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import "github.com/taibuivan/serenity/internal/platform/sec"

// Resolver combines role grants and per-identity overrides.
//
// It holds nothing but the immutable catalog, so every answer is a pure
// function of its arguments.
type Resolver struct {
	catalog *Catalog
}

// NewResolver creates a resolver over catalog.
func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns catalog[identity.Role] ∪ overrides.
// A nil identity or unknown role contributes nothing.
func (resolver *Resolver) Resolve(identity *sec.Identity, overrides PermissionSet) PermissionSet {
	if identity == nil {
		return PermissionSet{}
	}
	return resolver.catalog.grants(identity.Role).Union(overrides)
}

// HasPermission reports whether identity holds permission.
func (resolver *Resolver) HasPermission(identity *sec.Identity, overrides PermissionSet, permission Permission) bool {
	if identity == nil {
		return false
	}
	if resolver.catalog.grants(identity.Role).Has(permission) {
		return true
	}
	return overrides.Has(permission)
}
