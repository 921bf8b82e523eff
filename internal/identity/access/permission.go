// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package access answers "may this identity do that" for the Serenity API.

It owns the closed enumeration of permissions, the immutable role catalog,
and a pure resolver that unions role grants with admin-profile overrides.

Architecture:

  - Permission: A validated "module.action" token. Only the constants below exist.
  - Catalog: Role to ordered, de-duplicated permission list. Built once at startup.
  - Resolver: Pure function of (catalog, overrides, identity, permission).
  - Service: Loads override snapshots from storage and delegates to the Resolver.

Checks are exact and case-sensitive. There is no wildcard matching.
*/
package access

import (
	"fmt"
	"sort"
)

// Permission is a "module.action" authorization token.
type Permission string

// # Permission Enumeration

const (
	SettingsView   Permission = "settings.view"
	SettingsUpdate Permission = "settings.update"

	UsersView   Permission = "users.view"
	UsersCreate Permission = "users.create"
	UsersUpdate Permission = "users.update"
	UsersDelete Permission = "users.delete"

	AdminsView   Permission = "admins.view"
	AdminsManage Permission = "admins.manage"

	OrganizationsView   Permission = "organizations.view"
	OrganizationsManage Permission = "organizations.manage"

	ArticlesView   Permission = "articles.view"
	ArticlesCreate Permission = "articles.create"
	ArticlesUpdate Permission = "articles.update"
	ArticlesDelete Permission = "articles.delete"

	ResourcesView   Permission = "resources.view"
	ResourcesCreate Permission = "resources.create"
	ResourcesUpdate Permission = "resources.update"
	ResourcesDelete Permission = "resources.delete"

	JournalsView   Permission = "journals.view"
	JournalsCreate Permission = "journals.create"

	MoodView   Permission = "mood.view"
	MoodCreate Permission = "mood.create"

	SelfHelpView Permission = "self_help.view"

	BadgesView Permission = "badges.view"

	ReportsView Permission = "reports.view"

	PermissionsGrant Permission = "permissions.grant"
)

// known is the closed set every Permission must belong to.
var known = map[Permission]struct{}{
	SettingsView: {}, SettingsUpdate: {},
	UsersView: {}, UsersCreate: {}, UsersUpdate: {}, UsersDelete: {},
	AdminsView: {}, AdminsManage: {},
	OrganizationsView: {}, OrganizationsManage: {},
	ArticlesView: {}, ArticlesCreate: {}, ArticlesUpdate: {}, ArticlesDelete: {},
	ResourcesView: {}, ResourcesCreate: {}, ResourcesUpdate: {}, ResourcesDelete: {},
	JournalsView: {}, JournalsCreate: {},
	MoodView: {}, MoodCreate: {},
	SelfHelpView:     {},
	BadgesView:       {},
	ReportsView:      {},
	PermissionsGrant: {},
}

// ParsePermission validates raw against the closed enumeration.
func ParsePermission(raw string) (Permission, error) {
	permission := Permission(raw)
	if !permission.IsKnown() {
		return "", fmt.Errorf("access: unknown permission %q", raw)
	}
	return permission, nil
}

// IsKnown reports whether the permission belongs to the enumeration.
func (p Permission) IsKnown() bool {
	_, ok := known[p]
	return ok
}

// String implements [fmt.Stringer].
func (p Permission) String() string { return string(p) }

// # Permission Sets

// PermissionSet is an unordered set of permissions.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given permissions.
func NewPermissionSet(permissions ...Permission) PermissionSet {
	set := make(PermissionSet, len(permissions))
	for _, permission := range permissions {
		set[permission] = struct{}{}
	}
	return set
}

// Has reports membership. A nil set has no members.
func (s PermissionSet) Has(permission Permission) bool {
	_, ok := s[permission]
	return ok
}

// Union returns a new set with the members of s and other.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	union := make(PermissionSet, len(s)+len(other))
	for permission := range s {
		union[permission] = struct{}{}
	}
	for permission := range other {
		union[permission] = struct{}{}
	}
	return union
}

// Sorted returns the members in lexical order.
func (s PermissionSet) Sorted() []Permission {
	list := make([]Permission, 0, len(s))
	for permission := range s {
		list = append(list, permission)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}
