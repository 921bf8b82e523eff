// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// Role represents the authorization level granted to an identity.
//
// Roles are static process-wide configuration; the permissions each role
// grants live in the access catalog, not on the identity.
type Role string

const (
	// Platform operator across every organization
	RoleSuperAdmin Role = "SUPERADMIN"

	// Staff member managing a single organization (school)
	RoleAdmin Role = "ADMIN"

	// Learner enrolled in an organization
	RoleStudent Role = "STUDENT"
)

// IsKnown reports whether r is one of the declared roles.
func (r Role) IsKnown() bool {
	return r.level() > 0
}

// IsStaff reports whether r is allowed to sign in through the staff login.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r Role) AtLeast(target Role) bool {
	return r.level() >= target.level() && r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r Role) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleSuperAdmin:
		return 30
	case RoleAdmin:
		return 20
	case RoleStudent:
		return 10
	default:
		return 0
	}
}
