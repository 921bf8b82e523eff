// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Identity Kinds

// Kind distinguishes the population an identity belongs to.
type Kind string

const (
	KindStudent    Kind = "student"
	KindAdmin      Kind = "admin"
	KindSuperAdmin Kind = "superadmin"
)

// Role returns the role implied by the identity kind.
func (k Kind) Role() Role {
	switch k {
	case KindStudent:
		return RoleStudent
	case KindAdmin:
		return RoleAdmin
	case KindSuperAdmin:
		return RoleSuperAdmin
	default:
		return ""
	}
}

// # Resolved Principal

// Identity is an authenticated principal as seen by request handlers.
//
// It is a snapshot taken when the session was issued. Handlers and the
// permission resolver rely on it without querying the identity store on
// every request.
type Identity struct {
	ID             string  `json:"id"`
	Kind           Kind    `json:"kind"`
	Role           Role    `json:"role"`
	OrganizationID *string `json:"organization_id,omitempty"` // nil for superadmins.
}

// InOrganization reports whether the identity is scoped to the given organization.
// Superadmins are not scoped and therefore never match.
func (identity *Identity) InOrganization(organizationID string) bool {
	return identity.OrganizationID != nil && *identity.OrganizationID == organizationID
}
