// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// AuthSessionTable represents the 'auth.session' table
type AuthSessionTable struct {
	Table          string
	TokenHash      string
	IdentityID     string
	Kind           string
	Role           string
	OrganizationID string
	CreatedAt      string
	ExpiresAt      string
}

// AuthSession is the schema definition for auth.session
var AuthSession = AuthSessionTable{
	Table:          "auth.session",
	TokenHash:      "tokenhash",
	IdentityID:     "identityid",
	Kind:           "kind",
	Role:           "role",
	OrganizationID: "organizationid",
	CreatedAt:      "createdat",
	ExpiresAt:      "expiresat",
}

// Columns returns all standard column names
func (t AuthSessionTable) Columns() []string {
	return []string{
		t.TokenHash, t.IdentityID, t.Kind, t.Role, t.OrganizationID, t.CreatedAt, t.ExpiresAt,
	}
}
