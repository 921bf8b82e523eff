// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// AuthIdentityTable represents the 'auth.identity' table
type AuthIdentityTable struct {
	Table          string
	ID             string
	Kind           string
	Identifier     string
	Email          string
	PasswordHash   string
	OrganizationID string
	Disabled       string
	CreatedAt      string
}

// AuthIdentity is the schema definition for auth.identity
var AuthIdentity = AuthIdentityTable{
	Table:          "auth.identity",
	ID:             "id",
	Kind:           "kind",
	Identifier:     "identifier",
	Email:          "email",
	PasswordHash:   "passwordhash",
	OrganizationID: "organizationid",
	Disabled:       "disabled",
	CreatedAt:      "createdat",
}

// Columns returns all standard column names
func (t AuthIdentityTable) Columns() []string {
	return []string{
		t.ID, t.Kind, t.Identifier, t.Email, t.PasswordHash, t.OrganizationID, t.Disabled, t.CreatedAt,
	}
}
