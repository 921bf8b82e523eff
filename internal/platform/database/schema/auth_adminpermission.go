// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// AuthAdminPermissionTable represents the 'auth.admin_permission' table
type AuthAdminPermissionTable struct {
	Table      string
	IdentityID string
	Permission string
	GrantedBy  string
	GrantedAt  string
}

// AuthAdminPermission is the schema definition for auth.admin_permission
var AuthAdminPermission = AuthAdminPermissionTable{
	Table:      "auth.admin_permission",
	IdentityID: "identityid",
	Permission: "permission",
	GrantedBy:  "grantedby",
	GrantedAt:  "grantedat",
}
