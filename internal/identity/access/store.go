// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import "context"

// # Override Data Access

// OverrideRepository defines the data access contract for admin-profile grants.
type OverrideRepository interface {

	/*
		ListByIdentity returns the raw permission strings granted directly to an identity.

		Parameters:
		  - context: context.Context
		  - identityID: string

		Returns:
		  - []string: Granted tokens, possibly empty
		  - error: Database retrieval failures
	*/
	ListByIdentity(context context.Context, identityID string) ([]string, error)

	/*
		Add grants one permission to an identity. Granting a permission the
		identity already holds is not an error.

		Parameters:
		  - context: context.Context
		  - identityID: string
		  - permission: Permission
		  - grantedBy: string (identity id of the grantor)

		Returns:
		  - error: Persistence failures
	*/
	Add(context context.Context, identityID string, permission Permission, grantedBy string) error
}
