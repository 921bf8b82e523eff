// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// DefaultSessionTTL is how long a session stays valid after login.
	DefaultSessionTTL = 24 * time.Hour

	// SessionTokenLength is the byte length of the random session token (256 bits).
	SessionTokenLength = 32

	// SessionExpiryGrace keeps expired Redis records around briefly so a late
	// lookup reports SESSION_EXPIRED instead of an unknown token.
	SessionExpiryGrace = 1 * time.Hour

	// DefaultStoreTimeout bounds one session or credential store call.
	DefaultStoreTimeout = 3 * time.Second

	// MinPasswordLength applies when provisioning accounts.
	MinPasswordLength = 8
)

// # Field Identifiers

// Field names for validation and identity mapping in the authentication domain.
const (
	FieldIdentifier     = "identifier"
	FieldEmail          = "email"
	FieldPassword       = "password"
	FieldOrganizationID = "organization_id"
	FieldKind           = "kind"
)
