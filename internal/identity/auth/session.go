// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements identity authentication and the session lifecycle.

It verifies student and staff credentials, issues opaque session tokens, and
resolves them back into identities on every protected request.

Architecture:

  - Service: Orchestrates login, session resolution and logout.
  - Repository: Abstracted interfaces for credentials (Postgres) and
    sessions (Redis or Postgres).
  - Security: bcrypt password checks with equalized timing for unknown
    accounts; only the SHA-256 hash of a token is ever stored.

A session is valid iff it exists and now < ExpiresAt. Expired sessions found
during lookup are deleted on the spot.
*/
package auth

import (
	"errors"
	"time"

	"github.com/taibuivan/serenity/internal/platform/sec"
)

// # Store Sentinels

var (
	// ErrSessionNotFound is returned by a [SessionStore] for an unknown token hash.
	ErrSessionNotFound = errors.New("auth: session not found")

	// ErrSessionExpired is returned by a [SessionStore] for a session past its
	// expiry. The store has already deleted it.
	ErrSessionExpired = errors.New("auth: session expired")
)

// # Domain Entities

// Session is one issued login, keyed by the hash of its token.
type Session struct {
	TokenHash      string    `json:"-"`
	IdentityID     string    `json:"identity_id"`
	Kind           sec.Kind  `json:"kind"`
	Role           sec.Role  `json:"role"`
	OrganizationID *string   `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the session is no longer valid at now.
func (session *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(session.ExpiresAt)
}

// Identity returns the identity snapshot captured at login.
func (session *Session) Identity() *sec.Identity {
	return &sec.Identity{
		ID:             session.IdentityID,
		Kind:           session.Kind,
		Role:           session.Role,
		OrganizationID: session.OrganizationID,
	}
}

// LoginKey names the credential column a login is looked up by.
type LoginKey string

const (
	// LoginKeyIdentifier is the institution-issued student identifier.
	LoginKeyIdentifier LoginKey = "identifier"

	// LoginKeyEmail is the staff email address.
	LoginKeyEmail LoginKey = "email"
)

// Credential is an identity together with its login secrets.
type Credential struct {
	Identity     sec.Identity
	Identifier   *string
	Email        *string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
}
