// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # Credential Data Access

// CredentialRepository defines the data access contract for login credentials.
type CredentialRepository interface {

	/*
		FindByLoginKey returns the credential whose key column equals value.

		Parameters:
		  - context: context.Context
		  - key: LoginKey
		  - value: string (already normalized)

		Returns:
		  - *Credential: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByLoginKey(context context.Context, key LoginKey, value string) (*Credential, error)

	/*
		Create persists a brand-new credential.

		Parameters:
		  - context: context.Context
		  - credential: *Credential

		Returns:
		  - error: apperr.Conflict if a login key is taken, or persistence failures
	*/
	Create(context context.Context, credential *Credential) error
}

// # Session Data Access

// SessionStore defines the contract for the single authoritative session store.
type SessionStore interface {

	/*
		Put persists a session under its token hash until ExpiresAt.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Put(context context.Context, session *Session) error

	/*
		Get returns the live session for a token hash.

		Description: A session found past its expiry is deleted before
		ErrSessionExpired is returned; the stale record is never handed out.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Session: Live session
		  - error: ErrSessionNotFound, ErrSessionExpired or store failures
	*/
	Get(context context.Context, tokenHash string) (*Session, error)

	/*
		Delete removes a session. Deleting an absent session is not an error.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, tokenHash string) error

	/*
		SweepExpired removes every session whose expiry has passed.

		Parameters:
		  - context: context.Context

		Returns:
		  - int: Number of sessions removed
		  - error: Persistence failures
	*/
	SweepExpired(context context.Context) (int, error)
}
