// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Account Data Access

// Repository defines the data access contract for user accounts.
type Repository interface {

	/*
		Create persists a brand-new user account.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Conflict on duplicate username/email, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Update persists changes to mutable profile fields.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, user *User) error

	/*
		SlugExists reports whether a profile slug is already taken.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - bool: true if any account owns the slug
		  - error: Database failures
	*/
	SlugExists(context context.Context, slug string) (bool, error)
}

// # Session Data Access

// SessionStore defines the contract for volatile refresh-token sessions.
//
// Sessions are keyed by the SHA-256 hash of the refresh token, so the store
// never sees the token itself.
type SessionStore interface {

	/*
		Save stores a refresh session for a limited duration.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Save(context context.Context, tokenHash, userID string, ttl time.Duration) error

	/*
		Resolve returns the userID owning the session, if it is still live.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - string: UserID
		  - error: apperr.NotFound when absent or expired
	*/
	Resolve(context context.Context, tokenHash string) (string, error)

	/*
		Revoke deletes a session so the refresh token can never be used again.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Deletion failures
	*/
	Revoke(context context.Context, tokenHash string) error
}
