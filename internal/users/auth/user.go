// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements user identity and session management.

It covers the account lifecycle from registration through login, profile
updates, and logout. Passwords are stored as bcrypt hashes, access tokens
are RSA-signed JWTs, and refresh sessions live in Redis keyed by the SHA-256
hash of the opaque refresh token.

# Architecture

  - Service: Orchestrates registration, login, and profile use cases.
  - Repository: Postgres-backed account storage (users.account).
  - SessionStore: Redis-backed refresh sessions, TTL-bound and revocable.
*/
package auth

import (
	"time"

	"github.com/taibuivan/mangaden/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Mangaden platform.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never serialized.
	DisplayName  string       `json:"display_name"`
	AvatarURL    string       `json:"avatar_url,omitempty"`
	Bio          string       `json:"bio,omitempty"`
	Slug         string       `json:"slug"`
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// # Field Identifiers

// Field names used for validation details in the authentication domain.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDisplayName = "display_name"
	FieldAvatarURL   = "avatar_url"
	FieldBio         = "bio"
	FieldLogin       = "login"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
)
