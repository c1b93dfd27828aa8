// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/mangaden/internal/platform/apperr"
	"github.com/taibuivan/mangaden/internal/platform/sec"
	"github.com/taibuivan/mangaden/pkg/slug"
	"github.com/taibuivan/mangaden/pkg/uuid"
)

const maxSlugAttempts = 50

// # Contracts

// TokenProvider defines the contract for minting access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is security-critical. Changes to hashing, registration, or
// login logic require a second reviewer.
type Service struct {
	userRepo Repository
	sessions SessionStore
	tokens   TokenProvider
	logger   *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(userRepo Repository, sessions SessionStore, tokens TokenProvider, logger *slog.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Checks identity uniqueness, hashes the password, derives a
unique profile slug from the username, and stores the account with the
default member role.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Conflict (if identity exists) or storage failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Client-safe Conflict errors before touching the hasher. The unique
	// indexes remain the final arbiter under concurrent registration.
	if _, err := service.userRepo.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}
	if _, err := service.userRepo.FindByUsername(context, input.Username); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to hash password: %w", err)
	}

	profileSlug, err := service.uniqueSlug(context, input.Username)
	if err != nil {
		return nil, err
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.Username
	}

	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DisplayName:  displayName,
		Slug:         profileSlug,
		Role:         sec.RoleMember,
	}

	if err := service.userRepo.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Username or email.
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues security tokens.

Description: Resolves the identity by email or username, performs a
constant-time password comparison, and opens a refresh session in Redis.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {

	// Flexible login: try email first, then username.
	user, err := service.userRepo.FindByEmail(context, input.Login)
	if err != nil {
		user, err = service.userRepo.FindByUsername(context, input.Login)
	}

	// Generic message on both branches to prevent account enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	accessToken, err := service.tokens.GenerateAccessToken(user.ID, user.Username, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to generate access token: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to generate refresh token: %w", err)
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)
	if err := service.sessions.Save(context, sec.HashToken(refreshToken), user.ID, RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("auth: failed to open session: %w", err)
	}

	service.logger.Info("user_logged_in", slog.String("user_id", user.ID))

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

/*
Logout permanently revokes the caller's refresh session.

Description: Idempotent. A missing or already-revoked session counts as a
successful logout.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	if err := service.sessions.Revoke(context, sec.HashToken(refreshToken)); err != nil {
		return fmt.Errorf("auth: failed to revoke session: %w", err)
	}
	return nil
}

/*
RefreshSession implements refresh token rotation.

Description: Resolves the live session, revokes it so the old token can
never be replayed, and issues a fresh token pair.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *LoginSession: New session credentials
  - error: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken string) (*LoginSession, error) {
	tokenHash := sec.HashToken(refreshToken)

	userID, err := service.sessions.Resolve(context, tokenHash)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: revoke before reissuing so a stolen token has one shot.
	if err := service.sessions.Revoke(context, tokenHash); err != nil {
		return nil, fmt.Errorf("auth: failed to rotate session: %w", err)
	}

	user, err := service.userRepo.FindByID(context, userID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found")
	}

	accessToken, err := service.tokens.GenerateAccessToken(user.ID, user.Username, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to generate access token: %w", err)
	}

	newRefreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to generate refresh token: %w", err)
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)
	if err := service.sessions.Save(context, sec.HashToken(newRefreshToken), user.ID, RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("auth: failed to open session: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          newRefreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

// # Profile

/*
Me returns the authenticated user's own account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or database failures
*/
func (service *Service) Me(context context.Context, userID string) (*User, error) {
	return service.userRepo.FindByID(context, userID)
}

// UpdateProfileInput carries the mutable profile fields. Nil pointers leave
// the current value untouched.
type UpdateProfileInput struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
}

/*
UpdateProfile applies partial changes to the caller's own profile.

Description: Only presentation fields are mutable here. Username, email,
and role changes go through dedicated flows.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *User: Updated entity
  - error: apperr.NotFound or persistence failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*User, error) {
	user, err := service.userRepo.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		user.DisplayName = *input.DisplayName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}

	if err := service.userRepo.Update(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", user.ID))

	return user, nil
}

// uniqueSlug appends -2, -3, ... until the profile slug is free.
func (service *Service) uniqueSlug(context context.Context, username string) (string, error) {
	base := slug.From(username)

	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts; attempt++ {
		taken, err := service.userRepo.SlugExists(context, candidate)
		if err != nil {
			return "", fmt.Errorf("auth: failed to check profile slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}

	return "", apperr.Conflict("Could not allocate a unique profile slug")
}
