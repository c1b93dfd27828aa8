// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/mangaden/internal/platform/apperr"
	"github.com/taibuivan/mangaden/internal/platform/constants"
)

// # Redis Session Store

// sessionStore implements [SessionStore] on top of Redis.
//
// Each session is a single key holding the owning userID. Expiry is handled
// natively by Redis TTLs, so there is no cleanup job to run.
type sessionStore struct {
	client *redis.Client
}

// NewSessionStore constructs a Redis backed refresh-session store.
func NewSessionStore(client *redis.Client) SessionStore {
	return &sessionStore{client: client}
}

// sessionKey builds the namespaced Redis key for a token hash.
func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}

// # SessionStore Implementation

func (store *sessionStore) Save(context context.Context, tokenHash, userID string, ttl time.Duration) error {
	if err := store.client.Set(context, sessionKey(tokenHash), userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to save session: %w", err)
	}
	return nil
}

func (store *sessionStore) Resolve(context context.Context, tokenHash string) (string, error) {
	userID, err := store.client.Get(context, sessionKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Session")
		}
		return "", fmt.Errorf("redis: failed to resolve session: %w", err)
	}
	return userID, nil
}

func (store *sessionStore) Revoke(context context.Context, tokenHash string) error {
	if err := store.client.Del(context, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("redis: failed to revoke session: %w", err)
	}
	return nil
}
