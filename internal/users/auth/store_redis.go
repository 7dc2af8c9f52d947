// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
	"github.com/taibuivan/mathlab/internal/platform/constants"
	redisutil "github.com/taibuivan/mathlab/internal/platform/redis"
)

// RedisSessionStore implements SessionStore using Redis.
//
// # Key Layout
//
//	auth:refresh_token:<token> -> {"userId": "...", "tokenId": "..."}
type RedisSessionStore struct {
	client redis.Cmdable
}

// NewSessionStore creates a new Redis-backed SessionStore.
func NewSessionStore(client redis.Cmdable) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func refreshKey(token string) string {
	return constants.RedisPrefixRefreshToken + token
}

/*
Save stores a refresh token record with its TTL.

Parameters:
  - context: context.Context
  - token: string
  - record: RefreshRecord
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (store *RedisSessionStore) Save(context context.Context, token string, record RefreshRecord, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	if err := store.client.Set(context, refreshKey(token), payload, ttl).Err(); err != nil {
		return apperr.Dependency("Session cache", fmt.Errorf("redis_session_save_failed: %w", err))
	}

	return nil
}

/*
Find retrieves the record for a refresh token.

Description: A missing key and an unreadable payload both mean the token is
no longer valid.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *RefreshRecord: Stored record
  - error: ErrInvalidRefreshToken or connectivity errors
*/
func (store *RedisSessionStore) Find(context context.Context, token string) (*RefreshRecord, error) {
	payload, err := store.client.Get(context, refreshKey(token)).Bytes()
	if err != nil {
		if redisutil.IsMiss(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, apperr.Dependency("Session cache", fmt.Errorf("redis_session_find_failed: %w", err))
	}

	record := &RefreshRecord{}
	if err := json.Unmarshal(payload, record); err != nil || record.UserID == "" {
		return nil, ErrInvalidRefreshToken
	}

	return record, nil
}

/*
Delete removes the token from Redis.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Deletion failures
*/
func (store *RedisSessionStore) Delete(context context.Context, token string) error {
	if err := store.client.Del(context, refreshKey(token)).Err(); err != nil {
		return apperr.Dependency("Session cache", fmt.Errorf("redis_session_delete_failed: %w", err))
	}
	return nil
}
