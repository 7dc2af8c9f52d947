// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
	redisutil "github.com/taibuivan/mathlab/internal/platform/redis"
)

// RedisCache implements Cache on go-redis.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache creates a new RedisCache.
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// Get reads a cached value. A missing key is not an error.
func (cache *RedisCache) Get(context context.Context, key string) ([]byte, bool, error) {
	value, err := cache.client.Get(context, key).Bytes()
	if err != nil {
		if redisutil.IsMiss(err) {
			return nil, false, nil
		}
		return nil, false, apperr.Dependency("Leaderboard cache", fmt.Errorf("redis_leaderboard_get_failed: %w", err))
	}
	return value, true, nil
}

// Set writes a value with a TTL.
func (cache *RedisCache) Set(context context.Context, key string, value []byte, ttl time.Duration) error {
	if err := cache.client.Set(context, key, value, ttl).Err(); err != nil {
		return apperr.Dependency("Leaderboard cache", fmt.Errorf("redis_leaderboard_set_failed: %w", err))
	}
	return nil
}

// Delete removes a key. Deleting a missing key succeeds.
func (cache *RedisCache) Delete(context context.Context, key string) error {
	if err := cache.client.Del(context, key).Err(); err != nil {
		return apperr.Dependency("Leaderboard cache", fmt.Errorf("redis_leaderboard_delete_failed: %w", err))
	}
	return nil
}
