// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mathlab/internal/platform/redis"
)

/*
TestNewClient verifies connection setup and health checks against miniredis.
*/
func TestNewClient(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := redis.NewClient(context.Background(), "redis://"+server.Addr()+"/0", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, redis.Ping(context.Background(), client))

	_, err = client.Get(context.Background(), "missing").Result()
	assert.True(t, redis.IsMiss(err))

	server.Close()
	assert.Error(t, redis.Ping(context.Background(), client))
}

/*
TestNewClient_InvalidURL verifies URL validation.
*/
func TestNewClient_InvalidURL(t *testing.T) {
	_, err := redis.NewClient(context.Background(), "not a url", slog.Default())
	assert.Error(t, err)

	assert.False(t, redis.IsMiss(goredis.ErrClosed))
}
