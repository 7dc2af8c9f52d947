// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
	"github.com/taibuivan/mathlab/internal/users/auth"
)

/*
TestRedisSessionStore verifies the key layout, payload and TTL of refresh records.
*/
func TestRedisSessionStore(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	store := auth.NewSessionStore(client)
	ctx := context.Background()

	record := auth.RefreshRecord{UserID: "user-1", TokenID: "token-1"}
	require.NoError(t, store.Save(ctx, "tok", record, time.Hour))

	raw, err := server.Get("auth:refresh_token:tok")
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"user-1","tokenId":"token-1"}`, raw)
	assert.Equal(t, time.Hour, server.TTL("auth:refresh_token:tok"))

	found, err := store.Find(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, record, *found)

	require.NoError(t, store.Delete(ctx, "tok"))
	_, err = store.Find(ctx, "tok")
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

/*
TestRedisSessionStore_Corrupted verifies that unreadable records are treated as invalid.
*/
func TestRedisSessionStore_Corrupted(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	store := auth.NewSessionStore(client)

	require.NoError(t, server.Set("auth:refresh_token:bad", "not-json"))

	_, err := store.Find(context.Background(), "bad")
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

/*
TestRedisSessionStore_Unavailable verifies cache outages surface as dependency errors.
*/
func TestRedisSessionStore_Unavailable(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	store := auth.NewSessionStore(client)
	server.SetError("ERR server unavailable")

	_, err := store.Find(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "DEPENDENCY_ERROR"))
}
