package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportdesk/internal/common/config"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisClient) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr(), KeyPrefix: "rd:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisClient_RoundTrip(t *testing.T) {
	mr, client := newMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))
	require.NoError(t, client.Set(ctx, "auth_token", "tok-1", 0))

	assert.True(t, mr.Exists("rd:auth_token"), "key is namespaced")

	val, err := client.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", val)

	require.NoError(t, client.Del(ctx, "auth_token"))
	_, err = client.Get(ctx, "auth_token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisClient_Expiration(t *testing.T) {
	mr, client := newMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := client.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

func TestNewRedisFromClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client := NewRedisFromClient(rdb, "")
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "plain", "1", 0))
	got, err := mr.Get("plain")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}
