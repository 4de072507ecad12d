package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

func TestRedisLimiter_AllowsUpToMax(t *testing.T) {
	client, _ := setupTestRedis(t)
	l := newRedisLimiterWithClient(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "user_1")
		require.NoError(t, err)
		assert.True(t, ok, "call %d should be allowed", i)
	}

	ok, err := l.Allow(ctx, "user_1")
	require.NoError(t, err)
	assert.False(t, ok, "4th call in window should be denied")
}

func TestRedisLimiter_IndependentKeys(t *testing.T) {
	client, _ := setupTestRedis(t)
	l := newRedisLimiterWithClient(client, 1, time.Minute)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "user_2")
	require.NoError(t, err)
	assert.True(t, ok, "different caller must have its own window")
}

func TestRedisLimiter_WindowExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	l := newRedisLimiterWithClient(client, 1, time.Minute)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "user_1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Fast-forward past the window; the counter key must expire.
	mr.FastForward(2 * time.Minute)

	ok, err = l.Allow(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, ok, "counter should reset after the window expires")
}

func TestRedisLimiter_SetsExpiryOnFirstHit(t *testing.T) {
	client, mr := setupTestRedis(t)
	l := newRedisLimiterWithClient(client, 3, time.Minute)
	ctx := context.Background()

	_, err := l.Allow(ctx, "user_1")
	require.NoError(t, err)

	ttl := mr.TTL(keyPrefix + "user_1")
	assert.Equal(t, time.Minute, ttl, "first hit must start the window expiry")
}

func TestRedisLimiter_BackendError(t *testing.T) {
	client, mr := setupTestRedis(t)
	l := newRedisLimiterWithClient(client, 3, time.Minute)

	mr.Close()

	_, err := l.Allow(context.Background(), "user_1")
	assert.Error(t, err, "backend failure must surface, not silently allow")
}
