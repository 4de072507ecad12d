package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "microblog:ratelimit:"

type redisLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

func newRedisLimiter(dsn string, max int, window time.Duration) *redisLimiter {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		opts = &redis.Options{Addr: dsn}
	}
	return &redisLimiter{
		client: redis.NewClient(opts),
		max:    max,
		window: window,
	}
}

// newRedisLimiterWithClient is used by tests to inject a client.
func newRedisLimiterWithClient(client *redis.Client, max int, window time.Duration) *redisLimiter {
	return &redisLimiter{client: client, max: max, window: window}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := keyPrefix + key

	// INCR is atomic, so concurrent callers with the same key never lose
	// updates. The first hit in a window starts its expiry.
	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.max), nil
}
