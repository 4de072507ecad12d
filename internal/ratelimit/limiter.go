// Package ratelimit throttles post creation per caller.
//
// Primary backend: Redis fixed-window counters (env REDIS_DSN), correct
// across multiple service instances. Fallback: in-memory counters
// (single instance, development only).
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Limiter decides whether a caller may perform one more action in the
// current window. Implementations must be safe for concurrent use and must
// not lose updates for concurrent calls with the same key.
type Limiter interface {
	// Allow consumes one slot for key. It returns false when the caller has
	// exhausted the window's quota.
	Allow(ctx context.Context, key string) (bool, error)
}

// New creates the best available limiter: Redis when a DSN is given, else
// in-memory. When isProd is true the in-memory fallback is not allowed,
// since per-instance counters under-count behind a load balancer.
func New(redisDSN string, max int, window time.Duration, isProd bool) (Limiter, error) {
	if max <= 0 || window <= 0 {
		return nil, errors.New("ratelimit: max and window must be positive")
	}
	if redisDSN != "" {
		return newRedisLimiter(redisDSN, max, window), nil
	}
	if isProd {
		return nil, errors.New("ratelimit: production requires REDIS_DSN; in-memory counters are not allowed")
	}
	return newMemoryLimiter(max, window), nil
}
