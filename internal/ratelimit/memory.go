package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepEvery bounds how often expired windows are evicted.
const sweepEvery = 1024

// memoryLimiter keeps fixed-window counters per key.
// WARNING: per-instance only; not suitable for production.
type memoryLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	seen   map[string]*windowCounter
	calls  int
}

type windowCounter struct {
	count   int
	resetAt time.Time
}

func newMemoryLimiter(max int, window time.Duration) *memoryLimiter {
	return &memoryLimiter{
		max:    max,
		window: window,
		seen:   make(map[string]*windowCounter),
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	l.calls++
	if l.calls%sweepEvery == 0 {
		for k, c := range l.seen {
			if now.After(c.resetAt) {
				delete(l.seen, k)
			}
		}
	}

	c, ok := l.seen[key]
	if !ok || now.After(c.resetAt) {
		c = &windowCounter{resetAt: now.Add(l.window)}
		l.seen[key] = c
	}

	if c.count >= l.max {
		return false, nil
	}
	c.count++
	return true, nil
}
