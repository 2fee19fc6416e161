// Package cache provides the TTL memoization wrapped around the upstream
// aggregations so page views reuse results for a bounded period instead of
// hammering the upstream APIs.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cached memoizes one computed value for a bounded time window. Concurrent
// callers hitting an expired entry are collapsed into a single recompute.
type Cached[T any] struct {
	name    string
	ttl     time.Duration
	compute func(ctx context.Context) T

	group singleflight.Group

	mu        sync.Mutex
	value     T
	fetchedAt time.Time
}

// New creates a Cached wrapper. name labels the cache in metrics.
func New[T any](name string, ttl time.Duration, compute func(ctx context.Context) T) *Cached[T] {
	return &Cached[T]{name: name, ttl: ttl, compute: compute}
}

// Get returns the cached value, recomputing it when the entry is older than
// the TTL or was never filled.
func (c *Cached[T]) Get(ctx context.Context) T {
	c.mu.Lock()
	if c.fresh() {
		value := c.value
		c.mu.Unlock()
		cacheRequests.WithLabelValues(c.name, "hit").Inc()
		return value
	}
	c.mu.Unlock()

	cacheRequests.WithLabelValues(c.name, "miss").Inc()
	value, _, _ := c.group.Do("value", func() (interface{}, error) {
		// A caller that queued behind the winning recompute sees the
		// fresh value here without recomputing again.
		c.mu.Lock()
		if c.fresh() {
			value := c.value
			c.mu.Unlock()
			return value, nil
		}
		c.mu.Unlock()

		value := c.compute(ctx)

		c.mu.Lock()
		c.value = value
		c.fetchedAt = time.Now()
		c.mu.Unlock()
		return value, nil
	})
	return value.(T)
}

// Invalidate drops the cached value so the next Get recomputes.
func (c *Cached[T]) Invalidate() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

// fresh reports whether the cached value is within its TTL. Caller holds mu.
func (c *Cached[T]) fresh() bool {
	return !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.ttl
}
