// Package cache provides a time-bounded in-memory cache with manual
// invalidation.
package cache

import (
	"fmt"
	"sync"
	"time"

	"FXSentinel/internal/metrics"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL memoizes values per key until they expire or Clear is called.
// Concurrent misses on the same key share one load; loads for different keys
// run independently. The last completed load wins.
type TTL[K comparable, V any] struct {
	name  string
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[K]entry[V]
	group singleflight.Group
}

// New creates a cache whose entries live for ttl. name labels its metrics.
func New[K comparable, V any](name string, ttl time.Duration) *TTL[K, V] {
	return &TTL[K, V]{
		name:  name,
		ttl:   ttl,
		now:   time.Now,
		items: make(map[K]entry[V]),
	}
}

// WithClock replaces the time source. Used by tests.
func (c *TTL[K, V]) WithClock(now func() time.Time) *TTL[K, V] {
	c.now = now
	return c
}

// TTL returns the configured lifetime.
func (c *TTL[K, V]) TTL() time.Duration { return c.ttl }

// Get returns the cached value if present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for one TTL.
func (c *TTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// GetOrLoad returns the cached value or runs load and caches its result.
// load must not fail; callers encode failures in V.
func (c *TTL[K, V]) GetOrLoad(key K, load func() V) V {
	return c.GetOrLoadIf(key, func() (V, bool) { return load(), true })
}

// GetOrLoadIf is GetOrLoad for loads that may produce a result not worth
// keeping: when load reports false the value is returned to the waiting
// callers but not stored, and the next call loads again.
func (c *TTL[K, V]) GetOrLoadIf(key K, load func() (V, bool)) V {
	if v, ok := c.Get(key); ok {
		metrics.CacheHits.WithLabelValues(c.name).Inc()
		return v
	}
	metrics.CacheMisses.WithLabelValues(c.name).Inc()

	v, _, _ := c.group.Do(fmt.Sprint(key), func() (interface{}, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, keep := load()
		if keep {
			c.Set(key, v)
		}
		return v, nil
	})
	return v.(V)
}

// Clear drops every entry unconditionally.
func (c *TTL[K, V]) Clear() {
	c.mu.Lock()
	c.items = make(map[K]entry[V])
	c.mu.Unlock()
}

// Len counts stored entries, expired ones included.
func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
