// Package cache holds the in-memory TTL cache that backs per-session state.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache stores values in memory with a per-entry TTL. Expired entries are
// invisible to Get and are reclaimed by Sweep.
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]entry[V]
	now   func() time.Time
}

// New constructs an empty TTLCache using the wall clock.
func New[K comparable, V any]() *TTLCache[K, V] {
	return NewWithClock[K, V](time.Now)
}

// NewWithClock constructs an empty TTLCache using now as its clock.
func NewWithClock[K comparable, V any](now func() time.Time) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		items: make(map[K]entry[V]),
		now:   now,
	}
}

// Get returns the value for key if present and not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || c.expired(e) {
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl. A ttl <= 0 never expires.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// GetOrCreate returns the live value for key, creating it with create when
// absent or expired. The entry's TTL is refreshed either way.
func (c *TTLCache[K, V]) GetOrCreate(key K, ttl time.Duration, create func() V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	created := !ok || c.expired(e)
	if created {
		e.value = create()
	}
	e.expiresAt = time.Time{}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.items[key] = e
	return e.value, created
}

// Delete removes key.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Sweep drops expired entries and returns how many were removed.
func (c *TTLCache[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.items {
		if c.expired(e) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// Len counts live entries.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.items {
		if !c.expired(e) {
			n++
		}
	}
	return n
}

func (c *TTLCache[K, V]) expired(e entry[V]) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}
