package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// TTLCache is an in-memory cache whose entries expire after a fixed
// duration. Expired entries are dropped lazily on Get and eagerly by
// SweepExpired. Concurrent readers may race a writer for the same key;
// the cache only ever serves values that were stored, so losing such a
// race costs one redundant upstream fetch and nothing else.
type TTLCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
}

// New creates a TTLCache with the given default time-to-live.
func New[V any](ttl time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(e.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key with the cache's default TTL.
func (c *TTLCache[V]) Put(key string, value V) {
	c.PutTTL(key, value, c.ttl)
}

// PutTTL stores value under key with an explicit TTL.
func (c *TTLCache[V]) PutTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expires: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes key from the cache.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of entries currently stored, expired or not.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// SweepExpired removes all expired entries and returns how many were dropped.
func (c *TTLCache[V]) SweepExpired() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
