// Package cache provides a typed, TTL based in-memory cache on top of
// patrickmn/go-cache. The server keeps form sessions in it.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a typed wrapper around go-cache.
type Cache[V any] struct {
	store *gocache.Cache
	ttl   time.Duration
}

// New creates a cache whose entries expire after defaultTTL of inactivity.
// Expired entries are removed every cleanupInterval.
func New[V any](defaultTTL, cleanupInterval time.Duration) *Cache[V] {
	return &Cache[V]{
		store: gocache.New(defaultTTL, cleanupInterval),
		ttl:   defaultTTL,
	}
}

// OnEvicted sets a function called when an entry expires or is deleted. It
// is not called when a value is overwritten.
func (c *Cache[V]) OnEvicted(fn func(key string, value V)) {
	c.store.OnEvicted(func(key string, v any) {
		if value, ok := v.(V); ok {
			fn(key, value)
		}
	})
}

// Get retrieves a value from the cache.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	v, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	value, ok := v.(V)
	if !ok {
		return zero, false
	}
	return value, true
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// Add stores a value only if key is not present.
func (c *Cache[V]) Add(key string, value V) error {
	return c.store.Add(key, value, gocache.DefaultExpiration)
}

// Touch extends the lifetime of key by the default TTL. It reports whether
// the key was present.
func (c *Cache[V]) Touch(key string) bool {
	v, ok := c.Get(key)
	if !ok {
		return false
	}
	// Replace keeps the value and resets its expiration without firing
	// the eviction callback.
	return c.store.Replace(key, v, gocache.DefaultExpiration) == nil
}

// Delete removes a value, firing the eviction callback.
func (c *Cache[V]) Delete(key string) {
	c.store.Delete(key)
}

// DeleteExpired removes expired entries now instead of waiting for the
// cleanup interval.
func (c *Cache[V]) DeleteExpired() {
	c.store.DeleteExpired()
}

// Clear removes all items without firing the eviction callback.
func (c *Cache[V]) Clear() {
	c.store.Flush()
}

// Values returns every unexpired value.
func (c *Cache[V]) Values() []V {
	items := c.store.Items()
	out := make([]V, 0, len(items))
	for _, item := range items {
		if value, ok := item.Object.(V); ok {
			out = append(out, value)
		}
	}
	return out
}

// ItemCount returns the number of items, including expired ones not yet
// cleaned up.
func (c *Cache[V]) ItemCount() int {
	return c.store.ItemCount()
}

// TTL returns the default entry lifetime.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Stats are cache statistics.
type Stats struct {
	ItemCount int `json:"item_count"`
}

// GetStats returns current cache statistics.
func (c *Cache[V]) GetStats() Stats {
	return Stats{
		ItemCount: c.store.ItemCount(),
	}
}
