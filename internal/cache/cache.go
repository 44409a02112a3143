// Package cache provides a typed, TTL-based in-memory cache on top of
// patrickmn/go-cache.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache holds values of type V keyed by string.
type Cache[V any] struct {
	store *gocache.Cache
}

// New creates a cache. defaultTTL is the expiration of entries added with
// Set; cleanupInterval is how often expired entries are purged.
func New[V any](defaultTTL, cleanupInterval time.Duration) *Cache[V] {
	return &Cache[V]{store: gocache.New(defaultTTL, cleanupInterval)}
}

// Get retrieves a value.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	v, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(V)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// Delete removes a value.
func (c *Cache[V]) Delete(key string) {
	c.store.Delete(key)
}

// Clear removes every value.
func (c *Cache[V]) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of cached values, including expired ones
// not yet purged.
func (c *Cache[V]) ItemCount() int {
	return c.store.ItemCount()
}
