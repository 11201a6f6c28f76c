package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
}

// SimpleCache is a map-backed cache guarded by a RWMutex, with lazy expiry
// and an optional entry limit. When the limit is reached, expired entries
// are purged first; if the map is still full the new entry is not stored.
type SimpleCache[K comparable, V any] struct {
	mu         sync.RWMutex
	items      map[K]entry[V]
	maxEntries int
}

// Options controls construction of a SimpleCache.
type Options struct {
	// MaxEntries bounds the cache size; 0 means unbounded.
	MaxEntries int
}

// NewSimpleCache constructs a new SimpleCache with the given options.
func NewSimpleCache[K comparable, V any](opts Options) *SimpleCache[K, V] {
	return &SimpleCache[K, V]{
		items:      make(map[K]entry[V]),
		maxEntries: opts.MaxEntries,
	}
}

// now is a small indirection to allow test stubbing.
var now = time.Now

func (e entry[V]) expired(at time.Time) bool {
	return !e.expiresAt.IsZero() && at.After(e.expiresAt)
}

// Get implements Cache.Get.
func (c *SimpleCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	e, ok := c.items[key]
	if !ok || e.expired(now()) {
		return zero, false
	}
	return e.value, true
}

// Set implements Cache.Set.
func (c *SimpleCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.purgeLocked()
		if len(c.items) >= c.maxEntries {
			return
		}
	}

	var exp time.Time
	if ttl > 0 {
		exp = now().Add(ttl)
	}
	c.items[key] = entry[V]{value: value, expiresAt: exp}
}

// Delete implements Cache.Delete.
func (c *SimpleCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len implements Cache.Len.
func (c *SimpleCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ts := now()
	count := 0
	for _, e := range c.items {
		if !e.expired(ts) {
			count++
		}
	}
	return count
}

// PurgeExpired implements Cache.PurgeExpired.
func (c *SimpleCache[K, V]) PurgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeLocked()
}

func (c *SimpleCache[K, V]) purgeLocked() {
	ts := now()
	for k, e := range c.items {
		if e.expired(ts) {
			delete(c.items, k)
		}
	}
}

var _ Cache[string, int] = (*SimpleCache[string, int])(nil)
