// Package cache holds the two caches the platform uses: an in-process TTL
// cache for per-client engine configuration, and a Redis-backed cache for
// the latest classification per entity.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// TTLCache is a bounded in-memory cache with explicit expiry. The clock is
// injected so staleness and eviction are testable without sleeping; when
// the capacity is reached the least recently used entry is evicted.
type TTLCache[V any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	now      func() time.Time

	entries map[string]*list.Element
	order   *list.List // front = most recently used
}

type ttlEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// NewTTL creates a cache holding at most capacity entries for at most ttl.
func NewTTL[V any](ttl time.Duration, capacity int) *TTLCache[V] {
	return NewTTLWithClock[V](ttl, capacity, time.Now)
}

// NewTTLWithClock creates a cache with an injected clock.
func NewTTLWithClock[V any](ttl time.Duration, capacity int, now func() time.Time) *TTLCache[V] {
	return &TTLCache[V]{
		ttl:      ttl,
		capacity: capacity,
		now:      now,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached value and whether it was present and fresh.
// Expired entries are removed on access.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	entry := el.Value.(*ttlEntry[V])
	if !c.now().Before(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return zero, false
	}
	c.order.MoveToFront(el)
	return entry.value, true
}

// Set stores a value, evicting the least recently used entry when full.
func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*ttlEntry[V])
		entry.value = value
		entry.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}

	if c.capacity > 0 && len(c.entries) >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*ttlEntry[V]).key)
		}
	}

	el := c.order.PushFront(&ttlEntry[V]{
		key:       key,
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	})
	c.entries[key] = el
}

// Invalidate drops one key, used when a client's config is edited.
func (c *TTLCache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

// Len reports the number of entries currently held, expired or not.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
