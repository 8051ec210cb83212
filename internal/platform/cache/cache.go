// Package cache provides the bounded, time-expiring result store shared
// by the interaction checkers. Entries expire lazily on read; when the
// store grows past its capacity the oldest insertions are evicted first.
// Interaction queries are low-cardinality, so plain FIFO eviction is
// sufficient and no LRU bookkeeping is kept.
package cache

import (
	"sync"
	"time"
)

// Cache is the store contract injected into the checkers. Tests
// substitute an implementation with deterministic time control.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	FlushAll()
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is a thread-safe in-memory Cache with lazy expiration and
// insertion-order eviction.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	// insertion order for FIFO eviction
	order   []string
	maxSize int
	now     func() time.Time
}

// New creates a TTLCache holding at most maxSize entries.
func New(maxSize int) *TTLCache {
	return &TTLCache{
		entries: make(map[string]*entry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// NewWithClock creates a TTLCache using the given clock. Tests use this
// to exercise expiry without sleeping.
func NewWithClock(maxSize int, now func() time.Time) *TTLCache {
	c := New(maxSize)
	c.now = now
	return c
}

// Get returns the value for key if present and unexpired. An expired
// entry is treated identically to an absent one.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the given TTL. Expired entries are
// purged before capacity is enforced, so live data is only evicted when
// the cache is genuinely full.
func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.purgeExpiredLocked(now)

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = &entry{value: value, expiresAt: now.Add(ttl)}

	for len(c.entries) > c.maxSize {
		c.evictOldestLocked()
	}
}

// FlushAll removes every entry.
func (c *TTLCache) FlushAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.order = nil
}

// Len returns the number of stored entries, expired or not.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *TTLCache) purgeExpiredLocked(now time.Time) {
	kept := c.order[:0]
	for _, k := range c.order {
		e, ok := c.entries[k]
		if !ok {
			continue
		}
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			continue
		}
		kept = append(kept, k)
	}
	c.order = kept
}

func (c *TTLCache) evictOldestLocked() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}
