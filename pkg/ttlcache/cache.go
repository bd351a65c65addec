// Package ttlcache is a small in-memory key/value store with a fixed
// time-to-live and lazy expiry.
package ttlcache

import (
	"sort"
	"sync"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

type entry[T any] struct {
	data      T
	storedAt  time.Time
	expiresAt time.Time
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// HitRate returns hits / (hits + misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is safe for concurrent use. Expired entries are evicted when read.
type Cache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     Clock
	entries map[string]entry[T]
	hits    uint64
	misses  uint64
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now Clock
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(c Clock) Option {
	return func(o *options) { o.now = c }
}

// New creates a cache whose entries live for ttl.
func New[T any](ttl time.Duration, opts ...Option) *Cache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		ttl:     ttl,
		now:     o.now,
		entries: make(map[string]entry[T]),
	}
}

// TTL returns the configured time-to-live.
func (c *Cache[T]) TTL() time.Duration { return c.ttl }

// Set stores data under key, replacing any previous entry.
func (c *Cache[T]) Set(key string, data T) {
	now := c.now()

	c.mu.Lock()
	c.entries[key] = entry[T]{data: data, storedAt: now, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
}

// Get returns the value for key. An entry past its expiry is removed and
// reported as a miss.
func (c *Cache[T]) Get(key string) (T, bool) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && now.After(e.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	if !ok {
		c.misses++
		var zero T
		return zero, false
	}
	c.hits++
	return e.data, true
}

// Clear removes every entry and returns how many there were.
func (c *Cache[T]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]entry[T])
	return n
}

// Len counts held entries, including expired ones not yet evicted.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns up to limit keys in lexical order. limit <= 0 means all.
func (c *Cache[T]) Keys(limit int) []string {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

// Stats returns the current counters.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
