// Package cache provides a small TTL cache used in front of remote document
// stores.
package cache

import (
	"sync"
	"time"
)

// Entry is a cached value with its expiry.
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// IsExpired returns true if the entry has expired
func (e *Entry[V]) IsExpired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Cache is a keyed TTL cache.
type Cache[V any] interface {
	// Get returns the value and whether it was found and still fresh.
	Get(key string) (V, bool)

	// Set stores value for ttl.
	Set(key string, value V, ttl time.Duration)

	// Invalidate removes an entry from the cache
	Invalidate(key string)

	// InvalidateAll removes all entries from the cache
	InvalidateAll()
}

// MemoryCache is an in-memory cache implementation with TTL support
type MemoryCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]*Entry[V]
	now     func() time.Time

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// NewMemoryCache creates a new in-memory cache and starts its cleanup loop.
func NewMemoryCache[V any]() *MemoryCache[V] {
	c := &MemoryCache[V]{
		entries:         make(map[string]*Entry[V]),
		now:             time.Now,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get returns the value stored under key.
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return zero, false
	}
	if entry.IsExpired(c.now()) {
		c.Invalidate(key)
		return zero, false
	}
	return entry.Value, true
}

// Set stores value with the given TTL
func (c *MemoryCache[V]) Set(key string, value V, ttl time.Duration) {
	entry := &Entry[V]{Value: value, ExpiresAt: c.now().Add(ttl)}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Invalidate removes an entry from the cache
func (c *MemoryCache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll removes all entries from the cache
func (c *MemoryCache[V]) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*Entry[V])
	c.mu.Unlock()
}

func (c *MemoryCache[V]) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *MemoryCache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if entry.IsExpired(now) {
			delete(c.entries, key)
		}
	}
}

// Stop stops the background cleanup goroutine
// Safe to call multiple times
func (c *MemoryCache[V]) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCleanup)
	})
}

// Len returns the number of entries in the cache (for testing)
func (c *MemoryCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
