package cache

import (
	"context"
	"sync"
)

// entry wraps a cached value with insertion order tracking.
type entry struct {
	value     []byte
	insertIdx int64
}

// MemoryCache keeps entries until the process exits or capacity forces the
// oldest one out. Thread-safe with sync.RWMutex.
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	maxEntries int
	nextIdx    int64
}

// NewMemoryCache creates a cache holding at most maxEntries values.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryCache{
		items:      make(map[string]entry),
		maxEntries: maxEntries,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores a value. Evicts the oldest entry if at capacity.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{value: value, insertIdx: c.nextIdx}
	c.nextIdx++

	if _, exists := c.items[key]; exists {
		c.items[key] = e
		return nil
	}
	if len(c.items) >= c.maxEntries {
		c.evictOldest()
	}
	c.items[key] = e
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *MemoryCache) Close() error { return nil }

// evictOldest removes the entry with the lowest insertIdx. Must be called with mu held.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
