package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryQueryCache implements QueryCache in process memory. This is the
// default for the single-process sqlite setup where no Redis is running.
type InMemoryQueryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewInMemoryQueryCache creates an empty in-memory query cache
func NewInMemoryQueryCache() *InMemoryQueryCache {
	return &InMemoryQueryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements QueryCache
func (c *InMemoryQueryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; Set may have refreshed the entry.
		if current, ok := c.entries[key]; ok && c.now().After(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	// Callers may mutate the returned slice, so hand out a copy.
	data := make([]byte, len(entry.data))
	copy(data, entry.data)
	return data, true, nil
}

// Set implements QueryCache
func (c *InMemoryQueryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{data: stored, expiresAt: c.now().Add(ttl)}
	return nil
}

// Invalidate implements QueryCache
func (c *InMemoryQueryCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

// Close implements QueryCache
func (c *InMemoryQueryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	return nil
}

var _ QueryCache = (*InMemoryQueryCache)(nil)
