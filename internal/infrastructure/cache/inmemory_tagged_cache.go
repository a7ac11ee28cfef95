package cache

import (
	"context"
	"sync"
	"time"
)

// taggedEntry represents a stored value with expiration and tags
type taggedEntry struct {
	value     string
	expiresAt time.Time
	tags      []string
}

// InMemoryTaggedCache implements TaggedCache using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryTaggedCache struct {
	mu        sync.RWMutex
	entries   map[string]taggedEntry
	tagIndex  map[string]map[string]struct{}
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryTaggedCache creates a new in-memory tagged cache
// It starts a background goroutine to clean up expired entries
func NewInMemoryTaggedCache() *InMemoryTaggedCache {
	cache := &InMemoryTaggedCache{
		entries:  make(map[string]taggedEntry),
		tagIndex: make(map[string]map[string]struct{}),
		stopChan: make(chan struct{}),
	}

	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get returns the cached value and whether it was present
func (c *InMemoryTaggedCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists {
		return "", false, nil
	}
	if time.Now().After(e.expiresAt) {
		return "", false, nil // Expired, treat as absent
	}
	return e.value, true, nil
}

// Set stores a value with a TTL and associates it with the given tags
func (c *InMemoryTaggedCache) Set(ctx context.Context, key, value string, ttl time.Duration, tags ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropFromTagIndex(key)
	c.entries[key] = taggedEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
		tags:      tags,
	}
	for _, tag := range tags {
		if c.tagIndex[tag] == nil {
			c.tagIndex[tag] = make(map[string]struct{})
		}
		c.tagIndex[tag][key] = struct{}{}
	}
	return nil
}

// InvalidateTag removes all entries associated with a tag
func (c *InMemoryTaggedCache) InvalidateTag(ctx context.Context, tag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.tagIndex[tag] {
		c.dropFromTagIndex(key)
		delete(c.entries, key)
	}
	delete(c.tagIndex, tag)
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (c *InMemoryTaggedCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// dropFromTagIndex removes a key from all tag sets. Caller must hold the lock.
func (c *InMemoryTaggedCache) dropFromTagIndex(key string) {
	e, exists := c.entries[key]
	if !exists {
		return
	}
	for _, tag := range e.tags {
		delete(c.tagIndex[tag], key)
		if len(c.tagIndex[tag]) == 0 {
			delete(c.tagIndex, tag)
		}
	}
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryTaggedCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryTaggedCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			c.dropFromTagIndex(key)
			delete(c.entries, key)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryTaggedCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryTaggedCache implements TaggedCache
var _ TaggedCache = (*InMemoryTaggedCache)(nil)
