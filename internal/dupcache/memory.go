package dupcache

import (
	"context"
	"sync"

	"tagdock/internal/fingerprint"
)

// MemoryCache is an in-process volatile tier used when Redis is disabled and
// by tests. Contents do not survive a restart, which the tiered cache
// tolerates by design.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[fingerprint.Digest]Entry
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[fingerprint.Digest]Entry)}
}

func (c *MemoryCache) Get(ctx context.Context, fp fingerprint.Digest) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.entries[fp]; ok {
		cp := entry
		return &cp, nil
	}
	return nil, nil
}

func (c *MemoryCache) Set(ctx context.Context, fp fingerprint.Digest, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fp] = entry
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, fp fingerprint.Digest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, fp)
	return nil
}

// Len reports the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
