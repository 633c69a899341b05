// Package memory provides an in-memory implementation of the cache store.
// It serves development and testing setups and deployments that prefer a
// process-local cache over a persistent one.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/klartext/klartext/internal/core/domain"
	"github.com/klartext/klartext/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.CacheStore = (*Cache)(nil)

// Cache is an in-memory cache of verified simplification results.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
}

// NewCache creates a new in-memory cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]domain.CacheEntry),
	}
}

// Lookup returns the entry for a fingerprint.
// Expired entries are treated as misses.
func (c *Cache) Lookup(_ context.Context, fingerprint string) (domain.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[fingerprint]
	if !ok || entry.Expired(time.Now()) {
		return domain.CacheEntry{}, domain.ErrCacheMiss
	}
	return entry, nil
}

// Store saves an entry. Storing the same fingerprint twice converges to the
// latest write.
func (c *Cache) Store(_ context.Context, entry domain.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Fingerprint] = entry
	return nil
}

// Purge removes expired entries and returns the number removed.
func (c *Cache) Purge(_ context.Context, now time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for fp, entry := range c.entries {
		if entry.Expired(now) {
			delete(c.entries, fp)
			removed++
		}
	}
	return removed, nil
}

// InvalidateBelow removes all entries with a policy version lower than the
// given one and returns the number removed.
func (c *Cache) InvalidateBelow(_ context.Context, policyVersion int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for fp, entry := range c.entries {
		if entry.PolicyVersion < policyVersion {
			delete(c.entries, fp)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of live and expired entries currently held.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close releases resources.
func (c *Cache) Close() error {
	return nil
}
