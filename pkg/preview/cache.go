package preview

import (
	"sync"

	"github.com/goliatone/go-sitepreview/internal/merge"
)

// Cache persists the edit patch between sessions, keyed by the store's cache
// key. Implementations are best-effort collaborators: the store logs and
// swallows their errors, and operating without one degrades to in-memory
// only operation.
type Cache interface {
	Save(key string, patch map[string]any) error
	Delete(key string) error
}

// MemoryCache is an in-process Cache, used in tests and as the graceful
// fallback when durable storage is unavailable.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]map[string]any
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]map[string]any{}}
}

// Save stores a deep copy of patch under key.
func (c *MemoryCache) Save(key string, patch map[string]any) error {
	cloned := make(map[string]any, len(patch))
	for k, v := range patch {
		cloned[k] = merge.Clone(v)
	}
	c.mu.Lock()
	c.entries[key] = cloned
	c.mu.Unlock()
	return nil
}

// Delete removes the entry for key.
func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Get returns the stored patch for key.
func (c *MemoryCache) Get(key string) (map[string]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	patch, ok := c.entries[key]
	return patch, ok
}
