package assetdb

import (
	"sync"

	"udk-migrate/internal/asset"
)

// Cache is a concurrency-safe Locator that memoizes successful resolutions.
// Failures are never cached so a fixed source tree is picked up on retry.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*asset.Loaded
	next  Locator
}

// NewCache wraps next.
func NewCache(next Locator) *Cache {
	return &Cache{
		items: make(map[string]*asset.Loaded),
		next:  next,
	}
}

// Resolve returns the cached asset or resolves and stores it.
func (c *Cache) Resolve(s string) (*asset.Loaded, error) {
	ref, err := asset.ParseReference(s)
	if err != nil {
		return nil, err
	}
	key := ref.Key()

	if a, ok := c.lookup(key); ok {
		return a, nil
	}
	a, err := c.next.Resolve(s)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// a concurrent resolve of the same key may have won
	if won, ok := c.items[key]; ok {
		return won, nil
	}
	c.items[key] = a
	return a, nil
}

func (c *Cache) lookup(key string) (*asset.Loaded, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.items[key]
	return a, ok
}

// Len reports how many assets are memoized.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge drops every cached asset.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.items = make(map[string]*asset.Loaded)
	c.mu.Unlock()
}
