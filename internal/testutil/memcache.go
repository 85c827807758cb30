package testutil

import (
	"sync"
	"time"

	"github.com/nmartinez/oddsedge/pkg/cache"
)

// MemCache is a synchronous map-backed cache.Cache. Unlike Ristretto it
// makes writes visible immediately, which keeps tests deterministic.
type MemCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

// NewMemCache creates an empty cache.
func NewMemCache() *MemCache {
	return &MemCache{items: make(map[string]interface{})}
}

func (c *MemCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *MemCache) Set(key string, value interface{}, _ time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return true
}

func (c *MemCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *MemCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]interface{})
}

func (c *MemCache) Close() {}

var _ cache.Cache = (*MemCache)(nil)
