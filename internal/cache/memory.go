package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache implements in-process caching. Entries live for one run only.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Remember stores value under key unless the key is already present. It returns the
// stored value and whether it was there before; concurrent callers agree on one winner.
func (c *MemoryCache) Remember(key string, value any) (any, bool) {
	if err := c.cache.Add(key, value, gocache.DefaultExpiration); err == nil {
		return value, false
	}
	if existing, found := c.cache.Get(key); found {
		return existing, true
	}
	// Expired between Add and Get
	c.cache.Set(key, value, gocache.DefaultExpiration)
	return value, false
}

// Len returns the number of cached entries
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}
