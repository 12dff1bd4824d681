package cache

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/lborres/wanderlust/core"
)

const (
	defaultTTL     = 5 * time.Minute
	defaultMaxSize = 500
)

var _ core.CacheWithStats = (*InMemoryCache)(nil)

// InMemoryCache implements a size-bounded session cache with per-entry TTL.
// Least recently used entries are evicted once MaxSize is reached.
type InMemoryCache struct {
	lru *expirable.LRU[string, *core.Session]
	ttl time.Duration

	// counters
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64
}

// NewInMemoryCache creates a new in-memory cache
func NewInMemoryCache(c core.CacheConfig) *InMemoryCache {
	if c.TTL <= 0 {
		c.TTL = defaultTTL
	}
	if c.MaxSize <= 0 {
		c.MaxSize = defaultMaxSize
	}

	cache := &InMemoryCache{ttl: c.TTL}
	// The callback also fires for explicit removals; Delete and Clear
	// compensate so evictions only counts capacity and TTL drops.
	cache.lru = expirable.NewLRU(c.MaxSize, func(string, *core.Session) {
		cache.evictions.Add(1)
	}, c.TTL)

	return cache
}

// Get retrieves a session from cache
func (c *InMemoryCache) Get(tokenHash string) (*core.Session, error) {
	session, ok := c.lru.Get(tokenHash)
	if !ok {
		c.misses.Add(1)
		return nil, core.ErrCacheNotFound
	}

	c.hits.Add(1)
	return session, nil
}

// Set stores a session in cache
func (c *InMemoryCache) Set(tokenHash string, session *core.Session) error {
	c.lru.Add(tokenHash, session)
	c.sets.Add(1)
	return nil
}

// Delete removes a session from cache
func (c *InMemoryCache) Delete(tokenHash string) error {
	if c.lru.Remove(tokenHash) {
		c.evictions.Add(-1)
		c.deletes.Add(1)
	}
	return nil
}

// Clear removes all sessions from cache
func (c *InMemoryCache) Clear() error {
	n := c.lru.Len()
	c.lru.Purge()
	c.evictions.Add(-int64(n))
	return nil
}

// Len returns the number of cached sessions
func (c *InMemoryCache) Len() int {
	return c.lru.Len()
}

// Stats returns cache statistics
func (c *InMemoryCache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sets:      c.sets.Load(),
		Deletes:   c.deletes.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
