// Package cache memoizes decisions under version-qualified keys.
//
// The resource version is part of the key, so a mutation produces a miss on
// the next lookup instead of requiring explicit invalidation: a superseded
// entry can never be served, with or without eviction. The TTL and the size
// bound only keep dead entries from accumulating.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xbcsmith/xzepr-sub005/types"
)

const (
	defaultSize = 16384
	defaultTTL  = 5 * time.Minute
)

// Key identifies one decision: who, doing what, to which resource, at which
// version of its ownership and membership facts.
type Key struct {
	UserID     types.UserID
	Action     types.Action
	ResourceID types.ResourceID
	Version    uint64
}

// KeyFor builds the cache key for a request decided against the given version
func KeyFor(req types.Request, version uint64) Key {
	return Key{
		UserID:     req.Subject.UserID,
		Action:     req.Action,
		ResourceID: req.Resource.ID,
		Version:    version,
	}
}

// Cache is a concurrent, TTL-bounded decision cache.
// Safe for use by all requests of a process; reads do not block each other.
type Cache struct {
	entries *lru.LRU[Key, types.Decision]
}

// New creates a Cache holding at most size entries for at most ttl each.
// Non-positive arguments fall back to the defaults.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = defaultSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{entries: lru.NewLRU[Key, types.Decision](size, nil, ttl)}
}

// Get returns the decision stored under key, if any.
// A key carrying a superseded version is simply never asked for again, so a
// hit is always consistent with the version the caller just read.
func (c *Cache) Get(key Key) (types.Decision, bool) {
	return c.entries.Get(key)
}

// Put stores a freshly computed decision under key
func (c *Cache) Put(key Key, d types.Decision) {
	c.entries.Add(key, d)
}

// Len returns the number of live entries
func (c *Cache) Len() int {
	return c.entries.Len()
}
