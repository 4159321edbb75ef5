package session

import (
	"context"
	"sync"
	"time"

	"github.com/tripnest/tripnest/internal/identity"
)

// IdentityCache remembers which user a token resolved to, so that a token
// seen by one web replica doesn't cost a backend round-trip on the next.
// Keys are token fingerprints, never raw tokens.
type IdentityCache interface {
	Get(ctx context.Context, key string) (identity.User, bool, error)
	Set(ctx context.Context, key string, u identity.User, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// MemoryCache is a process-local IdentityCache.
type MemoryCache struct {
	mu  sync.RWMutex
	m   map[string]cacheEntry
	now func() time.Time
}

type cacheEntry struct {
	user identity.User
	exp  time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[string]cacheEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (identity.User, bool, error) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return identity.User{}, false, nil
	}

	if !now.Before(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return identity.User{}, false, nil
	}
	return e.user, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, u identity.User, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	c.m[key] = cacheEntry{user: u, exp: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

// Len reports the number of entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
