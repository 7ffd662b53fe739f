package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/minauth/internal/server/models"
)

type memoryEntry struct {
	cred      models.Credential
	expiresAt time.Time
}

// MemoryCache is a process-local Cache used in tests and as a fallback when
// no Redis address is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now is a test seam for expiry checks.
	now func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, id string) (*models.Credential, error) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, ErrCacheMiss
	}

	cred := entry.cred
	return &cred, nil
}

func (c *MemoryCache) Set(_ context.Context, id string, cred *models.Credential, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = memoryEntry{cred: *cred, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}
