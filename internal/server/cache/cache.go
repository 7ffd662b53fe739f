// Package cache provides the credential verification cache sitting in front
// of the durable credential store. Entries carry a bounded lifetime; an entry
// older than its lifetime is treated as absent, never served stale.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/minauth/internal/server/models"
)

// ErrCacheMiss is returned when no live entry exists for the key.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the credential cache boundary. Implementations tolerate
// concurrent last-writer-wins updates: every writer fetched the same durable
// record, so there is no staleness window beyond the TTL.
type Cache interface {
	// Get returns the cached credential or ErrCacheMiss.
	Get(ctx context.Context, id string) (*models.Credential, error)

	// Set stores the credential with a fresh expiry.
	Set(ctx context.Context, id string, cred *models.Credential, ttl time.Duration) error

	// Delete drops the entry if present. Used by the loader to invalidate
	// updated credentials ahead of their TTL.
	Delete(ctx context.Context, id string) error
}
