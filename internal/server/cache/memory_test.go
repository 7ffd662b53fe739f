package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/minauth/internal/server/models"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	cred := &models.Credential{ID: "u1", Salt: "s1", PasswordHash: "h1"}
	require.NoError(t, c.Set(ctx, "u1", cred, time.Minute))

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, cred, got)
}

func TestMemoryCache_MissOnAbsent(t *testing.T) {
	c := NewMemoryCache()

	_, err := c.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_ExpiredTreatedAsMiss(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }

	cred := &models.Credential{ID: "u1"}
	require.NoError(t, c.Set(ctx, "u1", cred, time.Second))

	// before expiry
	_, err := c.Get(ctx, "u1")
	require.NoError(t, err)

	// after expiry the entry is treated as absent, never served stale
	c.now = func() time.Time { return base.Add(2 * time.Second) }
	_, err = c.Get(ctx, "u1")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "u1", &models.Credential{ID: "u1"}, time.Minute))
	require.NoError(t, c.Delete(ctx, "u1"))

	_, err := c.Get(ctx, "u1")
	require.ErrorIs(t, err, ErrCacheMiss)

	// deleting an absent key is not an error
	require.NoError(t, c.Delete(ctx, "ghost"))
}

func TestMemoryCache_GetReturnsCopy(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "u1", &models.Credential{ID: "u1", Salt: "s1"}, time.Minute))

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	got.Salt = "mutated"

	again, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "s1", again.Salt)
}

func TestMemoryCache_ConcurrentLastWriterWins(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	// all writers store the same durable record, concurrent population is fine
	cred := &models.Credential{ID: "u1", Salt: "s1", PasswordHash: "h1"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "u1", cred, time.Minute)
			_, _ = c.Get(ctx, "u1")
		}()
	}
	wg.Wait()

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, cred, got)
}
