package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/minauth/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores serialized credentials in Redis with per-key TTL.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects a cache to the given Redis address.
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewRedisCacheFromClient wraps an existing client. Useful for tests.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, id string) (*models.Credential, error) {
	data, err := c.client.Get(ctx, id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	cred := &models.Credential{}
	if err := cred.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}

	return cred, nil
}

func (c *RedisCache) Set(ctx context.Context, id string, cred *models.Credential, ttl time.Duration) error {
	if err := c.client.Set(ctx, id, cred, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, id).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
