package total

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	platformredis "pledge/internal/platform/redis"
	"pledge/pkg/platform/sentinel"
)

// Cache stores the running total under a single key. Add is add-if-absent so
// concurrent repopulations after expiry do not overwrite each other; the
// first writer wins and every caller still returns its own computed sum.
type Cache interface {
	Get(ctx context.Context) (int64, error)
	Add(ctx context.Context, total int64, ttl time.Duration) error
}

const cacheKey = "pledge:total"

// RedisCache backs the total cache with Redis.
type RedisCache struct {
	client *platformredis.Client
}

func NewRedisCache(client *platformredis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context) (int64, error) {
	val, err := c.client.Get(ctx, cacheKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, sentinel.ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("get cached total: %w", err)
	}
	return val, nil
}

func (c *RedisCache) Add(ctx context.Context, total int64, ttl time.Duration) error {
	if err := c.client.SetNX(ctx, cacheKey, total, ttl).Err(); err != nil {
		return fmt.Errorf("populate total cache: %w", err)
	}
	return nil
}

// MemoryCache is a single-entry TTL cache for tests and cache-less runs.
type MemoryCache struct {
	mu      sync.Mutex
	set     bool
	value   int64
	expires time.Time
	clock   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{clock: time.Now}
}

// WithClock overrides the time source. Test helper.
func (c *MemoryCache) WithClock(clock func() time.Time) *MemoryCache {
	c.clock = clock
	return c
}

func (c *MemoryCache) Get(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.set || c.clock().After(c.expires) {
		c.set = false
		return 0, sentinel.ErrCacheMiss
	}
	return c.value, nil
}

func (c *MemoryCache) Add(_ context.Context, total int64, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.set && c.clock().Before(c.expires) {
		return nil
	}
	c.set = true
	c.value = total
	c.expires = c.clock().Add(ttl)
	return nil
}
