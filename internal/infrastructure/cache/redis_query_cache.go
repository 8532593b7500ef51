package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/clivox/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisQueryCache implements QueryCache backed by Redis. Suitable when
// several backend instances share one database and must see each
// other's invalidations.
type RedisQueryCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisQueryCache creates a Redis-backed query cache from configuration
func NewRedisQueryCache(cfg *config.RedisConfig) (*RedisQueryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewRedisQueryCacheWithClient(client), nil
}

// NewRedisQueryCacheWithClient creates a query cache on an existing Redis client
func NewRedisQueryCacheWithClient(client *redis.Client) *RedisQueryCache {
	return &RedisQueryCache{
		client:    client,
		keyPrefix: "clivox:",
	}
}

// Get implements QueryCache
func (c *RedisQueryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache key %s: %w", key, err)
	}
	return data, true, nil
}

// Set implements QueryCache
func (c *RedisQueryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("writing cache key %s: %w", key, err)
	}
	return nil
}

// Invalidate implements QueryCache
func (c *RedisQueryCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = c.keyPrefix + key
	}
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("invalidating cache keys: %w", err)
	}
	return nil
}

// Close implements QueryCache
func (c *RedisQueryCache) Close() error {
	return c.client.Close()
}

var _ QueryCache = (*RedisQueryCache)(nil)
