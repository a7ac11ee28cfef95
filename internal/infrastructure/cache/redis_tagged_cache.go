package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTaggedCache implements TaggedCache using Redis
// This is suitable for distributed deployments where multiple instances
// need to share cached validation and split results
type RedisTaggedCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTaggedCache creates a new Redis-based tagged cache
func NewRedisTaggedCache(cfg RedisConfig) (*RedisTaggedCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTaggedCache{
		client:    client,
		keyPrefix: "ams:cache:",
	}, nil
}

// NewRedisTaggedCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisTaggedCacheWithClient(client *redis.Client, keyPrefix string) *RedisTaggedCache {
	if keyPrefix == "" {
		keyPrefix = "ams:cache:"
	}
	return &RedisTaggedCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached value and whether it was present
func (c *RedisTaggedCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, true, nil
}

// Set stores a value with a TTL and associates it with the given tags.
// Tag membership sets are unbounded by TTL; stale members are skipped on
// invalidation because their value keys have already expired.
func (c *RedisTaggedCache) Set(ctx context.Context, key, value string, ttl time.Duration, tags ...string) error {
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.keyPrefix+key, value, ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, c.tagKey(tag), key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// InvalidateTag removes all entries associated with a tag
func (c *RedisTaggedCache) InvalidateTag(ctx context.Context, tag string) error {
	members, err := c.client.SMembers(ctx, c.tagKey(tag)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to read tag members: %w", err)
	}

	pipe := c.client.TxPipeline()
	for _, member := range members {
		pipe.Del(ctx, c.keyPrefix+member)
	}
	pipe.Del(ctx, c.tagKey(tag))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate tag: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisTaggedCache) Close() error {
	return c.client.Close()
}

func (c *RedisTaggedCache) tagKey(tag string) string {
	return c.keyPrefix + "tag:" + tag
}

// Ensure RedisTaggedCache implements TaggedCache
var _ TaggedCache = (*RedisTaggedCache)(nil)
