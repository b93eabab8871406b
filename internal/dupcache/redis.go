package dupcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"tagdock/internal/config"
	"tagdock/internal/fingerprint"
)

// RedisCache is the Redis-backed volatile tier. Entries are JSON values
// keyed by fingerprint under a configurable prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache constructs a Redis volatile tier from config.
func NewRedisCache(cfg config.Redis) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisCache{client: client, prefix: cfg.KeyPrefix}
}

// Get fetches a cached entry. A missing key is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, fp fingerprint.Digest) (*Entry, error) {
	raw, err := c.client.Get(ctx, c.key(fp)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("decode cached entry: %w", err)
	}
	return &entry, nil
}

// Set stores an entry as JSON. No expiry: the store remains the source of
// truth and stale entries are repaired by the replacement workflow.
func (c *RedisCache) Set(ctx context.Context, fp fingerprint.Digest, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.key(fp), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a cached entry.
func (c *RedisCache) Delete(ctx context.Context, fp fingerprint.Digest) error {
	if err := c.client.Del(ctx, c.key(fp)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(fp fingerprint.Digest) string {
	return c.prefix + fp.String()
}
