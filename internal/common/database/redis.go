// internal/common/database/redis.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reportdesk/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("redis: key not found")

// RedisClient wraps the Redis client and namespaces every key with a prefix.
type RedisClient struct {
	Client    *redis.Client
	keyPrefix string
}

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     2,
	})

	return &RedisClient{Client: rdb, keyPrefix: cfg.KeyPrefix}, nil
}

// NewRedisFromClient wraps an existing client, e.g. one pointed at miniredis or a redismock.
func NewRedisFromClient(rdb *redis.Client, keyPrefix string) *RedisClient {
	return &RedisClient{Client: rdb, keyPrefix: keyPrefix}
}

// Key returns the namespaced form of name.
func (c *RedisClient) Key(name string) string {
	return c.keyPrefix + name
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// Get retrieves the value stored under name. A missing key yields ErrNotFound.
func (c *RedisClient) Get(ctx context.Context, name string) (string, error) {
	val, err := c.Client.Get(ctx, c.Key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

// Set stores value under name; zero expiration keeps it until deleted.
func (c *RedisClient) Set(ctx context.Context, name string, value interface{}, expiration time.Duration) error {
	return c.Client.Set(ctx, c.Key(name), value, expiration).Err()
}

// Del deletes one or more keys
func (c *RedisClient) Del(ctx context.Context, names ...string) error {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = c.Key(n)
	}
	return c.Client.Del(ctx, keys...).Err()
}
