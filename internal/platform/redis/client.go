package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"librisync/internal/platform/config"
)

// Client wraps the go-redis client with the small surface the services need
// beyond raw commands: health probing and cache statistics.
type Client struct {
	*redis.Client
}

// New creates a Redis client from configuration and verifies the connection.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// CachedKeys reports the number of keys in the cache database. The /metrics
// endpoints expose this count.
func (c *Client) CachedKeys(ctx context.Context) (int64, error) {
	n, err := c.DBSize(ctx).Result()
	if err != nil {
		return 0, fmt.Errorf("redis dbsize: %w", err)
	}
	return n, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}
