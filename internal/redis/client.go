package redis

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client shared by the live store and the engagement stream.
// One client per process so both reuse the same connection pool.
type Client struct {
	*redis.Client
}

// NewClient creates a Redis client from the given URL and verifies it answers.
// URL format: redis://[:password@]host:port[/db]
func NewClient(ctx context.Context, redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	c := &Client{Client: redis.NewClient(opts)}
	if err := c.Ping(ctx); err != nil {
		c.Client.Close()
		return nil, err
	}

	log.Printf("[Redis] Connected to %s db=%d", opts.Addr, opts.DB)
	return c, nil
}

// Ping verifies the connection to Redis.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}
