package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the key-value store connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Client wraps the Redis client used as the process-wide key-value store.
type Client struct {
	rdb *redis.Client
}

// New creates a key-value store client. The connection is lazy; use Ping to
// verify reachability.
func New(opts Options) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return &Client{rdb: rdb}
}

// FromRedis wraps an existing Redis client; intended for tests.
func FromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Ping tests the connection.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Incr atomically increments the integer at key and returns the new value.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

// GetInt64 reads the integer at key. A missing key reads as zero.
func (c *Client) GetInt64(ctx context.Context, key string) (int64, error) {
	val, err := c.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}
