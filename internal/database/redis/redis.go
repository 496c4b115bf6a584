package redis

import (
	"context"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"

	"ResuMatch/internal/config"
)

// Client wraps the go-redis client used by the embedding cache.
type Client struct {
	RDB *redis.Client
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("✅ Connected to Redis!")
	return &Client{RDB: rdb}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.RDB != nil {
		return c.RDB.Close()
	}
	return nil
}

// HealthCheck pings Redis.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.RDB == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return c.RDB.Ping(ctx).Err()
}
