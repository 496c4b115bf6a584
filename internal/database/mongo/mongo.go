package mongo

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ResuMatch/internal/config"
)

// Client wraps the MongoDB client backing the match-run history.
type Client struct {
	Mongo    *mongo.Client
	Database string
}

// NewClient connects to MongoDB and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" && cfg.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := c.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Println("✅ Connected to MongoDB!")
	return &Client{Mongo: c, Database: cfg.Database}, nil
}

// Collection returns a handle to a collection in the configured database.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.Mongo.Database(c.Database).Collection(name)
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	if c.Mongo != nil {
		return c.Mongo.Disconnect(ctx)
	}
	return nil
}

// HealthCheck pings MongoDB.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.Mongo == nil {
		return fmt.Errorf("mongodb client is not initialized")
	}
	return c.Mongo.Ping(ctx, nil)
}
