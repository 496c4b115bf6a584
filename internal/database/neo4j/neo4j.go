package neo4j

import (
	"context"
	"fmt"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"ResuMatch/internal/config"
)

// Client wraps the Neo4j driver backing the candidate skill graph.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
}

// NewClient creates the driver and verifies connectivity.
func NewClient(ctx context.Context, cfg config.Neo4jConfig) (*Client, error) {
	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")

	driver, err := neo4j.NewDriverWithContext(cfg.Uri, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to Neo4j: %w", err)
	}

	log.Println("✅ Connected to Neo4j!")
	return &Client{Driver: driver, Database: cfg.Database}, nil
}

// Session opens a session against the configured database.
func (c *Client) Session(ctx context.Context) neo4j.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.Database})
}

// ExecuteWrite runs the work function inside a managed write transaction.
// Results must be fully consumed inside the function.
func (c *Client) ExecuteWrite(ctx context.Context, work func(tx neo4j.ManagedTransaction) (interface{}, error)) (interface{}, error) {
	session := c.Session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, work)
	if err != nil {
		return nil, fmt.Errorf("neo4j write transaction failed: %w", err)
	}
	return result, nil
}

// ExecuteRead runs the work function inside a managed read transaction.
// Results must be fully consumed inside the function.
func (c *Client) ExecuteRead(ctx context.Context, work func(tx neo4j.ManagedTransaction) (interface{}, error)) (interface{}, error) {
	session := c.Session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, work)
	if err != nil {
		return nil, fmt.Errorf("neo4j read transaction failed: %w", err)
	}
	return result, nil
}

// Close shuts the driver down.
func (c *Client) Close(ctx context.Context) {
	if c.Driver != nil {
		if err := c.Driver.Close(ctx); err != nil {
			log.Printf("failed to close Neo4j driver: %v", err)
		}
	}
}

// HealthCheck verifies connectivity.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.Driver == nil {
		return fmt.Errorf("neo4j client is not initialized")
	}
	return c.Driver.VerifyConnectivity(ctx)
}
