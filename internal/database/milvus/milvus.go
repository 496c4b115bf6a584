package milvus

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"ResuMatch/internal/config"
)

// Client wraps the Milvus SDK client together with collection lifecycle
// helpers. Collection schemas are owned by the callers; this wrapper only
// knows how to create, index, load, flush and drop them.
type Client struct {
	Client client.Client
	cfg    config.MilvusConfig

	cancelAutoFlush context.CancelFunc
}

// NewClient connects to Milvus at the configured address.
func NewClient(ctx context.Context, cfg config.MilvusConfig) (*Client, error) {
	c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Milvus: %w", err)
	}
	log.Println("✅ Connected to Milvus!")
	return &Client{Client: c, cfg: cfg}, nil
}

// Close stops the auto-flush task and closes the connection.
func (c *Client) Close() {
	if c.Client != nil {
		c.StopAutoFlush(context.Background())
		c.Client.Close()
		log.Println("ℹ️ Milvus connection closed.")
	}
}

// HealthCheck verifies the connection by listing collections.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("milvus client is nil")
	}
	if _, err := c.Client.ListCollections(ctx); err != nil {
		return fmt.Errorf("milvus health check failed: %w", err)
	}
	return nil
}

// EnsureCollection creates the collection with the given schema if it does not
// exist, builds the configured index on vectorField, and loads the collection
// into memory. Calling it for an existing collection only loads it.
func (c *Client) EnsureCollection(ctx context.Context, schema *entity.Schema, vectorField string, idxCfg config.IndexConfig) error {
	collName := schema.CollectionName
	exists, err := c.Client.HasCollection(ctx, collName)
	if err != nil {
		return fmt.Errorf("failed to check collection '%s': %w", collName, err)
	}

	if !exists {
		if err := c.Client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection '%s': %w", collName, err)
		}
		idx, err := buildIndex(idxCfg)
		if err != nil {
			return err
		}
		if err := c.Client.CreateIndex(ctx, collName, vectorField, idx, false); err != nil {
			return fmt.Errorf("failed to create index on '%s.%s': %w", collName, vectorField, err)
		}
		log.Printf("✅ Created collection '%s' with %s index.", collName, idxCfg.IndexType)
	}

	if err := c.Client.LoadCollection(ctx, collName, false); err != nil {
		return fmt.Errorf("failed to load collection '%s': %w", collName, err)
	}
	return nil
}

// Delete removes rows matching the boolean expression from the collection.
func (c *Client) Delete(ctx context.Context, collName, expr string) error {
	if err := c.Client.Delete(ctx, collName, "", expr); err != nil {
		return fmt.Errorf("failed to delete from '%s' where %s: %w", collName, expr, err)
	}
	return nil
}

// DropCollection removes the collection entirely. Dropping a collection that
// does not exist is not an error.
func (c *Client) DropCollection(ctx context.Context, collName string) error {
	exists, err := c.Client.HasCollection(ctx, collName)
	if err != nil {
		return fmt.Errorf("failed to check collection '%s': %w", collName, err)
	}
	if !exists {
		return nil
	}
	if err := c.Client.DropCollection(ctx, collName); err != nil {
		return fmt.Errorf("failed to drop collection '%s': %w", collName, err)
	}
	return nil
}

// Flush persists pending inserts of the collection.
func (c *Client) Flush(ctx context.Context, collName string) error {
	if err := c.Client.Flush(ctx, collName, false); err != nil {
		return fmt.Errorf("failed to flush collection '%s': %w", collName, err)
	}
	return nil
}

// StartAutoFlush launches a background task flushing the given collections on
// a fixed interval. A second call while the task runs is a no-op.
func (c *Client) StartAutoFlush(interval time.Duration, collections ...string) {
	if c.cancelAutoFlush != nil {
		log.Println("⚠️ Auto-flush task is already running.")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelAutoFlush = cancel

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log.Printf("🚀 Auto-flush started, flushing %d collection(s) every %s.", len(collections), interval)

		for {
			select {
			case <-ctx.Done():
				log.Println("ℹ️ Auto-flush task stopped.")
				return
			case <-ticker.C:
				for _, coll := range collections {
					flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
					if err := c.Client.Flush(flushCtx, coll, false); err != nil {
						log.Printf("❌ Auto-flush of collection '%s' failed: %v", coll, err)
					}
					flushCancel()
				}
			}
		}
	}()
}

// StopAutoFlush cancels the background task. The final flush is left to the
// callers that know which collections still have pending writes.
func (c *Client) StopAutoFlush(ctx context.Context) {
	if c.cancelAutoFlush != nil {
		c.cancelAutoFlush()
		c.cancelAutoFlush = nil
	}
}

// buildIndex constructs the vector index entity from the config.
func buildIndex(idxCfg config.IndexConfig) (entity.Index, error) {
	metricType := entity.MetricType(idxCfg.MetricType)

	intParam := func(name string, def int) int {
		if v, ok := idxCfg.Params[name].(int); ok {
			return v
		}
		return def
	}

	switch idxCfg.IndexType {
	case "IVF_FLAT":
		return entity.NewIndexIvfFlat(metricType, intParam("nlist", 128))
	case "HNSW":
		return entity.NewIndexHNSW(metricType, intParam("M", 8), intParam("efConstruction", 96))
	case "IVF_SQ8":
		return entity.NewIndexIvfSQ8(metricType, intParam("nlist", 128))
	case "IVF_PQ":
		return entity.NewIndexIvfPQ(metricType, intParam("nlist", 128), intParam("m", 16), intParam("nbits", 8))
	case "AUTOINDEX":
		return entity.NewIndexAUTOINDEX(metricType)
	default:
		return nil, fmt.Errorf("unsupported index type: %s", idxCfg.IndexType)
	}
}
