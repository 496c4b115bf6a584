package minio

import (
	"context"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"ResuMatch/internal/config"
)

// Client wraps the MinIO client backing the resume upload archive.
type Client struct {
	MinIO  *minio.Client
	Bucket string
}

// NewClient connects to MinIO and makes sure the archive bucket exists.
func NewClient(ctx context.Context, cfg config.MinIOConfig) (*Client, error) {
	c, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := c.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("MinIO bucket check failed: %w", err)
	}
	if !exists {
		if err := c.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create MinIO bucket '%s': %w", cfg.Bucket, err)
		}
		log.Printf("✅ Created MinIO bucket '%s'.", cfg.Bucket)
	}

	log.Println("✅ Connected to MinIO!")
	return &Client{MinIO: c, Bucket: cfg.Bucket}, nil
}

// Upload stores a local file under the given object name, returning the
// object's size.
func (c *Client) Upload(ctx context.Context, objectName, filePath, contentType string) (int64, error) {
	info, err := c.MinIO.FPutObject(ctx, c.Bucket, objectName, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upload '%s' to MinIO: %w", objectName, err)
	}
	return info.Size, nil
}

// HealthCheck lists buckets to verify connectivity and credentials.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.MinIO == nil {
		return fmt.Errorf("minio client is not initialized")
	}
	if _, err := c.MinIO.ListBuckets(ctx); err != nil {
		return fmt.Errorf("MinIO health check failed: %w", err)
	}
	return nil
}
