package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"ResuMatch/internal/models"
)

// IndexEventPublisher publishes indexing lifecycle events so downstream
// consumers can follow the progress of long-running index runs.
type IndexEventPublisher struct {
	writer *kafka.Writer
}

// NewIndexEventPublisher creates a publisher writing to the configured topic.
func NewIndexEventPublisher(client *Client) (*IndexEventPublisher, error) {
	if client == nil {
		return nil, fmt.Errorf("kafka client is not initialized")
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      client.Config.Brokers,
		Topic:        client.Config.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	})

	return &IndexEventPublisher{writer: writer}, nil
}

// Publish sends one index event. Events for the same file share a key so they
// land on the same partition in order.
func (p *IndexEventPublisher) Publish(ctx context.Context, entry *models.IndexLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal index event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(entry.Filename),
		Value: jsonData,
	})
	if err != nil {
		return fmt.Errorf("failed to write index event to kafka: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *IndexEventPublisher) Close() error {
	return p.writer.Close()
}
