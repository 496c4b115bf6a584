package kafka

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"

	"ResuMatch/internal/config"
)

// Client holds the administrative Kafka connection and the broker config.
// Topic writers are created per publisher.
type Client struct {
	Conn   *kafka.Conn
	Config config.KafkaConfig
}

// NewClient dials the first broker and creates the configured topic if it does
// not exist yet.
func NewClient(cfg config.KafkaConfig) (*Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no Kafka brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("no Kafka topic configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers[0])
	if err != nil {
		return nil, fmt.Errorf("failed to dial Kafka: %w", err)
	}

	partitions, err := conn.ReadPartitions()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read Kafka partitions: %w", err)
	}

	exists := false
	for _, p := range partitions {
		if p.Topic == cfg.Topic {
			exists = true
			break
		}
	}

	if !exists {
		log.Printf("Kafka topic '%s' does not exist, creating it...", cfg.Topic)
		err = conn.CreateTopics(kafka.TopicConfig{
			Topic:             cfg.Topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create Kafka topic '%s': %w", cfg.Topic, err)
		}
	}

	log.Println("✅ Connected to Kafka!")
	return &Client{Conn: conn, Config: cfg}, nil
}

// Close closes the administrative connection.
func (c *Client) Close() error {
	if c == nil || c.Conn == nil {
		return nil
	}
	if err := c.Conn.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka connection: %w", err)
	}
	return nil
}

// HealthCheck asks the cluster for its controller.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c == nil || c.Conn == nil {
		return fmt.Errorf("kafka client is not initialized")
	}
	_, err := c.Conn.Controller()
	return err
}

// ControllerAddress returns the host:port of the cluster controller.
func (c *Client) ControllerAddress() (string, error) {
	if c == nil || c.Conn == nil {
		return "", fmt.Errorf("kafka client is not initialized")
	}
	controller, err := c.Conn.Controller()
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)), nil
}
