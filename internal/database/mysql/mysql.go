package mysql

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"ResuMatch/internal/config"
)

// Client wraps the GORM database handle backing the candidate catalog.
type Client struct {
	DB *gorm.DB
}

// NewClient opens the MySQL connection and configures the pool.
func NewClient(cfg config.MySQLConfig) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Address,
		cfg.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access the underlying SQL DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	log.Println("✅ Connected to MySQL!")
	return &Client{DB: db}, nil
}

// Close closes the connection pool.
func (c *Client) Close() error {
	if c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access the underlying SQL DB: %w", err)
	}
	return sqlDB.Close()
}

// HealthCheck pings the database.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.DB == nil {
		return fmt.Errorf("mysql client is not initialized")
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access the underlying SQL DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
