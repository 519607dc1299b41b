package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and verifies the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Snapshotter returns a store snapshot backend kept under snapshot:<name>
func (c *Client) Snapshotter(name string) *Snapshotter {
	return &Snapshotter{client: c, key: fmt.Sprintf("snapshot:%s", name)}
}

// Snapshotter stores a whole-store snapshot in one Redis string key
type Snapshotter struct {
	client *Client
	key    string
}

// Load returns nil when the key does not exist
func (s *Snapshotter) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get snapshot failed: %w", err)
	}
	return data, nil
}

// Save overwrites the snapshot without expiry
func (s *Snapshotter) Save(ctx context.Context, data []byte) error {
	if err := s.client.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set snapshot failed: %w", err)
	}
	return nil
}

// Close closes the owning client
func (s *Snapshotter) Close() error {
	return s.client.Close()
}

// Ping checks the connection behind the snapshot
func (s *Snapshotter) Ping(ctx context.Context) error {
	return s.client.rdb.Ping(ctx).Err()
}
