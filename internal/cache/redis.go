// Package cache publishes derived report payloads to Redis so a frontend can
// read them without touching the index.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Publisher wraps redis.Client.
type Publisher struct {
	client *redis.Client
}

// NewPublisher connects to addr and verifies the connection with a ping.
func NewPublisher(ctx context.Context, addr, password string) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return &Publisher{client: client}, nil
}

// Publish stores v as JSON under key with the given expiration. A zero ttl
// keeps the key until it is overwritten.
func (p *Publisher) Publish(ctx context.Context, key string, v any, ttl time.Duration) error {
	if p == nil || p.client == nil {
		return ErrNotConnected
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := p.client.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

// Fetch reads the JSON value under key into dest.
func (p *Publisher) Fetch(ctx context.Context, key string, dest any) error {
	if p == nil || p.client == nil {
		return ErrNotConnected
	}
	val, err := p.client.Get(ctx, key).Bytes()
	if err != nil {
		return fmt.Errorf("fetch %s: %w", key, err)
	}
	return json.Unmarshal(val, dest)
}

// Close closes the Redis connection.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
