// Package redis provides the optional hot layer: latest per-instrument
// summaries cached with a TTL, and fired alerts published for external
// consumers. SQLite remains the source of truth; the monitor runs fine
// without Redis.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"stockwatch/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	latestKeyPrefix = "stockwatch:latest:"
	alertChannel    = "stockwatch:alerts"

	// Latest summaries go stale after a missed cycle or two; the TTL
	// keeps dead instruments from lingering in the cache.
	latestTTL = 30 * time.Minute
)

// Config configures the Redis publisher.
type Config struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// Publisher writes cycle summaries and alerts to Redis.
type Publisher struct {
	client *goredis.Client
}

// New creates a Publisher and pings the server.
func New(cfg Config) (*Publisher, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Publisher{client: client}, nil
}

// Client returns the underlying client for health checks.
func (p *Publisher) Client() *goredis.Client { return p.client }

// SetLatest caches the newest summary for an instrument under
// stockwatch:latest:<code>.
func (p *Publisher) SetLatest(ctx context.Context, s model.Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("redis marshal summary: %w", err)
	}
	if err := p.client.Set(ctx, latestKeyPrefix+s.Code, data, latestTTL).Err(); err != nil {
		return fmt.Errorf("redis set latest: %w", err)
	}
	return nil
}

// Latest returns the cached summary for a code, or nil when absent.
func (p *Publisher) Latest(ctx context.Context, code string) (*model.Summary, error) {
	data, err := p.client.Get(ctx, latestKeyPrefix+code).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get latest: %w", err)
	}
	var s model.Summary
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("redis unmarshal summary: %w", err)
	}
	return &s, nil
}

// PublishAlert fans a fired alert out on stockwatch:alerts.
func (p *Publisher) PublishAlert(ctx context.Context, a model.Alert) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("redis marshal alert: %w", err)
	}
	if err := p.client.Publish(ctx, alertChannel, data).Err(); err != nil {
		return fmt.Errorf("redis publish alert: %w", err)
	}
	return nil
}

// Close closes the client.
func (p *Publisher) Close() error { return p.client.Close() }
