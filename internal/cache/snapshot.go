package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"spikeradar/internal/config"
	"spikeradar/internal/model"
)

const keyPrefix = "spikeradar"

// DefaultTTL bounds how long a snapshot may warm a cold start.
const DefaultTTL = 24 * time.Hour

// ErrMiss reports that no snapshot is cached for the key.
var ErrMiss = errors.New("cache: miss")

// SnapshotCache stores the last alert listing and velocity feed seen for a user,
// so a restarted session can render stale data while its first fetch is in flight.
type SnapshotCache interface {
	SaveAlerts(ctx context.Context, userID int64, feed model.AlertFeed) error
	LoadAlerts(ctx context.Context, userID int64) (model.AlertFeed, error)
	SaveFeed(ctx context.Context, userID int64, feed model.VelocityFeed) error
	LoadFeed(ctx context.Context, userID int64) (model.VelocityFeed, error)
}

// RedisCache implements SnapshotCache on top of Redis.
type RedisCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewRedis wraps an existing client.
func NewRedis(client goredis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// NewClient dials Redis from runtime settings and verifies the connection.
func NewClient(ctx context.Context, cfg config.CacheConfig) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("cache.addr is required")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func alertsKey(userID int64) string {
	return fmt.Sprintf("%s:%d:alerts", keyPrefix, userID)
}

func feedKey(userID int64) string {
	return fmt.Sprintf("%s:%d:feed", keyPrefix, userID)
}

// SaveAlerts stores the alert listing.
func (c *RedisCache) SaveAlerts(ctx context.Context, userID int64, feed model.AlertFeed) error {
	return c.set(ctx, alertsKey(userID), feed)
}

// LoadAlerts returns the cached alert listing or ErrMiss.
func (c *RedisCache) LoadAlerts(ctx context.Context, userID int64) (model.AlertFeed, error) {
	var feed model.AlertFeed
	err := c.get(ctx, alertsKey(userID), &feed)
	return feed, err
}

// SaveFeed stores the velocity feed.
func (c *RedisCache) SaveFeed(ctx context.Context, userID int64, feed model.VelocityFeed) error {
	return c.set(ctx, feedKey(userID), feed)
}

// LoadFeed returns the cached velocity feed or ErrMiss.
func (c *RedisCache) LoadFeed(ctx context.Context, userID int64) (model.VelocityFeed, error) {
	var feed model.VelocityFeed
	err := c.get(ctx, feedKey(userID), &feed)
	return feed, err
}

func (c *RedisCache) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) error {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
