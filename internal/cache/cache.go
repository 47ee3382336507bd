// Package cache is a short-TTL Redis cache for normalized provider
// bars. The scheduler and the display path poll the same series; the
// cache keeps them from fetching the provider twice within one tick.
// The cache is optional: a nil *Cache is a valid no-op.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/arunpanwar240-bot/apna-screener/internal/model"
)

const defaultTTL = 45 * time.Second

// Config configures the cache.
type Config struct {
	Addr     string
	Password string
	TTL      time.Duration
}

// Cache wraps a Redis client for bar storage.
type Cache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// New connects to Redis and verifies the connection. Returns an error
// if Redis is unreachable; callers may continue with a nil cache.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Cache{rdb: rdb, ttl: cfg.TTL}, nil
}

// Key builds the cache key for one fetched series.
func Key(inst model.Instrument, tf model.Timeframe, from, to time.Time) string {
	return fmt.Sprintf("bars:%s:%s:%s:%s", inst, tf, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// GetBars returns the cached series and whether it was present.
func (c *Cache) GetBars(ctx context.Context, key string) ([]model.RawBar, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			log.Printf("[cache] get %s: %v", key, err)
		}
		return nil, false
	}
	var bars []model.RawBar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, false
	}
	return bars, true
}

// PutBars stores a series under key with the configured TTL.
// Fire-and-forget: errors are logged, never propagated.
func (c *Cache) PutBars(ctx context.Context, key string, bars []model.RawBar) {
	if c == nil {
		return
	}
	data, err := json.Marshal(bars)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("[cache] set %s: %v", key, err)
	}
}

// Client exposes the underlying client for health checks.
func (c *Cache) Client() *goredis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
