// Package cache is a thin Redis wrapper holding the total-count reads
// the list services compute once per subscription setup. Counts are
// deliberately allowed to go stale relative to the live feeds; the TTL
// bounds how stale.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New wraps an existing Redis client. A nil client yields a disabled
// cache where every lookup misses.
func New(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}
}

// GetInt returns the cached count for key, with a miss flag. Transport
// failures degrade to a miss and are logged, never propagated: a count
// is always recomputable from the store.
func (c *Cache) GetInt(ctx context.Context, key string) (int, bool) {
	if c == nil || c.rdb == nil {
		return 0, false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("count cache read failed", "key", key, "error", err)
		}
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetInt stores a count under key for the configured TTL.
func (c *Cache) SetInt(ctx context.Context, key string, value int) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, strconv.Itoa(value), c.ttl).Err(); err != nil {
		c.logger.Warn("count cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops a cached count, used after writes that change it.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("count cache invalidation failed", "keys", keys, "error", err)
	}
}

// Ping reports Redis health for the readiness check.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}
