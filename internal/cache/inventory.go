package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reelhub/internal/middleware"
	"reelhub/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix     = "user:%d"
	IdentityKeyPrefix = "identity:%d"
)

const (
	UserTTL     = 5 * time.Minute
	IdentityTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func IdentityKey(userID uint) string {
	return fmt.Sprintf(IdentityKeyPrefix, userID)
}

// Cache is a JSON cache-aside layer over Redis. A Cache with a nil client
// is valid and never hits.
type Cache struct {
	rdb *redis.Client
}

// New wraps rdb, which may be nil.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Client returns the wrapped client, or nil.
func (c *Cache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

// GetJSON decodes the value at key into dst. It reports false on a miss or
// when Redis is unavailable.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	if c.Client() == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			observability.CacheLookups.WithLabelValues("miss").Inc()
		} else {
			observability.CacheLookups.WithLabelValues("error").Inc()
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		observability.CacheLookups.WithLabelValues("error").Inc()
		return false
	}
	observability.CacheLookups.WithLabelValues("hit").Inc()
	return true
}

// SetJSON stores v at key with ttl. Failures are logged and dropped.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if c.Client() == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache set failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Aside returns the cached value for key, or calls load and caches its result.
func Aside[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if c.GetJSON(ctx, key, &cached) {
		return cached, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	c.SetJSON(ctx, key, v, ttl)
	return v, nil
}

// Invalidate deletes keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c.Client() == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidate failed", slog.String("error", err.Error()))
	}
}

// InvalidateUser drops a user's cached record and identity.
func (c *Cache) InvalidateUser(ctx context.Context, userID uint) {
	c.Invalidate(ctx, UserKey(userID), IdentityKey(userID))
}
