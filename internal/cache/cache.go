// Package cache implements the autocomplete response cache (§C8): a
// two-tier cache in front of the backend, composed after the teacher's
// HybridCacheService (L1 miss -> L2 get -> L1 backfill, done synchronously
// here; only Set's L2 write runs in the background), with the tiers
// SPEC_FULL.md calls for: an in-process LRU
// (hashicorp/golang-lru/v2) as L1, Redis (redis/go-redis/v9) as L2. TTL is
// short since autocomplete results are latency-sensitive, not durable.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResultCache is the tenant/visibility-aware cache consumed by the HTTP
// controller in front of the autocomplete orchestrator (§C2, §C8). T is the materialized response
// type cached behind a key built by the caller (see Key, below).
type ResultCache[T any] struct {
	l1     *lru.Cache[string, T]
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New builds a ResultCache. l1Size bounds the in-process LRU; ttl is the
// expiry of Redis (L2) entries only. L1 entries do not expire and leave the
// LRU only by eviction.
func New[T any](redisURL string, l1Size int, ttl time.Duration, logger *zap.Logger) (*ResultCache[T], error) {
	l1, err := lru.New[string, T](l1Size)
	if err != nil {
		return nil, fmt.Errorf("cache: building L1 LRU: %w", err)
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parsing redis url: %w", err)
	}
	client := redis.NewClient(opt)

	return &ResultCache[T]{l1: l1, redis: client, ttl: ttl, logger: logger}, nil
}

// Key builds the cache key described in §C8:
// autocomplete:<lang-set>:<types>:<pt_datasets-hash>:<q>:<mode>.
func Key(langs []string, types []string, ptDatasetsHash, q, mode string) string {
	return fmt.Sprintf("autocomplete:%v:%v:%s:%s:%s", langs, types, ptDatasetsHash, q, mode)
}

// Get tries L1 first, then L2; a L2 hit is backfilled into L1
// synchronously before it is returned.
func (c *ResultCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	if v, ok := c.l1.Get(key); ok {
		return v, true
	}

	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && c.logger != nil {
			c.logger.Warn("cache: redis get failed", zap.Error(err), zap.String("key", key))
		}
		return zero, false
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		if c.logger != nil {
			c.logger.Warn("cache: decoding cached value failed", zap.Error(err), zap.String("key", key))
		}
		return zero, false
	}

	c.l1.Add(key, v)
	return v, true
}

// Set writes through both tiers. L2 write happens in the background the
// way the teacher's HybridCacheService.Set fans its two writes out, but
// does not need to block the caller on Redis latency.
func (c *ResultCache[T]) Set(ctx context.Context, key string, value T) {
	c.l1.Add(key, value)

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		data, err := json.Marshal(value)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("cache: encoding value for redis failed", zap.Error(err))
			}
			return
		}
		if err := c.redis.Set(bgCtx, key, data, c.ttl).Err(); err != nil && c.logger != nil {
			c.logger.Warn("cache: redis set failed", zap.Error(err), zap.String("key", key))
		}
	}()
}

// Close releases the Redis connection.
func (c *ResultCache[T]) Close() error {
	return c.redis.Close()
}
