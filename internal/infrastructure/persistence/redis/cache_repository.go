// Package redis provides the Redis-backed cache repository
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/ayurwell/portal/internal/infrastructure/cache"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"go.uber.org/zap"
)

// counterTTL bounds how long an idle counter lives
const counterTTL = time.Hour

// CacheRepository implements outbound.CacheRepository on top of cache.RedisClient
type CacheRepository struct {
	redis  *cache.RedisClient
	logger *zap.Logger
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a new Redis cache repository
func NewCacheRepository(redis *cache.RedisClient, logger *zap.Logger) *CacheRepository {
	return &CacheRepository{
		redis:  redis,
		logger: logger,
	}
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.redis.Get(ctx, key)
	if err != nil {
		return nil, r.translate("get", key, err)
	}
	return data, nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.redis.Set(ctx, key, value, ttl)
}

// Delete removes a value from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	return r.redis.Delete(ctx, key)
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.redis.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetDel reads and removes a key atomically
func (r *CacheRepository) GetDel(ctx context.Context, key string) ([]byte, error) {
	data, err := r.redis.GetDel(ctx, key)
	if err != nil {
		return nil, r.translate("getdel", key, err)
	}
	return data, nil
}

// Increment atomically increments a counter
func (r *CacheRepository) Increment(ctx context.Context, key string) (int64, error) {
	return r.redis.Increment(ctx, key, counterTTL)
}

func (r *CacheRepository) translate(op, key string, err error) error {
	if errors.Is(err, cache.ErrKeyNotFound) {
		return outbound.ErrCacheMiss
	}
	r.logger.Debug("Cache "+op+" failed", zap.String("key", key), zap.Error(err))
	return err
}
