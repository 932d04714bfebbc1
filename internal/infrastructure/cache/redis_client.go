// Package cache provides Redis connection management, key naming and the
// session store used by authentication
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found in cache")
	ErrCircuitOpen = errors.New("redis circuit breaker is open")
)

// RedisClient wraps a go-redis client with a circuit breaker and command metrics
type RedisClient struct {
	client         redis.UniversalClient
	logger         *zap.Logger
	metrics        *RedisMetrics
	circuitBreaker *CircuitBreaker
}

// RedisStats is a point-in-time copy of the command metrics
type RedisStats struct {
	TotalCommands   int64         `json:"totalCommands"`
	FailedOps       int64         `json:"failedOps"`
	CacheHits       int64         `json:"cacheHits"`
	CacheMisses     int64         `json:"cacheMisses"`
	AvgResponseTime time.Duration `json:"avgResponseTime"`
}

// RedisMetrics tracks Redis command outcomes
type RedisMetrics struct {
	stats RedisStats
	mu    sync.Mutex
}

// CircuitBreaker stops calling Redis after repeated failures
type CircuitBreaker struct {
	maxFailures     int
	timeout         time.Duration
	failures        int
	lastFailureTime time.Time
	state           CircuitState
	mu              sync.Mutex
}

// CircuitState represents circuit breaker states
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// NewRedisClient dials Redis using the application config and verifies the connection
func NewRedisClient(cfg *config.RedisConfig, logger *zap.Logger) (*RedisClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	redisClient := WrapRedisClient(client, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis client initialized",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Int("database", cfg.Database))

	return redisClient, nil
}

// WrapRedisClient wraps an existing go-redis client
func WrapRedisClient(client redis.UniversalClient, logger *zap.Logger) *RedisClient {
	return &RedisClient{
		client:  client,
		logger:  logger,
		metrics: &RedisMetrics{},
		circuitBreaker: &CircuitBreaker{
			maxFailures: 5,
			timeout:     30 * time.Second,
			state:       CircuitClosed,
		},
	}
}

// Universal exposes the underlying go-redis client
func (r *RedisClient) Universal() redis.UniversalClient {
	return r.client
}

// Ping tests the Redis connection
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.do("PING", func() error {
		return r.client.Ping(ctx).Err()
	})
}

// Get retrieves a value, returning ErrKeyNotFound when absent
func (r *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	var result []byte
	err := r.do("GET", func() error {
		var err error
		result, err = r.client.Get(ctx, key).Bytes()
		return err
	})
	return r.lookup(result, err)
}

// GetDel reads and deletes a key atomically
func (r *RedisClient) GetDel(ctx context.Context, key string) ([]byte, error) {
	var result []byte
	err := r.do("GETDEL", func() error {
		var err error
		result, err = r.client.GetDel(ctx, key).Bytes()
		return err
	})
	return r.lookup(result, err)
}

// Set stores a value with a TTL. A zero TTL keeps the key forever.
func (r *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.do("SET", func() error {
		return r.client.Set(ctx, key, value, ttl).Err()
	})
}

// Delete removes keys
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	return r.do("DEL", func() error {
		return r.client.Del(ctx, keys...).Err()
	})
}

// Exists counts how many of the keys exist
func (r *RedisClient) Exists(ctx context.Context, keys ...string) (int64, error) {
	var n int64
	err := r.do("EXISTS", func() error {
		var err error
		n, err = r.client.Exists(ctx, keys...).Result()
		return err
	})
	return n, err
}

// Increment atomically increments a counter and refreshes its expiration
func (r *RedisClient) Increment(ctx context.Context, key string, expiration time.Duration) (int64, error) {
	var incr *redis.IntCmd
	err := r.do("INCR", func() error {
		pipe := r.client.TxPipeline()
		incr = pipe.Incr(ctx, key)
		if expiration > 0 {
			pipe.Expire(ctx, key, expiration)
		}
		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// GetMetrics returns a copy of the current metrics
func (r *RedisClient) GetMetrics() RedisStats {
	r.metrics.mu.Lock()
	defer r.metrics.mu.Unlock()
	return r.metrics.stats
}

// Close closes the Redis client connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) do(command string, fn func() error) error {
	if !r.circuitBreaker.AllowRequest() {
		return ErrCircuitOpen
	}

	start := time.Now()
	err := fn()
	r.metrics.record(err, time.Since(start))

	if err != nil && !errors.Is(err, redis.Nil) {
		r.circuitBreaker.RecordFailure()
		r.logger.Error("Redis command failed", zap.String("command", command), zap.Error(err))
		return err
	}

	r.circuitBreaker.RecordSuccess()
	return err
}

func (r *RedisClient) lookup(result []byte, err error) ([]byte, error) {
	if errors.Is(err, redis.Nil) {
		r.metrics.miss()
		return nil, ErrKeyNotFound
	}
	if err != nil {
		r.metrics.miss()
		return nil, err
	}
	r.metrics.hit()
	return result, nil
}

// AllowRequest checks if requests are allowed based on circuit state
func (cb *CircuitBreaker) AllowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		if time.Since(cb.lastFailureTime) > cb.timeout {
			cb.state = CircuitHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess records a successful operation
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.state = CircuitClosed
}

// RecordFailure records a failed operation
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailureTime = time.Now()

	if cb.failures >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

// State returns the current circuit state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (m *RedisMetrics) record(err error, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.TotalCommands++
	if err != nil && !errors.Is(err, redis.Nil) {
		m.stats.FailedOps++
	}

	// exponential moving average, alpha 0.1
	if m.stats.TotalCommands == 1 {
		m.stats.AvgResponseTime = duration
	} else {
		m.stats.AvgResponseTime = time.Duration(float64(m.stats.AvgResponseTime)*0.9 + float64(duration)*0.1)
	}
}

func (m *RedisMetrics) hit() {
	m.mu.Lock()
	m.stats.CacheHits++
	m.mu.Unlock()
}

func (m *RedisMetrics) miss() {
	m.mu.Lock()
	m.stats.CacheMisses++
	m.mu.Unlock()
}

// HitRatio calculates the cache hit ratio
func (s RedisStats) HitRatio() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0.0
	}
	return float64(s.CacheHits) / float64(total)
}
