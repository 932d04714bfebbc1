// Package memory provides an in-process cache repository used when Redis is disabled
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ayurwell/portal/internal/ports/outbound"
)

// CacheItem represents a cached item. A zero ExpiresAt never expires.
type CacheItem struct {
	Value     []byte
	ExpiresAt time.Time
}

func (i CacheItem) expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// CacheRepository implements outbound.CacheRepository with a map
type CacheRepository struct {
	data  map[string]CacheItem
	mutex sync.Mutex
	stop  chan struct{}
	once  sync.Once
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a cache that sweeps expired keys every interval
func NewCacheRepository(cleanupInterval time.Duration) *CacheRepository {
	repo := &CacheRepository{
		data: make(map[string]CacheItem),
		stop: make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go repo.cleanup(cleanupInterval)
	}

	return repo
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	item, ok := r.live(key)
	if !ok {
		return nil, outbound.ErrCacheMiss
	}
	return item.Value, nil
}

// Set stores a value with a TTL. A zero TTL keeps the key forever.
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.data[key] = CacheItem{Value: append([]byte(nil), value...), ExpiresAt: expiry(ttl)}
	return nil
}

// Delete removes a key from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.data, key)
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, ok := r.live(key)
	return ok, nil
}

// GetDel reads and removes a key
func (r *CacheRepository) GetDel(ctx context.Context, key string) ([]byte, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	item, ok := r.live(key)
	if !ok {
		return nil, outbound.ErrCacheMiss
	}
	delete(r.data, key)
	return item.Value, nil
}

// Increment increments a decimal counter, keeping its expiry
func (r *CacheRepository) Increment(ctx context.Context, key string) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var value int64
	item, ok := r.live(key)
	if ok {
		n, err := strconv.ParseInt(string(item.Value), 10, 64)
		if err != nil {
			return 0, err
		}
		value = n
	}
	value++

	item.Value = []byte(strconv.FormatInt(value, 10))
	r.data[key] = item
	return value, nil
}

// Close stops the cleanup goroutine
func (r *CacheRepository) Close() {
	r.once.Do(func() { close(r.stop) })
}

// Len returns the number of stored keys, expired or not
func (r *CacheRepository) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.data)
}

// live returns the item when present and not expired. Callers hold the mutex.
func (r *CacheRepository) live(key string) (CacheItem, bool) {
	item, ok := r.data[key]
	if !ok {
		return CacheItem{}, false
	}
	if item.expired(time.Now()) {
		delete(r.data, key)
		return CacheItem{}, false
	}
	return item, true
}

func (r *CacheRepository) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stop:
			return
		}
	}
}

func (r *CacheRepository) sweep() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	for key, item := range r.data {
		if item.expired(now) {
			delete(r.data, key)
		}
	}
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
