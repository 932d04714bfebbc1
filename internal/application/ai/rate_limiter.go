package ai

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused per-user bucket is kept
const limiterIdleTTL = 10 * time.Minute

// RateLimiter hands every user their own token bucket
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	users     map[uuid.UUID]*userLimiter
	lastSweep time.Time
	now       func() time.Time
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requestsPerMinute per user with the given burst.
// A non-positive requestsPerMinute disables limiting.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}

	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60)
	}

	return &RateLimiter{
		limit: limit,
		burst: burst,
		users: make(map[uuid.UUID]*userLimiter),
		now:   time.Now,
	}
}

// Allow reports whether the user may make a request now and spends a token if so
func (l *RateLimiter) Allow(userID uuid.UUID) bool {
	if l.limit == rate.Inf {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	u, ok := l.users[userID]
	if !ok {
		u = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.users[userID] = u
	}
	u.lastSeen = now

	return u.limiter.AllowN(now, 1)
}

// Tracked returns the number of users holding a bucket
func (l *RateLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}

// sweep drops idle buckets at most once per idle period. Callers hold mu.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < limiterIdleTTL {
		return
	}
	l.lastSweep = now

	for id, u := range l.users {
		if now.Sub(u.lastSeen) > limiterIdleTTL {
			delete(l.users, id)
		}
	}
}
