package opsserver

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	aihealth "github.com/ayurwell/portal/internal/infrastructure/ai"
	"github.com/ayurwell/portal/internal/infrastructure/cache"
	"github.com/ayurwell/portal/internal/ports/outbound"
)

// Diagnostics exposes connection pool, cache and AI provider details for
// operators. Any source may be nil.
type Diagnostics struct {
	db        *sql.DB
	redis     *cache.RedisClient
	providers []outbound.AIProvider
	logger    *zap.Logger
}

// NewDiagnostics creates the diagnostics handler
func NewDiagnostics(db *sql.DB, redis *cache.RedisClient, providers []outbound.AIProvider, logger *zap.Logger) *Diagnostics {
	return &Diagnostics{
		db:        db,
		redis:     redis,
		providers: providers,
		logger:    logger.Named("diagnostics"),
	}
}

// RegisterRoutes registers the diagnostics routes
func (d *Diagnostics) RegisterRoutes(r *gin.RouterGroup) {
	diag := r.Group("/diagnostics")
	{
		diag.GET("/connections", d.GetConnections)
		diag.GET("/cache", d.GetCacheStats)
		diag.GET("/ai", d.GetProviders)
	}
}

// GetConnections returns the database pool statistics
func (d *Diagnostics) GetConnections(c *gin.Context) {
	if d.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}

	stats := d.db.Stats()
	c.JSON(http.StatusOK, gin.H{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	})
}

// GetCacheStats returns the Redis command statistics
func (d *Diagnostics) GetCacheStats(c *gin.Context) {
	if d.redis == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}

	stats := d.redis.GetMetrics()
	c.JSON(http.StatusOK, gin.H{
		"enabled":              true,
		"total_commands":       stats.TotalCommands,
		"failed_ops":           stats.FailedOps,
		"hits":                 stats.CacheHits,
		"misses":               stats.CacheMisses,
		"hit_ratio":            stats.HitRatio(),
		"avg_response_time_ms": float64(stats.AvgResponseTime.Microseconds()) / 1000,
	})
}

// GetProviders probes every AI provider
func (d *Diagnostics) GetProviders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results := aihealth.CheckProviders(ctx, d.providers)
	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		if !r.Healthy {
			d.logger.Warn("AI provider unhealthy", zap.String("provider", r.Name), zap.String("error", r.Error))
		}
		out = append(out, gin.H{
			"name":       r.Name,
			"healthy":    r.Healthy,
			"error":      r.Error,
			"latency_ms": r.Latency.Milliseconds(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"providers": out})
}
