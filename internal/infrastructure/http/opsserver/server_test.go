package opsserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ayurwell/portal/internal/infrastructure/ai/mock"
	"github.com/ayurwell/portal/internal/infrastructure/cache"
	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/ayurwell/portal/internal/infrastructure/monitoring"
	"github.com/ayurwell/portal/internal/infrastructure/persistence/sqlite"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/ayurwell/portal/pkg/healthcheck"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type downProvider struct{}

func (downProvider) Name() string { return "ollama" }

func (downProvider) Generate(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}

func (downProvider) HealthCheck(context.Context) error { return errors.New("connection refused") }

type fixture struct {
	handler http.Handler
	redis   *miniredis.Miniredis
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := zap.NewNop()

	db, err := sqlite.SetupDatabase("", gormlogger.Discard)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	redisClient := cache.WrapRedisClient(rc, logger)

	health := healthcheck.New("test", logger)
	health.SetCacheTTL(0)
	health.Register("database", healthcheck.NewSQLChecker(sqlDB))
	health.Register("redis", healthcheck.NewRedisChecker(redisClient.Universal()))

	cfg := &config.Config{
		Monitoring: config.MonitoringConfig{EnableMetrics: true, MetricsPath: "/metrics"},
	}
	metrics := monitoring.NewMetricsCollector(logger)
	metrics.RecordAppointmentBooked()

	providers := []outbound.AIProvider{downProvider{}, mock.New()}
	diagnostics := NewDiagnostics(sqlDB, redisClient, providers, logger)

	srv := NewServer(cfg, health, metrics.Handler(), diagnostics, logger)
	return fixture{handler: srv.Handler(), redis: mr}
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestOpsServer_HealthEndpoints(t *testing.T) {
	f := newFixture(t)

	rec, body := get(t, f.handler, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])

	rec, body = get(t, f.handler, "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", body["status"])

	rec, body = get(t, f.handler, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])
}

func TestOpsServer_NotReadyWhenRedisIsDown(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.redis.Close()

	// Act
	rec, body := get(t, f.handler, "/health/ready")

	// Assert
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body["status"])

	rec, _ = get(t, f.handler, "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOpsServer_Metrics(t *testing.T) {
	f := newFixture(t)

	rec, _ := get(t, f.handler, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ayurwell_appointments_booked_total")
}

func TestOpsServer_MetricsDisabled(t *testing.T) {
	logger := zap.NewNop()
	cfg := &config.Config{Monitoring: config.MonitoringConfig{EnableMetrics: false}}
	srv := NewServer(cfg, healthcheck.New("test", logger), monitoring.NewMetricsCollector(logger).Handler(), nil, logger)

	rec, body := get(t, srv.Handler(), "/metrics")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", body["error"])
}

func TestDiagnostics(t *testing.T) {
	f := newFixture(t)

	t.Run("connections", func(t *testing.T) {
		rec, body := get(t, f.handler, "/debug/diagnostics/connections")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 1, body["max_open_connections"])
	})

	t.Run("cache", func(t *testing.T) {
		rec, body := get(t, f.handler, "/debug/diagnostics/cache")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["enabled"])
	})

	t.Run("ai providers keep chain order", func(t *testing.T) {
		rec, body := get(t, f.handler, "/debug/diagnostics/ai")

		require.Equal(t, http.StatusOK, rec.Code)
		providers, ok := body["providers"].([]interface{})
		require.True(t, ok)
		require.Len(t, providers, 2)

		first := providers[0].(map[string]interface{})
		assert.Equal(t, "ollama", first["name"])
		assert.Equal(t, false, first["healthy"])
		assert.Equal(t, "connection refused", first["error"])

		second := providers[1].(map[string]interface{})
		assert.Equal(t, "mock", second["name"])
		assert.Equal(t, true, second["healthy"])
	})
}
