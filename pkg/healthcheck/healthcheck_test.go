package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fixed(status Status) Checker {
	return NewCustomChecker("fixed", func(context.Context) (Status, string, interface{}) {
		return status, string(status), nil
	})
}

type countingChecker struct {
	calls  atomic.Int32
	status Status
}

func (c *countingChecker) Check(context.Context) Check {
	c.calls.Add(1)
	return Check{Status: c.status, Message: "probe " + string(c.status)}
}

func TestCheck_Aggregation(t *testing.T) {
	tests := []struct {
		name     string
		critical Status
		optional Status
		expected Status
	}{
		{name: "all healthy", critical: StatusHealthy, optional: StatusHealthy, expected: StatusHealthy},
		{name: "optional down", critical: StatusHealthy, optional: StatusUnhealthy, expected: StatusDegraded},
		{name: "critical degraded", critical: StatusDegraded, optional: StatusHealthy, expected: StatusDegraded},
		{name: "critical down", critical: StatusUnhealthy, optional: StatusHealthy, expected: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := New("test", zaptest.NewLogger(t))
			hc.Register("database", fixed(tt.critical))
			hc.RegisterOptional("ai", fixed(tt.optional))

			resp := hc.Check(context.Background())

			assert.Equal(t, tt.expected, resp.Status)
			assert.Len(t, resp.Checks, 2)
		})
	}
}

func TestCheck_CachesResponse(t *testing.T) {
	hc := New("test", zaptest.NewLogger(t))
	probe := &countingChecker{status: StatusHealthy}
	hc.Register("probe", probe)

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, int32(1), probe.calls.Load())

	hc.SetCacheTTL(0)
	hc.Check(context.Background())
	assert.Equal(t, int32(2), probe.calls.Load())
}

func TestHandlers(t *testing.T) {
	hc := New("1.2.3", zaptest.NewLogger(t))
	hc.SetCacheTTL(0)
	hc.Register("database", fixed(StatusHealthy))
	hc.RegisterOptional("ai", fixed(StatusUnhealthy))

	router := gin.New()
	router.GET("/health", hc.Handler())
	router.GET("/health/live", hc.LivenessHandler())
	router.GET("/health/ready", hc.ReadinessHandler())

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, "1.2.3", body["version"])
	})

	t.Run("ready while degraded", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"degraded":true`)
	})

	t.Run("live", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		hc.Register("redis", fixed(StatusUnhealthy))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "not_ready")
	})
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	check := NewRedisChecker(client).Check(context.Background())
	assert.Equal(t, StatusHealthy, check.Status)

	mr.Close()
	check = NewRedisChecker(client).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, check.Status)
	assert.NotEmpty(t, check.Message)
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHealthMetrics("ayurwell", reg)
	checker := WithMetrics("database", metrics, fixed(StatusDegraded))

	check := checker.Check(context.Background())

	assert.Equal(t, "database", check.Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.healthStatus.WithLabelValues("database")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.checksTotal.WithLabelValues("database", "degraded")))
}

func TestCheck_JSONDurations(t *testing.T) {
	data, err := json.Marshal(Check{Name: "db", Status: StatusHealthy, Duration: 1500 * time.Millisecond})
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 1500.0, out["duration_ms"])
}
