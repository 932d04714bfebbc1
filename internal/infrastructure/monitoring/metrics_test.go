package monitoring

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

type pusherFunc func(uuid.UUID, *notification.Notification)

func (f pusherFunc) Push(userID uuid.UUID, n *notification.Notification) { f(userID, n) }

func TestMetricsCollector_HTTPAndDB(t *testing.T) {
	m := NewMetricsCollector(zap.NewNop())

	m.RecordHTTPRequest(http.MethodGet, "/api/v1/patients/{id}", 200, 15*time.Millisecond)
	m.RecordHTTPRequest(http.MethodGet, "/api/v1/patients/{id}", 200, 5*time.Millisecond)
	m.UpdateDBStats(sql.DBStats{OpenConnections: 4, InUse: 3, Idle: 1, WaitCount: 7})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/patients/{id}", "200")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.dbConnectionsInUse))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.dbWaitCount))
}

func TestBusinessMetrics(t *testing.T) {
	m := NewMetricsCollector(zap.NewNop())

	m.RecordAppointmentBooked()
	m.RecordDietPlanSent()
	m.RecordDietPlanSent()
	m.RecordAuthEvent(AuthEventLogin, false)

	var delivered int
	pusher := m.InstrumentPusher(pusherFunc(func(uuid.UUID, *notification.Notification) { delivered++ }))
	pusher.Push(uuid.New(), notification.New(uuid.New(), notification.KindDietPlanSent, "t", "b", ""))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.appointmentsBooked))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.dietPlansSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authEvents.WithLabelValues("login", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsSent.WithLabelValues("diet_plan_sent")))
	assert.Equal(t, 1, delivered)
}

func TestMetricsCollector_Handler(t *testing.T) {
	m := NewMetricsCollector(zap.NewNop())
	m.RecordAppointmentBooked()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ayurwell_appointments_booked_total 1")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestTelemetry_ExportsOtelMetricsToPrometheus(t *testing.T) {
	// Arrange
	ctx := context.Background()
	m := NewMetricsCollector(zap.NewNop())
	tel, err := NewTelemetry(ctx,
		config.AppConfig{Name: "ayurwell", Version: "test", Environment: "test"},
		config.MonitoringConfig{},
		m.Registry(),
		zap.NewNop(),
	)
	require.NoError(t, err)
	defer func() { _ = tel.Shutdown(ctx) }()

	// Act
	counter, err := otel.Meter("test").Int64Counter("ayurwell_test_flows")
	require.NoError(t, err)
	counter.Add(ctx, 3)
	histogram, err := otel.Meter("test").Float64Histogram("ayurwell_test_latency", metric.WithUnit("s"))
	require.NoError(t, err)
	histogram.Record(ctx, 0.25)

	// Assert
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.Contains(t, names, "ayurwell_test_flows_total", "otel counter was not exported")
	assert.Contains(t, names, "ayurwell_test_latency_seconds", "otel histogram was not exported")
	for _, name := range names {
		assert.NotContains(t, name, ".", "metric %q is not scrapeable under its conventional name", name)
	}
	assert.Empty(t, TraceIDFromContext(ctx))
}
