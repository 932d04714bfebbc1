package healthcheck

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HealthMetrics provides Prometheus metrics for health checks
type HealthMetrics struct {
	checksTotal   *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	healthStatus  *prometheus.GaugeVec
	circuitState  *prometheus.GaugeVec
}

// NewHealthMetrics registers the health check metrics on reg
func NewHealthMetrics(namespace string, reg prometheus.Registerer) *HealthMetrics {
	factory := promauto.With(reg)

	return &HealthMetrics{
		checksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "healthcheck",
				Name:      "checks_total",
				Help:      "Total number of health checks performed",
			},
			[]string{"check_name", "status"},
		),
		checkDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "healthcheck",
				Name:      "check_duration_seconds",
				Help:      "Duration of health checks in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"check_name"},
		),
		healthStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "healthcheck",
				Name:      "status",
				Help:      "Current health status (0=unhealthy, 1=degraded, 2=healthy)",
			},
			[]string{"check_name"},
		),
		circuitState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "healthcheck",
				Name:      "circuit_breaker_state",
				Help:      "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"check_name"},
		),
	}
}

// Record stores the outcome of one check
func (hm *HealthMetrics) Record(check Check) {
	hm.checksTotal.WithLabelValues(check.Name, string(check.Status)).Inc()
	hm.checkDuration.WithLabelValues(check.Name).Observe(check.Duration.Seconds())
	hm.healthStatus.WithLabelValues(check.Name).Set(statusToFloat(check.Status))
}

func statusToFloat(status Status) float64 {
	switch status {
	case StatusHealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

type measuredChecker struct {
	name    string
	metrics *HealthMetrics
	next    Checker
}

// WithMetrics records every run of checker under name
func WithMetrics(name string, metrics *HealthMetrics, checker Checker) Checker {
	return &measuredChecker{name: name, metrics: metrics, next: checker}
}

func (m *measuredChecker) Check(ctx context.Context) Check {
	check := m.next.Check(ctx)
	check.Name = m.name
	m.metrics.Record(check)

	if guarded, ok := m.next.(*GuardedChecker); ok {
		m.metrics.circuitState.WithLabelValues(m.name).Set(float64(guarded.State()))
	}
	return check
}
