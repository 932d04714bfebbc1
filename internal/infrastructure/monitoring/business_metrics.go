package monitoring

import (
	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Auth event names
const (
	AuthEventSignup  = "signup"
	AuthEventLogin   = "login"
	AuthEventRefresh = "refresh"
	AuthEventReset   = "password_reset"
)

// BusinessMetrics counts portal events
type BusinessMetrics struct {
	authEvents         *prometheus.CounterVec
	appointmentsBooked prometheus.Counter
	dietPlansSent      prometheus.Counter
	notificationsSent  *prometheus.CounterVec
}

func newBusinessMetrics(factory promauto.Factory) *BusinessMetrics {
	return &BusinessMetrics{
		authEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_events_total",
				Help:      "Authentication events by type and outcome",
			},
			[]string{"event", "outcome"},
		),
		appointmentsBooked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_booked_total",
			Help:      "Total number of booked appointments",
		}),
		dietPlansSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diet_plans_sent_total",
			Help:      "Total number of diet plans sent to patients",
		}),
		notificationsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_pushed_total",
				Help:      "Notifications pushed to open streams",
			},
			[]string{"kind"},
		),
	}
}

// RecordAuthEvent counts one authentication attempt
func (b *BusinessMetrics) RecordAuthEvent(event string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	b.authEvents.WithLabelValues(event, outcome).Inc()
}

// RecordAppointmentBooked counts one booking
func (b *BusinessMetrics) RecordAppointmentBooked() {
	b.appointmentsBooked.Inc()
}

// RecordDietPlanSent counts one sent plan
func (b *BusinessMetrics) RecordDietPlanSent() {
	b.dietPlansSent.Inc()
}

// RecordNotificationPushed counts one live notification
func (b *BusinessMetrics) RecordNotificationPushed(kind string) {
	b.notificationsSent.WithLabelValues(kind).Inc()
}

type countingPusher struct {
	next    outbound.NotificationPusher
	metrics *BusinessMetrics
}

// InstrumentPusher counts every notification handed to next
func (b *BusinessMetrics) InstrumentPusher(next outbound.NotificationPusher) outbound.NotificationPusher {
	return &countingPusher{next: next, metrics: b}
}

func (p *countingPusher) Push(userID uuid.UUID, n *notification.Notification) {
	p.metrics.RecordNotificationPushed(string(n.Kind))
	p.next.Push(userID, n)
}
