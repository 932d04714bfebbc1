package events

import (
	"context"
	"fmt"

	"github.com/ayurwell/portal/internal/domain/appointment"
	"github.com/ayurwell/portal/internal/domain/audit"
	"github.com/ayurwell/portal/internal/domain/dietplan"
	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/domain/shared"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier stores a notification and pushes it to the user's open streams
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind notification.Kind, title, body, link string) error
}

// Metrics counts business events
type Metrics interface {
	RecordAppointmentBooked()
	RecordDietPlanSent()
}

// Subscriber turns domain events into notifications, audit entries and metrics
type Subscriber struct {
	notifier Notifier
	audit    outbound.AuditRepository
	metrics  Metrics
	logger   *zap.Logger
}

// NewSubscriber creates the subscriber. metrics may be nil.
func NewSubscriber(notifier Notifier, auditRepo outbound.AuditRepository, metrics Metrics, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		notifier: notifier,
		audit:    auditRepo,
		metrics:  metrics,
		logger:   logger.Named("event-subscriber"),
	}
}

// Register attaches every handler to d
func (s *Subscriber) Register(d shared.EventDispatcher) {
	d.Register(user.UserRegisteredEvent{}.EventName(), s.onUserRegistered)
	d.Register(user.RoleSelectedEvent{}.EventName(), s.onRoleSelected)
	d.Register(appointment.BookedEvent{}.EventName(), s.onAppointmentBooked)
	d.Register(appointment.StatusChangedEvent{}.EventName(), s.onAppointmentStatusChanged)
	d.Register(dietplan.SentEvent{}.EventName(), s.onDietPlanSent)
}

func (s *Subscriber) onUserRegistered(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(user.UserRegisteredEvent)
	if !ok {
		return unexpected(event)
	}
	s.logger.Info("User registered", zap.String("user_id", e.UserID.String()))
	return nil
}

func (s *Subscriber) onRoleSelected(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(user.RoleSelectedEvent)
	if !ok {
		return unexpected(event)
	}

	entry := audit.NewEntry(e.UserID, e.Role.String(), audit.ActionRoleSelected, "user", e.UserID.String(),
		map[string]interface{}{"role": e.Role.String()})
	return s.audit.Append(ctx, entry)
}

func (s *Subscriber) onAppointmentBooked(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(appointment.BookedEvent)
	if !ok {
		return unexpected(event)
	}

	if s.metrics != nil {
		s.metrics.RecordAppointmentBooked()
	}

	body := fmt.Sprintf("%s booked a consultation on %s.", e.PatientName, e.Start.Format("Mon 2 Jan 2006 at 15:04 MST"))
	return s.notifier.Notify(ctx, e.DoctorID, notification.KindAppointmentBooked,
		"New appointment", body, "/practitioner/appointments")
}

func (s *Subscriber) onAppointmentStatusChanged(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(appointment.StatusChangedEvent)
	if !ok {
		return unexpected(event)
	}

	// the other party hears about the change
	recipient, link := e.PatientID, "/patient/appointments"
	if e.ActorID == e.PatientID {
		recipient, link = e.DoctorID, "/practitioner/appointments"
	}

	title := fmt.Sprintf("Appointment %s", e.To)
	body := fmt.Sprintf("Your appointment was marked %s.", e.To)
	return s.notifier.Notify(ctx, recipient, notification.KindAppointmentUpdated, title, body, link)
}

func (s *Subscriber) onDietPlanSent(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(dietplan.SentEvent)
	if !ok {
		return unexpected(event)
	}

	if s.metrics != nil {
		s.metrics.RecordDietPlanSent()
	}

	entry := audit.NewEntry(e.PractitionerID, user.RolePractitioner.String(), audit.ActionDietPlanSent,
		"diet_plan", e.PlanID.String(), map[string]interface{}{"patientUserId": e.PatientUserID.String()})
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Warn("Failed to audit diet plan send", zap.Error(err))
	}

	return s.notifier.Notify(ctx, e.PatientUserID, notification.KindDietPlanSent,
		"New diet plan", fmt.Sprintf("Your practitioner sent you %q.", e.Title), "/patient/diet-plan")
}

func unexpected(event shared.DomainEvent) error {
	return fmt.Errorf("unexpected payload %T for event %s", event, event.EventName())
}
