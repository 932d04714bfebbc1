// Package appointment provides the booking use cases for patients and practitioners
package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ayurwell/portal/internal/domain/appointment"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/shared"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultStartHour is the consultation start when only a date is booked
const DefaultStartHour = 9

// Service implements inbound.AppointmentService
type Service struct {
	appointments outbound.AppointmentRepository
	doctors      outbound.DoctorRepository
	users        outbound.UserRepository
	validator    *security.Validator
	dispatcher   shared.EventDispatcher
	logger       *zap.Logger
	now          func() time.Time
}

var _ inbound.AppointmentService = (*Service)(nil)

// NewService creates a new appointment service
func NewService(
	appointments outbound.AppointmentRepository,
	doctors outbound.DoctorRepository,
	users outbound.UserRepository,
	validator *security.Validator,
	dispatcher shared.EventDispatcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		appointments: appointments,
		doctors:      doctors,
		users:        users,
		validator:    validator,
		dispatcher:   dispatcher,
		logger:       logger.Named("appointment-service"),
		now:          time.Now,
	}
}

// ParseStart reads YYYY-MM-DD (09:00 UTC that day) or an RFC3339 timestamp
func ParseStart(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.Add(DefaultStartHour * time.Hour), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD or an RFC3339 timestamp")
	}
	return t.UTC(), nil
}

// Book schedules a one-hour consultation with a verified doctor
func (s *Service) Book(ctx context.Context, actor inbound.Actor, cmd inbound.BookAppointmentCommand) (*inbound.AppointmentDTO, error) {
	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}

	start, err := ParseStart(cmd.Date)
	if err != nil {
		return nil, apperrors.NewRuleViolationError(err)
	}

	doc, err := s.doctors.FindByID(ctx, cmd.DoctorID)
	if err != nil {
		if errors.Is(err, doctor.ErrDoctorNotFound) {
			return nil, apperrors.NewDoctorNotFoundError(cmd.DoctorID.String())
		}
		return nil, apperrors.NewDatabaseError("find doctor", err)
	}
	if !doc.Bookable() {
		return nil, apperrors.NewRuleViolationError(doctor.ErrNotVerified)
	}

	patientUser, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(actor.UserID.String())
		}
		return nil, apperrors.NewDatabaseError("look up user", err)
	}

	a, err := appointment.Book(appointment.Booking{
		PatientID:   actor.UserID,
		PatientName: patientUser.Name(),
		DoctorID:    doc.ID,
		DoctorName:  doc.Name,
		Start:       start,
		Title:       cmd.Title,
		Notes:       cmd.Notes,
	}, s.now())
	if err != nil {
		return nil, apperrors.NewRuleViolationError(err)
	}

	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, apperrors.NewDatabaseError("create appointment", err)
	}

	s.dispatcher.Dispatch(ctx, a.Events()...)
	s.logger.Info("Appointment booked",
		zap.String("appointment_id", a.ID().String()),
		zap.String("doctor_id", doc.ID.String()),
		zap.Time("start", a.Start()),
	)

	dto := inbound.NewAppointmentDTO(a)
	return &dto, nil
}

// List returns the caller's appointments split into upcoming and past, each
// keeping the repository order of start time descending.
func (s *Service) List(ctx context.Context, actor inbound.Actor) (*inbound.AppointmentList, error) {
	var (
		list []*appointment.Appointment
		err  error
	)
	if actor.Is(user.RolePractitioner) {
		list, err = s.appointments.FindByDoctor(ctx, actor.UserID)
	} else {
		list, err = s.appointments.FindByPatient(ctx, actor.UserID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("list appointments", err)
	}

	upcoming, past := appointment.Split(list)

	return &inbound.AppointmentList{
		Upcoming: toDTOs(upcoming),
		Past:     toDTOs(past),
	}, nil
}

// Cancel lets a patient cancel one of their scheduled appointments
func (s *Service) Cancel(ctx context.Context, actor inbound.Actor, id uuid.UUID) (*inbound.AppointmentDTO, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := a.CancelByPatient(actor.UserID); err != nil {
		return nil, transitionError(a, appointment.StatusCancelled, err)
	}
	return s.save(ctx, a)
}

// UpdateStatus lets the doctor complete or cancel a scheduled appointment
func (s *Service) UpdateStatus(ctx context.Context, actor inbound.Actor, id uuid.UUID, status appointment.Status) (*inbound.AppointmentDTO, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := a.SetStatusByDoctor(actor.UserID, status); err != nil {
		return nil, transitionError(a, status, err)
	}
	return s.save(ctx, a)
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointment.ErrAppointmentNotFound) {
			return nil, apperrors.NewAppointmentNotFoundError(id.String())
		}
		return nil, apperrors.NewDatabaseError("find appointment", err)
	}
	return a, nil
}

func (s *Service) save(ctx context.Context, a *appointment.Appointment) (*inbound.AppointmentDTO, error) {
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, apperrors.NewDatabaseError("update appointment", err)
	}
	s.dispatcher.Dispatch(ctx, a.Events()...)

	dto := inbound.NewAppointmentDTO(a)
	return &dto, nil
}

func transitionError(a *appointment.Appointment, to appointment.Status, err error) error {
	switch {
	case errors.Is(err, appointment.ErrNotParticipant):
		return apperrors.NewAppointmentNotFoundError(a.ID().String())
	case errors.Is(err, appointment.ErrNotScheduled):
		return apperrors.NewInvalidStateTransitionError("appointment", string(a.Status()), string(to))
	default:
		return apperrors.NewRuleViolationError(err)
	}
}

func toDTOs(list []*appointment.Appointment) []inbound.AppointmentDTO {
	out := make([]inbound.AppointmentDTO, 0, len(list))
	for _, a := range list {
		out = append(out, inbound.NewAppointmentDTO(a))
	}
	return out
}
