// Package patient provides the practitioner's patient management use cases
package patient

import (
	"context"
	"errors"
	"strings"

	"github.com/ayurwell/portal/internal/domain/patient"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements inbound.PatientService
type Service struct {
	patients  outbound.PatientRepository
	users     outbound.UserRepository
	validator *security.Validator
	logger    *zap.Logger
}

var _ inbound.PatientService = (*Service)(nil)

// NewService creates a new patient service
func NewService(patients outbound.PatientRepository, users outbound.UserRepository, validator *security.Validator, logger *zap.Logger) *Service {
	return &Service{
		patients:  patients,
		users:     users,
		validator: validator,
		logger:    logger.Named("patient-service"),
	}
}

// Intake creates an Active patient record. When the e-mail belongs to a
// registered patient the record is linked to that account right away.
func (s *Service) Intake(ctx context.Context, actor inbound.Actor, cmd inbound.IntakeCommand) (*inbound.PatientDTO, error) {
	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}

	p, err := patient.New(actor.UserID, patient.Intake{
		Name:           cmd.Name,
		Email:          cmd.Email,
		Age:            cmd.Age,
		WaterIntake:    cmd.WaterIntake,
		BowelMovement:  cmd.BowelMovement,
		Prakriti:       cmd.Prakriti,
		Dosha:          cmd.Dosha,
		Observations:   cmd.Observations,
		MedicalHistory: cmd.MedicalHistory,
		Allergies:      cmd.Allergies,
	})
	if err != nil {
		return nil, apperrors.NewRuleViolationError(err)
	}

	if p.Email != "" {
		s.linkExistingAccount(ctx, p)
	}

	if err := s.patients.Create(ctx, p); err != nil {
		return nil, apperrors.NewDatabaseError("create patient", err)
	}

	s.logger.Info("Patient added",
		zap.String("patient_id", p.ID.String()),
		zap.String("practitioner_id", actor.UserID.String()),
		zap.Bool("linked", p.UserID != nil),
	)

	dto := inbound.NewPatientDTO(p)
	return &dto, nil
}

// List returns the practitioner's patients, newest activity first
func (s *Service) List(ctx context.Context, actor inbound.Actor, query inbound.PatientQuery) ([]inbound.PatientDTO, error) {
	if query.Status != nil && !query.Status.Valid() {
		return nil, apperrors.NewRuleViolationError(patient.ErrInvalidStatus)
	}

	records, err := s.patients.FindByPractitioner(ctx, actor.UserID, outbound.PatientFilter{
		Status: query.Status,
		Query:  strings.TrimSpace(query.Query),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("list patients", err)
	}

	out := make([]inbound.PatientDTO, 0, len(records))
	for _, p := range records {
		out = append(out, inbound.NewPatientDTO(p))
	}
	return out, nil
}

// Get returns one of the practitioner's patients
func (s *Service) Get(ctx context.Context, actor inbound.Actor, id uuid.UUID) (*inbound.PatientDTO, error) {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	dto := inbound.NewPatientDTO(p)
	return &dto, nil
}

// ChangeStatus sets the patient's status and records the activity
func (s *Service) ChangeStatus(ctx context.Context, actor inbound.Actor, id uuid.UUID, status patient.Status) (*inbound.PatientDTO, error) {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := p.ChangeStatus(status); err != nil {
		return nil, apperrors.NewRuleViolationError(err)
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, apperrors.NewDatabaseError("update patient", err)
	}

	dto := inbound.NewPatientDTO(p)
	return &dto, nil
}

// owned loads a patient record; records of other practitioners look missing
func (s *Service) owned(ctx context.Context, actor inbound.Actor, id uuid.UUID) (*patient.Patient, error) {
	p, err := s.patients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return nil, apperrors.NewPatientNotFoundError(id.String())
		}
		return nil, apperrors.NewDatabaseError("find patient", err)
	}
	if !p.BelongsTo(actor.UserID) {
		return nil, apperrors.NewPatientNotFoundError(id.String())
	}
	return p, nil
}

func (s *Service) linkExistingAccount(ctx context.Context, p *patient.Patient) {
	u, err := s.users.FindByEmail(ctx, p.Email)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			s.logger.Warn("Failed to look up patient account", zap.Error(err))
		}
		return
	}
	if u.Role() != user.RolePatient {
		return
	}
	p.LinkAccount(u.ID())
	p.Avatar = u.AvatarURL()
}
