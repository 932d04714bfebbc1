// Package doctor provides the doctor directory and the practitioner's own profile
package doctor

import (
	"context"
	"errors"

	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"go.uber.org/zap"
)

// Service implements inbound.DoctorService
type Service struct {
	doctors   outbound.DoctorRepository
	users     outbound.UserRepository
	validator *security.Validator
	logger    *zap.Logger
}

var _ inbound.DoctorService = (*Service)(nil)

// NewService creates a new doctor service
func NewService(doctors outbound.DoctorRepository, users outbound.UserRepository, validator *security.Validator, logger *zap.Logger) *Service {
	return &Service{
		doctors:   doctors,
		users:     users,
		validator: validator,
		logger:    logger.Named("doctor-service"),
	}
}

// ListVerified returns the doctors patients may book
func (s *Service) ListVerified(ctx context.Context) ([]inbound.DoctorDTO, error) {
	status := doctor.StatusVerified
	profiles, err := s.doctors.List(ctx, &status)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list doctors", err)
	}

	out := make([]inbound.DoctorDTO, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, inbound.NewDoctorDTO(p))
	}
	return out, nil
}

// GetOwn returns the practitioner's profile, creating a pending one if
// the practitioner has none yet
func (s *Service) GetOwn(ctx context.Context, actor inbound.Actor) (*inbound.DoctorDTO, error) {
	p, err := s.own(ctx, actor)
	if err != nil {
		return nil, err
	}
	dto := inbound.NewDoctorDTO(p)
	return &dto, nil
}

// UpdateOwn upserts specialization and bio. The verification status is kept.
func (s *Service) UpdateOwn(ctx context.Context, actor inbound.Actor, cmd inbound.UpdateDoctorCommand) (*inbound.DoctorDTO, error) {
	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}

	p, err := s.own(ctx, actor)
	if err != nil {
		return nil, err
	}

	if err := p.Edit(cmd.Specialization, cmd.Bio); err != nil {
		return nil, apperrors.NewRuleViolationError(err)
	}
	if err := s.doctors.Save(ctx, p); err != nil {
		return nil, apperrors.NewDatabaseError("save doctor profile", err)
	}

	dto := inbound.NewDoctorDTO(p)
	return &dto, nil
}

func (s *Service) own(ctx context.Context, actor inbound.Actor) (*doctor.Profile, error) {
	p, err := s.doctors.FindByID(ctx, actor.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, doctor.ErrDoctorNotFound) {
		return nil, apperrors.NewDatabaseError("find doctor profile", err)
	}

	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(actor.UserID.String())
		}
		return nil, apperrors.NewDatabaseError("look up user", err)
	}

	p = doctor.NewPending(u.ID(), u.Name(), u.Email())
	if err := s.doctors.Save(ctx, p); err != nil {
		return nil, apperrors.NewDatabaseError("create doctor profile", err)
	}
	s.logger.Info("Created missing doctor profile", zap.String("user_id", u.ID().String()))
	return p, nil
}
