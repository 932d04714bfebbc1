// Package admin provides the back-office use cases: user and doctor
// review, the food catalog and the audit trail
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ayurwell/portal/internal/domain/audit"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/food"
	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	foodCatalogKey   = "foods:catalog"
	foodCatalogTTL   = 10 * time.Minute
	defaultAuditSize = 50
	maxAuditSize     = 500
)

// Notifier stores an in-app notification for a user
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind notification.Kind, title, body, link string) error
}

// Deps groups the collaborators of the admin service
type Deps struct {
	Users     outbound.UserRepository
	Doctors   outbound.DoctorRepository
	Foods     outbound.FoodRepository
	AuditLog  outbound.AuditRepository
	Cache     outbound.CacheRepository
	Notifier  Notifier
	Validator *security.Validator
}

// Service implements inbound.AdminService
type Service struct {
	Deps
	logger *zap.Logger
}

var _ inbound.AdminService = (*Service)(nil)

// NewService creates a new admin service
func NewService(deps Deps, logger *zap.Logger) *Service {
	return &Service{Deps: deps, logger: logger.Named("admin-service")}
}

// ListUsers returns all accounts, optionally of one role
func (s *Service) ListUsers(ctx context.Context, role *user.Role) ([]inbound.UserDTO, error) {
	users, err := s.Users.List(ctx, role)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list users", err)
	}

	out := make([]inbound.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, inbound.NewUserDTO(u))
	}
	return out, nil
}

// ListDoctors returns doctor profiles, optionally in one status
func (s *Service) ListDoctors(ctx context.Context, status *doctor.Status) ([]inbound.DoctorDTO, error) {
	profiles, err := s.Doctors.List(ctx, status)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list doctors", err)
	}

	out := make([]inbound.DoctorDTO, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, inbound.NewDoctorDTO(p))
	}
	return out, nil
}

// ReviewDoctor verifies or rejects a doctor profile and tells the practitioner
func (s *Service) ReviewDoctor(ctx context.Context, actor inbound.Actor, id uuid.UUID, decision doctor.Status) (*inbound.DoctorDTO, error) {
	p, err := s.Doctors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, doctor.ErrDoctorNotFound) {
			return nil, apperrors.NewDoctorNotFoundError(id.String())
		}
		return nil, apperrors.NewDatabaseError("find doctor", err)
	}

	from := p.Status
	if err := p.Review(actor.UserID, decision); err != nil {
		if errors.Is(err, doctor.ErrAlreadyReviewed) {
			return nil, apperrors.NewInvalidStateTransitionError("doctor profile", string(from), string(decision))
		}
		return nil, apperrors.NewRuleViolationError(err)
	}

	if err := s.Doctors.Save(ctx, p); err != nil {
		return nil, apperrors.NewDatabaseError("save doctor", err)
	}

	action, body := audit.ActionDoctorVerified, "Your practitioner profile has been verified. Patients can now book you."
	if decision == doctor.StatusRejected {
		action, body = audit.ActionDoctorRejected, "Your practitioner profile was not approved. Contact support for details."
	}
	s.audit(ctx, actor, action, "doctor", p.ID.String(), map[string]interface{}{"from": string(from)})

	if err := s.Notifier.Notify(ctx, p.ID, notification.KindDoctorReviewed, "Profile review", body, "/practitioner/profile"); err != nil {
		s.logger.Warn("Failed to notify reviewed doctor", zap.String("doctor_id", p.ID.String()), zap.Error(err))
	}

	s.logger.Info("Doctor reviewed",
		zap.String("doctor_id", p.ID.String()),
		zap.String("decision", string(decision)),
		zap.String("admin_id", actor.UserID.String()),
	)

	dto := inbound.NewDoctorDTO(p)
	return &dto, nil
}

// ListFoods returns the catalog. It is served from cache when possible.
func (s *Service) ListFoods(ctx context.Context) ([]inbound.FoodDTO, error) {
	if data, err := s.Cache.Get(ctx, foodCatalogKey); err == nil {
		var cached []inbound.FoodDTO
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		s.logger.Warn("Discarding unreadable food catalog cache entry")
	} else if !errors.Is(err, outbound.ErrCacheMiss) {
		s.logger.Warn("Food catalog cache read failed", zap.Error(err))
	}

	foods, err := s.Foods.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list foods", err)
	}

	out := make([]inbound.FoodDTO, 0, len(foods))
	for _, f := range foods {
		out = append(out, inbound.NewFoodDTO(f))
	}

	if data, err := json.Marshal(out); err == nil {
		if err := s.Cache.Set(ctx, foodCatalogKey, data, foodCatalogTTL); err != nil {
			s.logger.Warn("Food catalog cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

// CreateFood adds a catalog entry
func (s *Service) CreateFood(ctx context.Context, actor inbound.Actor, cmd inbound.FoodCommand) (*inbound.FoodDTO, error) {
	if err := s.Validator.Validate(cmd); err != nil {
		return nil, err
	}

	f, err := food.New(cmd.Attributes())
	if err != nil {
		return nil, apperrors.NewRuleViolationError(err)
	}

	if err := s.Foods.Create(ctx, f); err != nil {
		return nil, foodWriteError("create food", err)
	}

	s.foodChanged(ctx, actor, audit.ActionFoodCreated, f)
	dto := inbound.NewFoodDTO(f)
	return &dto, nil
}

// UpdateFood replaces a catalog entry's attributes
func (s *Service) UpdateFood(ctx context.Context, actor inbound.Actor, id uuid.UUID, cmd inbound.FoodCommand) (*inbound.FoodDTO, error) {
	if err := s.Validator.Validate(cmd); err != nil {
		return nil, err
	}

	f, err := s.Foods.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, food.ErrFoodNotFound) {
			return nil, apperrors.NewNotFoundError("food")
		}
		return nil, apperrors.NewDatabaseError("find food", err)
	}

	if err := f.Apply(cmd.Attributes()); err != nil {
		return nil, apperrors.NewRuleViolationError(err)
	}

	if err := s.Foods.Update(ctx, f); err != nil {
		return nil, foodWriteError("update food", err)
	}

	s.foodChanged(ctx, actor, audit.ActionFoodUpdated, f)
	dto := inbound.NewFoodDTO(f)
	return &dto, nil
}

// DeleteFood removes a catalog entry
func (s *Service) DeleteFood(ctx context.Context, actor inbound.Actor, id uuid.UUID) error {
	f, err := s.Foods.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, food.ErrFoodNotFound) {
			return apperrors.NewNotFoundError("food")
		}
		return apperrors.NewDatabaseError("find food", err)
	}

	if err := s.Foods.Delete(ctx, id); err != nil {
		if errors.Is(err, food.ErrFoodNotFound) {
			return apperrors.NewNotFoundError("food")
		}
		return apperrors.NewDatabaseError("delete food", err)
	}

	s.foodChanged(ctx, actor, audit.ActionFoodDeleted, f)
	return nil
}

// Audit returns the latest audit entries, newest first
func (s *Service) Audit(ctx context.Context, limit int) ([]*audit.Entry, error) {
	if limit <= 0 {
		limit = defaultAuditSize
	}
	limit = min(limit, maxAuditSize)

	entries, err := s.AuditLog.Latest(ctx, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("read audit log", err)
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}
	return entries, nil
}

func (s *Service) foodChanged(ctx context.Context, actor inbound.Actor, action string, f *food.Food) {
	if err := s.Cache.Delete(ctx, foodCatalogKey); err != nil {
		s.logger.Warn("Failed to invalidate food catalog cache", zap.Error(err))
	}
	s.audit(ctx, actor, action, "food", f.ID.String(), map[string]interface{}{"name": f.Name})
}

func (s *Service) audit(ctx context.Context, actor inbound.Actor, action, resource, resourceID string, metadata map[string]interface{}) {
	entry := audit.NewEntry(actor.UserID, actor.Role.String(), action, resource, resourceID, metadata)
	if err := s.AuditLog.Append(ctx, entry); err != nil {
		s.logger.Warn("Failed to append audit entry", zap.String("action", action), zap.Error(err))
	}
}

func foodWriteError(operation string, err error) error {
	if errors.Is(err, food.ErrDuplicateFood) {
		return apperrors.NewConflictError("A food with this name already exists")
	}
	return apperrors.NewDatabaseError(operation, err)
}
