// Package dietplan provides the diet plan use cases for practitioners and patients
package dietplan

import (
	"context"
	"errors"
	"time"

	"github.com/ayurwell/portal/internal/domain/dietplan"
	"github.com/ayurwell/portal/internal/domain/patient"
	"github.com/ayurwell/portal/internal/domain/shared"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements inbound.DietPlanService
type Service struct {
	plans      outbound.DietPlanRepository
	patients   outbound.PatientRepository
	ai         inbound.AIService
	validator  *security.Validator
	dispatcher shared.EventDispatcher
	logger     *zap.Logger
	now        func() time.Time
}

var _ inbound.DietPlanService = (*Service)(nil)

// NewService creates a new diet plan service
func NewService(
	plans outbound.DietPlanRepository,
	patients outbound.PatientRepository,
	ai inbound.AIService,
	validator *security.Validator,
	dispatcher shared.EventDispatcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		plans:      plans,
		patients:   patients,
		ai:         ai,
		validator:  validator,
		dispatcher: dispatcher,
		logger:     logger.Named("dietplan-service"),
		now:        time.Now,
	}
}

// Generate asks the AI for a draft plan for one of the practitioner's
// patients. Nothing is stored.
func (s *Service) Generate(ctx context.Context, actor inbound.Actor, cmd inbound.GenerateDietPlanCommand) (*inbound.GeneratedDietPlan, error) {
	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}

	p, err := s.ownedPatient(ctx, actor, cmd.PatientID)
	if err != nil {
		return nil, err
	}

	out, provider, err := s.ai.GenerateInitialDietPlan(ctx, actor, inbound.DietPlanInput{
		PatientProfile: p.DietProfile(),
		Constraints:    cmd.Constraints,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Diet plan generated",
		zap.String("patient_id", p.ID.String()),
		zap.String("provider", provider),
		zap.Int("days", len(out.DietPlan.Plan)),
	)

	return &inbound.GeneratedDietPlan{
		PatientID:   p.ID,
		PatientName: p.Name,
		Constraints: cmd.Constraints,
		Provider:    provider,
		DietPlan:    out.DietPlan,
	}, nil
}

// Save stores a plan as a draft
func (s *Service) Save(ctx context.Context, actor inbound.Actor, cmd inbound.SaveDietPlanCommand) (*inbound.DietPlanDTO, error) {
	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}

	p, err := s.ownedPatient(ctx, actor, cmd.PatientID)
	if err != nil {
		return nil, err
	}

	plan, err := dietplan.New(dietplan.Draft{
		PatientID:      p.ID,
		PatientName:    p.Name,
		PractitionerID: actor.UserID,
		Title:          cmd.Title,
		Days:           cmd.Days,
		Notes:          cmd.Notes,
		Constraints:    cmd.Constraints,
		AIGenerated:    cmd.AIGenerated,
		AIModel:        cmd.AIModel,
	})
	if err != nil {
		return nil, apperrors.NewRuleViolationError(err)
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, apperrors.NewDatabaseError("create diet plan", err)
	}
	s.dispatcher.Dispatch(ctx, plan.Events()...)

	dto := inbound.NewDietPlanDTO(plan)
	return &dto, nil
}

// Update revises the plan's title, days and notes. A concurrent edit makes
// the second writer fail with a conflict.
func (s *Service) Update(ctx context.Context, actor inbound.Actor, id uuid.UUID, cmd inbound.UpdateDietPlanCommand) (*inbound.DietPlanDTO, error) {
	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}

	plan, err := s.ownedPlan(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	expected := plan.Version()
	if err := plan.Revise(actor.UserID, cmd.Title, cmd.Days, cmd.Notes); err != nil {
		return nil, apperrors.NewRuleViolationError(err)
	}

	if err := s.saveVersion(ctx, plan, expected); err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, plan.Events()...)

	dto := inbound.NewDietPlanDTO(plan)
	return &dto, nil
}

// Send delivers the plan to the patient's linked account
func (s *Service) Send(ctx context.Context, actor inbound.Actor, id uuid.UUID) (*inbound.DietPlanDTO, error) {
	plan, err := s.ownedPlan(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	p, err := s.ownedPatient(ctx, actor, plan.PatientID())
	if err != nil {
		return nil, err
	}

	expected := plan.Version()
	if err := plan.Send(actor.UserID, p.UserID); err != nil {
		if errors.Is(err, dietplan.ErrNoLinkedAccount) {
			return nil, apperrors.NewConflictError("Patient has no portal account to send the plan to")
		}
		return nil, apperrors.NewRuleViolationError(err)
	}

	if err := s.saveVersion(ctx, plan, expected); err != nil {
		return nil, err
	}

	p.Touch()
	if err := s.patients.Update(ctx, p); err != nil {
		s.logger.Warn("Failed to record patient activity", zap.String("patient_id", p.ID.String()), zap.Error(err))
	}

	s.dispatcher.Dispatch(ctx, plan.Events()...)
	s.logger.Info("Diet plan sent",
		zap.String("plan_id", plan.ID().String()),
		zap.String("patient_id", p.ID.String()),
	)

	dto := inbound.NewDietPlanDTO(plan)
	return &dto, nil
}

// List returns summaries of the practitioner's plans
func (s *Service) List(ctx context.Context, actor inbound.Actor) ([]dietplan.Summary, error) {
	plans, err := s.plans.FindByPractitioner(ctx, actor.UserID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list diet plans", err)
	}

	out := make([]dietplan.Summary, 0, len(plans))
	for _, p := range plans {
		out = append(out, p.Summary())
	}
	return out, nil
}

// Get returns a plan the caller may read: its author, or the patient it
// was sent to
func (s *Service) Get(ctx context.Context, actor inbound.Actor, id uuid.UUID) (*inbound.DietPlanDTO, error) {
	plan, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	var allowed bool
	switch actor.Role {
	case user.RolePractitioner:
		allowed = plan.OwnedBy(actor.UserID)
	case user.RolePatient:
		allowed = plan.VisibleTo(actor.UserID)
	}
	if !allowed {
		return nil, apperrors.NewDietPlanNotFoundError(id.String())
	}

	dto := inbound.NewDietPlanDTO(plan)
	return &dto, nil
}

// Current returns the plan most recently sent to the calling patient
func (s *Service) Current(ctx context.Context, actor inbound.Actor) (*inbound.DietPlanDTO, error) {
	plan, err := s.current(ctx, actor)
	if err != nil {
		return nil, err
	}
	dto := inbound.NewDietPlanDTO(plan)
	return &dto, nil
}

// Today returns the day of the current plan the patient follows today
func (s *Service) Today(ctx context.Context, actor inbound.Actor) (*inbound.TodayMeals, error) {
	plan, err := s.current(ctx, actor)
	if err != nil {
		return nil, err
	}

	now := s.now()
	day, err := plan.DayFor(now)
	if err != nil {
		return nil, apperrors.NewRuleViolationError(err)
	}

	return &inbound.TodayMeals{
		PlanID:    plan.ID(),
		Title:     plan.Title(),
		Date:      now.UTC().Format("2006-01-02"),
		DayNumber: day.Day,
		TotalDays: len(plan.Days()),
		Day:       day,
	}, nil
}

// SuggestMeals proposes alternatives to a meal from what the patient has at
// hand, taking their constitution and restrictions into account
func (s *Service) SuggestMeals(ctx context.Context, actor inbound.Actor, cmd inbound.SuggestMealsCommand) (*inbound.MealAlternativesOutput, error) {
	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}

	profile, err := s.mealProfile(ctx, actor, cmd.DietaryRestrictions)
	if err != nil {
		return nil, err
	}

	out, _, err := s.ai.SuggestAlternativeMeals(ctx, actor, inbound.MealAlternativesInput{
		PatientProfile:       profile,
		CurrentMeal:          cmd.CurrentMeal,
		AvailableIngredients: cmd.AvailableIngredients,
		DietaryRestrictions:  cmd.DietaryRestrictions,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mealProfile uses the most recently active record linked to the caller.
// Patients no practitioner has recorded yet get an unknown constitution.
func (s *Service) mealProfile(ctx context.Context, actor inbound.Actor, restrictions string) (string, error) {
	records, err := s.patients.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return "", apperrors.NewDatabaseError("find patient records", err)
	}

	var latest *patient.Patient
	for _, r := range records {
		if latest == nil || r.LastActivity.After(latest.LastActivity) {
			latest = r
		}
	}
	if latest == nil {
		latest = &patient.Patient{Prakriti: "Unknown", Dosha: "unknown"}
	}
	return latest.MealProfile(restrictions), nil
}

func (s *Service) current(ctx context.Context, actor inbound.Actor) (*dietplan.DietPlan, error) {
	plan, err := s.plans.FindLatestSent(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, dietplan.ErrDietPlanNotFound) {
			return nil, apperrors.NewAppError(apperrors.CodeDietPlanNotFound, "No diet plan has been sent to you yet", "")
		}
		return nil, apperrors.NewDatabaseError("find current diet plan", err)
	}
	return plan, nil
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (*dietplan.DietPlan, error) {
	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dietplan.ErrDietPlanNotFound) {
			return nil, apperrors.NewDietPlanNotFoundError(id.String())
		}
		return nil, apperrors.NewDatabaseError("find diet plan", err)
	}
	return plan, nil
}

// ownedPlan loads a plan; plans of other practitioners look missing
func (s *Service) ownedPlan(ctx context.Context, actor inbound.Actor, id uuid.UUID) (*dietplan.DietPlan, error) {
	plan, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !plan.OwnedBy(actor.UserID) {
		return nil, apperrors.NewDietPlanNotFoundError(id.String())
	}
	return plan, nil
}

func (s *Service) ownedPatient(ctx context.Context, actor inbound.Actor, id uuid.UUID) (*patient.Patient, error) {
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

func (s *Service) saveVersion(ctx context.Context, plan *dietplan.DietPlan, expected int64) error {
	err := s.plans.UpdateWithVersion(ctx, plan, expected)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, outbound.ErrVersionConflict):
		return apperrors.NewConflictError("Diet plan was changed by someone else, reload and try again").
			WithMetadata("expected_version", expected)
	case errors.Is(err, dietplan.ErrDietPlanNotFound):
		return apperrors.NewDietPlanNotFoundError(plan.ID().String())
	default:
		return apperrors.NewDatabaseError("update diet plan", err)
	}
}
