package gorm

import (
	"context"
	"errors"

	"github.com/ayurwell/portal/internal/domain/dietplan"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DietPlanRepository implements the diet plan repository interface using GORM
type DietPlanRepository struct {
	db *gorm.DB
}

// NewDietPlanRepository creates a new diet plan repository
func NewDietPlanRepository(db *gorm.DB) outbound.DietPlanRepository {
	return &DietPlanRepository{db: db}
}

// Create stores a new plan
func (r *DietPlanRepository) Create(ctx context.Context, plan *dietplan.DietPlan) error {
	return r.db.WithContext(ctx).Create(DietPlanToModel(plan)).Error
}

// UpdateWithVersion updates a plan with optimistic locking
func (r *DietPlanRepository) UpdateWithVersion(ctx context.Context, plan *dietplan.DietPlan, expectedVersion int64) error {
	model := DietPlanToModel(plan)

	result := r.db.WithContext(ctx).
		Model(&DietPlanModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&DietPlanModel{}).Where("id = ?", model.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return dietplan.ErrDietPlanNotFound
		}
		return outbound.ErrVersionConflict
	}

	return nil
}

// FindByID finds a plan by ID
func (r *DietPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*dietplan.DietPlan, error) {
	var model DietPlanModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, dietplan.ErrDietPlanNotFound
		}
		return nil, result.Error
	}

	return ModelToDietPlan(&model), nil
}

// FindByPractitioner lists a practitioner's plans, newest first
func (r *DietPlanRepository) FindByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*dietplan.DietPlan, error) {
	var models []DietPlanModel

	err := r.db.WithContext(ctx).
		Where("practitioner_id = ?", practitionerID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	plans := make([]*dietplan.DietPlan, len(models))
	for i := range models {
		plans[i] = ModelToDietPlan(&models[i])
	}
	return plans, nil
}

// FindLatestSent returns the most recently sent plan addressed to a patient account
func (r *DietPlanRepository) FindLatestSent(ctx context.Context, patientUserID uuid.UUID) (*dietplan.DietPlan, error) {
	var model DietPlanModel

	result := r.db.WithContext(ctx).
		Where("patient_user_id = ? AND status = ?", patientUserID, string(dietplan.StatusSent)).
		Order("sent_at DESC").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, dietplan.ErrDietPlanNotFound
		}
		return nil, result.Error
	}

	return ModelToDietPlan(&model), nil
}

// CountByPractitioner counts a practitioner's plans
func (r *DietPlanRepository) CountByPractitioner(ctx context.Context, practitionerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&DietPlanModel{}).
		Where("practitioner_id = ?", practitionerID).
		Count(&count).Error
	return count, err
}
