package gorm

import (
	"context"
	"errors"

	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorRepository implements the doctor repository interface using GORM
type DoctorRepository struct {
	db *gorm.DB
}

// NewDoctorRepository creates a new doctor repository
func NewDoctorRepository(db *gorm.DB) outbound.DoctorRepository {
	return &DoctorRepository{db: db}
}

// Save inserts or updates a profile
func (r *DoctorRepository) Save(ctx context.Context, p *doctor.Profile) error {
	return r.db.WithContext(ctx).Save(DoctorToModel(p)).Error
}

// FindByID finds a profile by the practitioner's user ID
func (r *DoctorRepository) FindByID(ctx context.Context, id uuid.UUID) (*doctor.Profile, error) {
	var model DoctorProfileModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrDoctorNotFound
		}
		return nil, result.Error
	}

	return ModelToDoctor(&model), nil
}

// List returns profiles ordered by name, optionally in one status
func (r *DoctorRepository) List(ctx context.Context, status *doctor.Status) ([]*doctor.Profile, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var models []DoctorProfileModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	profiles := make([]*doctor.Profile, len(models))
	for i := range models {
		profiles[i] = ModelToDoctor(&models[i])
	}
	return profiles, nil
}
