package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/ayurwell/portal/internal/domain/patient"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PatientRepository implements the patient repository interface using GORM
type PatientRepository struct {
	db *gorm.DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *gorm.DB) outbound.PatientRepository {
	return &PatientRepository{db: db}
}

// Create stores a new patient record
func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	return r.db.WithContext(ctx).Create(PatientToModel(p)).Error
}

// Update saves a patient record
func (r *PatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	result := r.db.WithContext(ctx).Save(PatientToModel(p))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return patient.ErrPatientNotFound
	}
	return nil
}

// FindByID finds a patient record by ID
func (r *PatientRepository) FindByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var model PatientModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, result.Error
	}

	return ModelToPatient(&model), nil
}

// FindByPractitioner lists a practitioner's patients, most recently active first
func (r *PatientRepository) FindByPractitioner(ctx context.Context, practitionerID uuid.UUID, filter outbound.PatientFilter) ([]*patient.Patient, error) {
	query := r.db.WithContext(ctx).
		Where("practitioner_id = ?", practitionerID).
		Order("last_activity DESC")

	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		like := "%" + q + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []PatientModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return toPatients(models), nil
}

// FindByUserID returns the records linked to a patient account
func (r *PatientRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*patient.Patient, error) {
	var models []PatientModel

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toPatients(models), nil
}

// LinkAccount attaches every unlinked record with this e-mail to userID
func (r *PatientRepository) LinkAccount(ctx context.Context, email string, userID uuid.UUID) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Model(&PatientModel{}).
		Where("email = ? AND user_id IS NULL", email).
		Update("user_id", userID)
	return result.RowsAffected, result.Error
}

func toPatients(models []PatientModel) []*patient.Patient {
	patients := make([]*patient.Patient, len(models))
	for i := range models {
		patients[i] = ModelToPatient(&models[i])
	}
	return patients
}
