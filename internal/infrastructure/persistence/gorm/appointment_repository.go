package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/ayurwell/portal/internal/domain/appointment"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentRepository implements the appointment repository interface using GORM
type AppointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *gorm.DB) outbound.AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create stores a new appointment
func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Create(AppointmentToModel(a)).Error
}

// Update saves an appointment
func (r *AppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	result := r.db.WithContext(ctx).Save(AppointmentToModel(a))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

// FindByID finds an appointment by ID
func (r *AppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var model AppointmentModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, result.Error
	}

	return ModelToAppointment(&model), nil
}

// FindByPatient lists a patient's appointments
func (r *AppointmentRepository) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.find(ctx, "patient_id = ?", patientID)
}

// FindByDoctor lists a doctor's appointments
func (r *AppointmentRepository) FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.find(ctx, "doctor_id = ?", doctorID)
}

// CountBetween counts appointments starting in [from, to)
func (r *AppointmentRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&AppointmentModel{}).
		Where("start_timestamp >= ? AND start_timestamp < ?", from.UTC(), to.UTC()).
		Count(&count).Error
	return count, err
}

func (r *AppointmentRepository) find(ctx context.Context, where string, id uuid.UUID) ([]*appointment.Appointment, error) {
	var models []AppointmentModel

	err := r.db.WithContext(ctx).
		Where(where, id).
		Order("start_timestamp DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	list := make([]*appointment.Appointment, len(models))
	for i := range models {
		list[i] = ModelToAppointment(&models[i])
	}
	return list, nil
}
