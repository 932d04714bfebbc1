// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/ayurwell/portal/internal/domain/appointment"
	"github.com/ayurwell/portal/internal/domain/audit"
	"github.com/ayurwell/portal/internal/domain/dailylog"
	"github.com/ayurwell/portal/internal/domain/dietplan"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/food"
	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/domain/patient"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/google/uuid"
)

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// ErrVersionConflict is returned when an optimistic-locking update loses the race
var ErrVersionConflict = errors.New("record was modified concurrently")

// UserRepository defines the interface for user persistence.
// Finders return the domain "not found" sentinel when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *user.User) error
	Update(ctx context.Context, user *user.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	List(ctx context.Context, role *user.Role) ([]*user.User, error)
	CountByRole(ctx context.Context) (map[user.Role]int64, error)
}

// PatientFilter narrows a practitioner's patient list
type PatientFilter struct {
	Status *patient.Status
	Query  string
	Limit  int
}

// PatientRepository defines the interface for patient record persistence
type PatientRepository interface {
	Create(ctx context.Context, p *patient.Patient) error
	Update(ctx context.Context, p *patient.Patient) error
	FindByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	FindByPractitioner(ctx context.Context, practitionerID uuid.UUID, filter PatientFilter) ([]*patient.Patient, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*patient.Patient, error)
	LinkAccount(ctx context.Context, email string, userID uuid.UUID) (int64, error)
}

// DoctorRepository defines the interface for doctor profile persistence
type DoctorRepository interface {
	Save(ctx context.Context, p *doctor.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*doctor.Profile, error)
	List(ctx context.Context, status *doctor.Status) ([]*doctor.Profile, error)
}

// AppointmentRepository defines the interface for appointment persistence.
// List methods order by start time, newest first.
type AppointmentRepository interface {
	Create(ctx context.Context, a *appointment.Appointment) error
	Update(ctx context.Context, a *appointment.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	FindByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error)
	FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error)
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// DailyLogRepository defines the interface for daily log persistence
type DailyLogRepository interface {
	// Upsert stores the log, replacing any existing log of the same user and date
	Upsert(ctx context.Context, log *dailylog.DailyLog) error
	FindByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*dailylog.DailyLog, error)
	FindByUser(ctx context.Context, userID uuid.UUID, from, to string) ([]*dailylog.DailyLog, error)
}

// DietPlanRepository defines the interface for diet plan persistence
type DietPlanRepository interface {
	Create(ctx context.Context, plan *dietplan.DietPlan) error
	// UpdateWithVersion saves the plan only if the stored version still equals expectedVersion
	UpdateWithVersion(ctx context.Context, plan *dietplan.DietPlan, expectedVersion int64) error
	FindByID(ctx context.Context, id uuid.UUID) (*dietplan.DietPlan, error)
	FindByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*dietplan.DietPlan, error)
	FindLatestSent(ctx context.Context, patientUserID uuid.UUID) (*dietplan.DietPlan, error)
	CountByPractitioner(ctx context.Context, practitionerID uuid.UUID) (int64, error)
}

// FoodRepository defines the interface for the food catalog
type FoodRepository interface {
	Create(ctx context.Context, f *food.Food) error
	Update(ctx context.Context, f *food.Food) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*food.Food, error)
	List(ctx context.Context) ([]*food.Food, error)
	Count(ctx context.Context) (int64, error)
}

// NotificationRepository defines the interface for notification persistence
type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	MarkRead(ctx context.Context, n *notification.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error)
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*notification.Notification, error)
}

// AuditRepository defines the interface for the append-only audit log
type AuditRepository interface {
	Append(ctx context.Context, entry *audit.Entry) error
	Latest(ctx context.Context, limit int) ([]*audit.Entry, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// GetDel reads and removes a key in one step, for single-use tokens
	GetDel(ctx context.Context, key string) ([]byte, error)

	// Counter operations
	Increment(ctx context.Context, key string) (int64, error)
}

// StorageService defines the interface for file storage
type StorageService interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// AIProvider is one backend that turns a prompt into JSON text
type AIProvider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	HealthCheck(ctx context.Context) error
}

// EmailService defines the interface for sending emails
type EmailService interface {
	SendPasswordReset(ctx context.Context, to, name, resetLink string) error
}

// NotificationPusher delivers a stored notification to the user's open connections
type NotificationPusher interface {
	Push(userID uuid.UUID, n *notification.Notification)
}
