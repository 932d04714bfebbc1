// Package gorm provides GORM model definitions for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayurwell/portal/internal/domain/dietplan"
	"github.com/google/uuid"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(255);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(20);index;default:''"`
	Age          *int
	Gender       string `gorm:"type:varchar(40)"`
	Phone        string `gorm:"type:varchar(40)"`
	Location     string `gorm:"type:varchar(120)"`
	AvatarURL    string `gorm:"type:text"`
	MFAEnabled   bool   `gorm:"default:false"`
	MFASecret    string `gorm:"type:varchar(64)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// PatientModel represents a practitioner's patient record
type PatientModel struct {
	ID             uuid.UUID  `gorm:"type:char(36);primaryKey"`
	PractitionerID uuid.UUID  `gorm:"type:char(36);not null;index"`
	UserID         *uuid.UUID `gorm:"type:char(36);index"`
	Name           string     `gorm:"type:varchar(100);not null"`
	Email          string     `gorm:"type:varchar(255);index"`
	Avatar         string     `gorm:"type:text"`
	Status         string     `gorm:"type:varchar(20);not null;index"`
	LastActivity   time.Time  `gorm:"index"`
	Prakriti       string     `gorm:"type:varchar(20)"`
	Dosha          string     `gorm:"type:varchar(10)"`
	Age            int
	WaterIntake    int
	BowelMovement  string `gorm:"type:varchar(20)"`
	Observations   string `gorm:"type:text"`
	MedicalHistory string `gorm:"type:text"`
	Allergies      string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DoctorProfileModel represents a practitioner's public profile
type DoctorProfileModel struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name           string    `gorm:"type:varchar(100);not null"`
	Email          string    `gorm:"type:varchar(255)"`
	Specialization string    `gorm:"type:varchar(120)"`
	Bio            string    `gorm:"type:text"`
	Status         string    `gorm:"type:varchar(20);not null;index"`
	VerifiedAt     *time.Time
	VerifiedBy     *uuid.UUID `gorm:"type:char(36)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AppointmentModel represents a booked consultation
type AppointmentModel struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey"`
	Title          string    `gorm:"type:varchar(200)"`
	PatientID      uuid.UUID `gorm:"type:char(36);not null;index"`
	PatientName    string    `gorm:"type:varchar(100)"`
	DoctorID       uuid.UUID `gorm:"type:char(36);not null;index"`
	DoctorName     string    `gorm:"type:varchar(100)"`
	StartTimestamp time.Time `gorm:"not null;index"`
	EndTimestamp   time.Time `gorm:"not null"`
	Status         string    `gorm:"type:varchar(20);not null;index"`
	Notes          string    `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DailyLogModel represents one day's check-in
type DailyLogModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_daily_logs_user_date"`
	Date         string    `gorm:"type:char(10);not null;uniqueIndex:idx_daily_logs_user_date"`
	EnergyLevel  int       `gorm:"not null"`
	Digestion    string    `gorm:"type:varchar(10)"`
	SleepQuality string    `gorm:"type:varchar(10)"`
	WaterIntake  *int
	Notes        string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DietPlanModel represents the GORM model for diet plans
type DietPlanModel struct {
	ID             uuid.UUID  `gorm:"type:char(36);primaryKey"`
	Version        int64      `gorm:"default:1"`
	PatientID      uuid.UUID  `gorm:"type:char(36);not null;index"`
	PatientUserID  *uuid.UUID `gorm:"type:char(36);index"`
	PatientName    string     `gorm:"type:varchar(100)"`
	PractitionerID uuid.UUID  `gorm:"type:char(36);not null;index"`
	Title          string     `gorm:"type:varchar(200);not null"`
	Days           DaysJSON   `gorm:"type:json"`
	Notes          string     `gorm:"type:text"`
	Constraints    string     `gorm:"type:text"`
	AIGenerated    bool       `gorm:"column:ai_generated;default:false"`
	AIModel        string     `gorm:"column:ai_model;type:varchar(100)"`
	Status         string     `gorm:"type:varchar(20);not null;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SentAt         *time.Time `gorm:"index"`
}

// FoodModel represents a catalog entry
type FoodModel struct {
	ID           uuid.UUID         `gorm:"type:char(36);primaryKey"`
	Name         string            `gorm:"type:varchar(100);uniqueIndex;not null"`
	Category     string            `gorm:"type:varchar(60);index"`
	Rasa         StringSlice       `gorm:"type:json"`
	Virya        string            `gorm:"type:varchar(10)"`
	Guna         StringSlice       `gorm:"type:json"`
	DoshaEffects DoshaEffectsModel `gorm:"embedded;embeddedPrefix:dosha_"`
	Calories     float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DoshaEffectsModel is embedded in FoodModel
type DoshaEffectsModel struct {
	Vata  string `gorm:"type:varchar(10)"`
	Pitta string `gorm:"type:varchar(10)"`
	Kapha string `gorm:"type:varchar(10)"`
}

// NotificationModel represents an in-app notification
type NotificationModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index"`
	Kind      string    `gorm:"type:varchar(40);not null"`
	Title     string    `gorm:"type:varchar(200)"`
	Body      string    `gorm:"type:text"`
	Link      string    `gorm:"type:varchar(255)"`
	Read      bool      `gorm:"default:false"`
	CreatedAt time.Time `gorm:"index"`
	ReadAt    *time.Time
}

// AuditEntryModel represents one audit record
type AuditEntryModel struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	ActorID    uuid.UUID `gorm:"type:char(36);index"`
	ActorRole  string    `gorm:"type:varchar(20)"`
	Action     string    `gorm:"type:varchar(60);index"`
	Resource   string    `gorm:"type:varchar(40)"`
	ResourceID string    `gorm:"type:varchar(64)"`
	Metadata   JSONField `gorm:"type:json"`
	CreatedAt  time.Time `gorm:"index"`
}

// AllModels lists every model for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&PatientModel{},
		&DoctorProfileModel{},
		&AppointmentModel{},
		&DailyLogModel{},
		&DietPlanModel{},
		&FoodModel{},
		&NotificationModel{},
		&AuditEntryModel{},
	}
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

// JSONField custom type for handling JSON fields
type JSONField map[string]interface{}

// Scan implements the sql.Scanner interface
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = JSONField{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
}

// Value implements the driver.Valuer interface
func (j JSONField) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(j)
	return string(b), err
}

// DaysJSON stores the day-by-day meal plan as a JSON column
type DaysJSON []dietplan.Day

// Scan implements the sql.Scanner interface
func (d *DaysJSON) Scan(value interface{}) error {
	if value == nil {
		*d = DaysJSON{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("cannot scan %T into DaysJSON", value)
	}
}

// Value implements the driver.Valuer interface
func (d DaysJSON) Value() (driver.Value, error) {
	if len(d) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(d)
	return string(b), err
}

// TableName methods for custom table names
func (UserModel) TableName() string {
	return "users"
}

func (PatientModel) TableName() string {
	return "patients"
}

func (DoctorProfileModel) TableName() string {
	return "doctor_profiles"
}

func (AppointmentModel) TableName() string {
	return "appointments"
}

func (DailyLogModel) TableName() string {
	return "daily_logs"
}

func (DietPlanModel) TableName() string {
	return "diet_plans"
}

func (FoodModel) TableName() string {
	return "foods"
}

func (NotificationModel) TableName() string {
	return "notifications"
}

func (AuditEntryModel) TableName() string {
	return "audit_entries"
}
