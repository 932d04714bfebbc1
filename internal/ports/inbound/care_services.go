package inbound

import (
	"context"
	"time"

	"github.com/ayurwell/portal/internal/domain/appointment"
	"github.com/ayurwell/portal/internal/domain/dailylog"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/patient"
	"github.com/google/uuid"
)

// ProfileService defines the self-service profile use cases
type ProfileService interface {
	GetProfile(ctx context.Context, actor Actor) (*UserDTO, error)
	UpdateProfile(ctx context.Context, actor Actor, cmd UpdateProfileCommand) (*UserDTO, error)
	UploadAvatar(ctx context.Context, actor Actor, cmd UploadAvatarCommand) (*UserDTO, error)
}

// UpdateProfileCommand carries the editable profile fields
type UpdateProfileCommand struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Age      *int   `json:"age,omitempty" validate:"omitempty,min=1,max=150"`
	Gender   string `json:"gender,omitempty" validate:"max=40"`
	Phone    string `json:"phone,omitempty" validate:"max=40"`
	Location string `json:"location,omitempty" validate:"max=120"`
}

// UploadAvatarCommand is an already-read avatar image
type UploadAvatarCommand struct {
	ContentType string
	Data        []byte
}

// PatientService defines the practitioner's patient management use cases
type PatientService interface {
	Intake(ctx context.Context, actor Actor, cmd IntakeCommand) (*PatientDTO, error)
	List(ctx context.Context, actor Actor, query PatientQuery) ([]PatientDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*PatientDTO, error)
	ChangeStatus(ctx context.Context, actor Actor, id uuid.UUID, status patient.Status) (*PatientDTO, error)
}

// IntakeCommand is the add-patient form
type IntakeCommand struct {
	Name           string                `json:"name" validate:"required,min=2,max=100"`
	Email          string                `json:"email,omitempty" validate:"omitempty,email"`
	Age            int                   `json:"age" validate:"required,min=1,max=150"`
	WaterIntake    *int                  `json:"waterIntake,omitempty" validate:"omitempty,min=0"`
	BowelMovement  patient.BowelMovement `json:"bowelMovement" validate:"required,oneof=normal constipated loose"`
	Prakriti       patient.Prakriti      `json:"prakriti" validate:"required,prakriti"`
	Dosha          patient.Dosha         `json:"dosha" validate:"required,dosha"`
	Observations   string                `json:"observations,omitempty" validate:"max=4000"`
	MedicalHistory string                `json:"medicalHistory,omitempty" validate:"max=4000"`
	Allergies      string                `json:"allergies,omitempty" validate:"max=1000"`
}

// PatientQuery filters the patient list
type PatientQuery struct {
	Status *patient.Status
	Query  string
}

// ChangePatientStatusCommand is the body of a status change
type ChangePatientStatusCommand struct {
	Status patient.Status `json:"status" validate:"required,oneof=Active Inactive Follow-up"`
}

// PatientDTO is the transport form of a patient record
type PatientDTO struct {
	ID             uuid.UUID             `json:"id"`
	UserID         *uuid.UUID            `json:"userId,omitempty"`
	Name           string                `json:"name"`
	Email          string                `json:"email,omitempty"`
	Avatar         string                `json:"avatar,omitempty"`
	Status         patient.Status        `json:"status"`
	LastActivity   time.Time             `json:"lastActivity"`
	Prakriti       patient.Prakriti      `json:"prakriti"`
	Dosha          patient.Dosha         `json:"dosha"`
	Age            int                   `json:"age"`
	WaterIntake    int                   `json:"waterIntake"`
	BowelMovement  patient.BowelMovement `json:"bowelMovement"`
	Observations   string                `json:"observations,omitempty"`
	MedicalHistory string                `json:"medicalHistory,omitempty"`
	Allergies      string                `json:"allergies,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
}

// NewPatientDTO converts the record for transport
func NewPatientDTO(p *patient.Patient) PatientDTO {
	return PatientDTO{
		ID:             p.ID,
		UserID:         p.UserID,
		Name:           p.Name,
		Email:          p.Email,
		Avatar:         p.Avatar,
		Status:         p.Status,
		LastActivity:   p.LastActivity,
		Prakriti:       p.Prakriti,
		Dosha:          p.Dosha,
		Age:            p.Age,
		WaterIntake:    p.WaterIntake,
		BowelMovement:  p.BowelMovement,
		Observations:   p.Observations,
		MedicalHistory: p.MedicalHistory,
		Allergies:      p.Allergies,
		CreatedAt:      p.CreatedAt,
	}
}

// DoctorService defines the doctor directory and self-service use cases
type DoctorService interface {
	ListVerified(ctx context.Context) ([]DoctorDTO, error)
	GetOwn(ctx context.Context, actor Actor) (*DoctorDTO, error)
	UpdateOwn(ctx context.Context, actor Actor, cmd UpdateDoctorCommand) (*DoctorDTO, error)
}

// UpdateDoctorCommand carries the self-editable doctor fields
type UpdateDoctorCommand struct {
	Specialization string `json:"specialization" validate:"max=120"`
	Bio            string `json:"bio" validate:"max=2000"`
}

// DoctorDTO is the transport form of a doctor profile
type DoctorDTO struct {
	ID             uuid.UUID     `json:"id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Specialization string        `json:"specialization,omitempty"`
	Bio            string        `json:"bio,omitempty"`
	Status         doctor.Status `json:"status"`
	VerifiedAt     *time.Time    `json:"verifiedAt,omitempty"`
}

// NewDoctorDTO converts the profile for transport
func NewDoctorDTO(p *doctor.Profile) DoctorDTO {
	return DoctorDTO{
		ID:             p.ID,
		Name:           p.Name,
		Email:          p.Email,
		Specialization: p.Specialization,
		Bio:            p.Bio,
		Status:         p.Status,
		VerifiedAt:     p.VerifiedAt,
	}
}

// AppointmentService defines the booking use cases
type AppointmentService interface {
	Book(ctx context.Context, actor Actor, cmd BookAppointmentCommand) (*AppointmentDTO, error)
	List(ctx context.Context, actor Actor) (*AppointmentList, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*AppointmentDTO, error)
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status appointment.Status) (*AppointmentDTO, error)
}

// BookAppointmentCommand is the booking form. Date is YYYY-MM-DD or RFC3339.
type BookAppointmentCommand struct {
	DoctorID uuid.UUID `json:"doctorId" validate:"required"`
	Date     string    `json:"date" validate:"required"`
	Title    string    `json:"title,omitempty" validate:"max=200"`
	Notes    string    `json:"notes,omitempty" validate:"max=2000"`
}

// UpdateAppointmentStatusCommand is the practitioner's status change
type UpdateAppointmentStatusCommand struct {
	Status appointment.Status `json:"status" validate:"required,oneof=completed cancelled"`
}

// AppointmentDTO is the transport form of an appointment
type AppointmentDTO struct {
	ID             uuid.UUID          `json:"id"`
	Title          string             `json:"title"`
	PatientID      uuid.UUID          `json:"patientId"`
	PatientName    string             `json:"patientName"`
	DoctorID       uuid.UUID          `json:"doctorId"`
	DoctorName     string             `json:"doctorName"`
	StartTimestamp time.Time          `json:"startTimestamp"`
	EndTimestamp   time.Time          `json:"endTimestamp"`
	Status         appointment.Status `json:"status"`
	Notes          string             `json:"notes,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// NewAppointmentDTO converts the appointment for transport
func NewAppointmentDTO(a *appointment.Appointment) AppointmentDTO {
	return AppointmentDTO{
		ID:             a.ID(),
		Title:          a.Title(),
		PatientID:      a.PatientID(),
		PatientName:    a.PatientName(),
		DoctorID:       a.DoctorID(),
		DoctorName:     a.DoctorName(),
		StartTimestamp: a.Start(),
		EndTimestamp:   a.End(),
		Status:         a.Status(),
		Notes:          a.Notes(),
		CreatedAt:      a.CreatedAt(),
	}
}

// AppointmentList groups appointments for the calendar views
type AppointmentList struct {
	Upcoming []AppointmentDTO `json:"upcoming"`
	Past     []AppointmentDTO `json:"past"`
}

// DailyLogService defines the patient's check-in use cases
type DailyLogService interface {
	Submit(ctx context.Context, actor Actor, cmd SubmitDailyLogCommand) (*DailyLogDTO, error)
	List(ctx context.Context, actor Actor, from, to string) ([]DailyLogDTO, error)
	Weekly(ctx context.Context, actor Actor) (*dailylog.WeeklySummary, error)
}

// SubmitDailyLogCommand is the check-in form
type SubmitDailyLogCommand struct {
	Date         string           `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EnergyLevel  int              `json:"energyLevel" validate:"required,min=1,max=10"`
	Digestion    dailylog.Quality `json:"digestion" validate:"required,oneof=good fair poor"`
	SleepQuality dailylog.Quality `json:"sleepQuality" validate:"required,oneof=good fair poor"`
	WaterIntake  *int             `json:"waterIntake,omitempty" validate:"omitempty,min=0"`
	Notes        string           `json:"notes,omitempty" validate:"max=2000"`
}

// DailyLogDTO is the transport form of a daily log
type DailyLogDTO struct {
	ID           uuid.UUID        `json:"id"`
	Date         string           `json:"date"`
	EnergyLevel  int              `json:"energyLevel"`
	Digestion    dailylog.Quality `json:"digestion"`
	SleepQuality dailylog.Quality `json:"sleepQuality"`
	WaterIntake  *int             `json:"waterIntake,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// NewDailyLogDTO converts the log for transport
func NewDailyLogDTO(l *dailylog.DailyLog) DailyLogDTO {
	return DailyLogDTO{
		ID:           l.ID,
		Date:         l.Date,
		EnergyLevel:  l.EnergyLevel,
		Digestion:    l.Digestion,
		SleepQuality: l.SleepQuality,
		WaterIntake:  l.WaterIntake,
		Notes:        l.Notes,
		CreatedAt:    l.CreatedAt,
	}
}
