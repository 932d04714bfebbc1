package gorm

import (
	"github.com/ayurwell/portal/internal/domain/appointment"
	"github.com/ayurwell/portal/internal/domain/audit"
	"github.com/ayurwell/portal/internal/domain/dailylog"
	"github.com/ayurwell/portal/internal/domain/dietplan"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/food"
	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/domain/patient"
	"github.com/ayurwell/portal/internal/domain/user"
)

// UserToModel converts a domain user to a GORM model
func UserToModel(u *user.User) *UserModel {
	s := u.Snapshot()
	return &UserModel{
		ID:           s.ID,
		Email:        s.Email,
		Name:         s.Name,
		PasswordHash: s.PasswordHash,
		Role:         string(s.Role),
		Age:          s.Age,
		Gender:       s.Gender,
		Phone:        s.Phone,
		Location:     s.Location,
		AvatarURL:    s.AvatarURL,
		MFAEnabled:   s.MFAEnabled,
		MFASecret:    s.MFASecret,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		LastLoginAt:  s.LastLoginAt,
	}
}

// ModelToUser converts a GORM model to a domain user
func ModelToUser(m *UserModel) *user.User {
	return user.Reconstitute(user.Snapshot{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Role:         user.Role(m.Role),
		Age:          m.Age,
		Gender:       m.Gender,
		Phone:        m.Phone,
		Location:     m.Location,
		AvatarURL:    m.AvatarURL,
		MFAEnabled:   m.MFAEnabled,
		MFASecret:    m.MFASecret,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		LastLoginAt:  m.LastLoginAt,
	})
}

// PatientToModel converts a patient record to a GORM model
func PatientToModel(p *patient.Patient) *PatientModel {
	return &PatientModel{
		ID:             p.ID,
		PractitionerID: p.PractitionerID,
		UserID:         p.UserID,
		Name:           p.Name,
		Email:          p.Email,
		Avatar:         p.Avatar,
		Status:         string(p.Status),
		LastActivity:   p.LastActivity,
		Prakriti:       string(p.Prakriti),
		Dosha:          string(p.Dosha),
		Age:            p.Age,
		WaterIntake:    p.WaterIntake,
		BowelMovement:  string(p.BowelMovement),
		Observations:   p.Observations,
		MedicalHistory: p.MedicalHistory,
		Allergies:      p.Allergies,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ModelToPatient converts a GORM model to a patient record
func ModelToPatient(m *PatientModel) *patient.Patient {
	return &patient.Patient{
		ID:             m.ID,
		PractitionerID: m.PractitionerID,
		UserID:         m.UserID,
		Name:           m.Name,
		Email:          m.Email,
		Avatar:         m.Avatar,
		Status:         patient.Status(m.Status),
		LastActivity:   m.LastActivity,
		Prakriti:       patient.Prakriti(m.Prakriti),
		Dosha:          patient.Dosha(m.Dosha),
		Age:            m.Age,
		WaterIntake:    m.WaterIntake,
		BowelMovement:  patient.BowelMovement(m.BowelMovement),
		Observations:   m.Observations,
		MedicalHistory: m.MedicalHistory,
		Allergies:      m.Allergies,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// DoctorToModel converts a doctor profile to a GORM model
func DoctorToModel(p *doctor.Profile) *DoctorProfileModel {
	return &DoctorProfileModel{
		ID:             p.ID,
		Name:           p.Name,
		Email:          p.Email,
		Specialization: p.Specialization,
		Bio:            p.Bio,
		Status:         string(p.Status),
		VerifiedAt:     p.VerifiedAt,
		VerifiedBy:     p.VerifiedBy,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ModelToDoctor converts a GORM model to a doctor profile
func ModelToDoctor(m *DoctorProfileModel) *doctor.Profile {
	return &doctor.Profile{
		ID:             m.ID,
		Name:           m.Name,
		Email:          m.Email,
		Specialization: m.Specialization,
		Bio:            m.Bio,
		Status:         doctor.Status(m.Status),
		VerifiedAt:     m.VerifiedAt,
		VerifiedBy:     m.VerifiedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// AppointmentToModel converts an appointment to a GORM model
func AppointmentToModel(a *appointment.Appointment) *AppointmentModel {
	s := a.Snapshot()
	return &AppointmentModel{
		ID:             s.ID,
		Title:          s.Title,
		PatientID:      s.PatientID,
		PatientName:    s.PatientName,
		DoctorID:       s.DoctorID,
		DoctorName:     s.DoctorName,
		StartTimestamp: s.Start,
		EndTimestamp:   s.End,
		Status:         string(s.Status),
		Notes:          s.Notes,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// ModelToAppointment converts a GORM model to an appointment
func ModelToAppointment(m *AppointmentModel) *appointment.Appointment {
	return appointment.Reconstitute(appointment.Snapshot{
		ID:          m.ID,
		Title:       m.Title,
		PatientID:   m.PatientID,
		PatientName: m.PatientName,
		DoctorID:    m.DoctorID,
		DoctorName:  m.DoctorName,
		Start:       m.StartTimestamp.UTC(),
		End:         m.EndTimestamp.UTC(),
		Status:      appointment.Status(m.Status),
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	})
}

// DailyLogToModel converts a daily log to a GORM model
func DailyLogToModel(l *dailylog.DailyLog) *DailyLogModel {
	return &DailyLogModel{
		ID:           l.ID,
		UserID:       l.UserID,
		Date:         l.Date,
		EnergyLevel:  l.EnergyLevel,
		Digestion:    string(l.Digestion),
		SleepQuality: string(l.SleepQuality),
		WaterIntake:  l.WaterIntake,
		Notes:        l.Notes,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// ModelToDailyLog converts a GORM model to a daily log
func ModelToDailyLog(m *DailyLogModel) *dailylog.DailyLog {
	return &dailylog.DailyLog{
		ID:           m.ID,
		UserID:       m.UserID,
		Date:         m.Date,
		EnergyLevel:  m.EnergyLevel,
		Digestion:    dailylog.Quality(m.Digestion),
		SleepQuality: dailylog.Quality(m.SleepQuality),
		WaterIntake:  m.WaterIntake,
		Notes:        m.Notes,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// DietPlanToModel converts a diet plan to a GORM model
func DietPlanToModel(p *dietplan.DietPlan) *DietPlanModel {
	s := p.Snapshot()
	return &DietPlanModel{
		ID:             s.ID,
		Version:        s.Version,
		PatientID:      s.PatientID,
		PatientUserID:  s.PatientUserID,
		PatientName:    s.PatientName,
		PractitionerID: s.PractitionerID,
		Title:          s.Title,
		Days:           DaysJSON(s.Days),
		Notes:          s.Notes,
		Constraints:    s.Constraints,
		AIGenerated:    s.AIGenerated,
		AIModel:        s.AIModel,
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		SentAt:         s.SentAt,
	}
}

// ModelToDietPlan converts a GORM model to a diet plan
func ModelToDietPlan(m *DietPlanModel) *dietplan.DietPlan {
	return dietplan.Reconstitute(dietplan.Snapshot{
		ID:             m.ID,
		Version:        m.Version,
		PatientID:      m.PatientID,
		PatientUserID:  m.PatientUserID,
		PatientName:    m.PatientName,
		PractitionerID: m.PractitionerID,
		Title:          m.Title,
		Days:           []dietplan.Day(m.Days),
		Notes:          m.Notes,
		Constraints:    m.Constraints,
		AIGenerated:    m.AIGenerated,
		AIModel:        m.AIModel,
		Status:         dietplan.Status(m.Status),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		SentAt:         m.SentAt,
	})
}

// FoodToModel converts a catalog entry to a GORM model
func FoodToModel(f *food.Food) *FoodModel {
	return &FoodModel{
		ID:       f.ID,
		Name:     f.Name,
		Category: f.Category,
		Rasa:     StringSlice(f.Rasa),
		Virya:    string(f.Virya),
		Guna:     StringSlice(f.Guna),
		DoshaEffects: DoshaEffectsModel{
			Vata:  string(f.DoshaEffects.Vata),
			Pitta: string(f.DoshaEffects.Pitta),
			Kapha: string(f.DoshaEffects.Kapha),
		},
		Calories:  f.Calories,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ModelToFood converts a GORM model to a catalog entry
func ModelToFood(m *FoodModel) *food.Food {
	return &food.Food{
		ID:       m.ID,
		Name:     m.Name,
		Category: m.Category,
		Rasa:     []string(m.Rasa),
		Virya:    food.Virya(m.Virya),
		Guna:     []string(m.Guna),
		DoshaEffects: food.DoshaEffects{
			Vata:  food.Effect(m.DoshaEffects.Vata),
			Pitta: food.Effect(m.DoshaEffects.Pitta),
			Kapha: food.Effect(m.DoshaEffects.Kapha),
		},
		Calories:  m.Calories,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// NotificationToModel converts a notification to a GORM model
func NotificationToModel(n *notification.Notification) *NotificationModel {
	return &NotificationModel{
		ID:        n.ID,
		UserID:    n.UserID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Body:      n.Body,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}

// ModelToNotification converts a GORM model to a notification
func ModelToNotification(m *NotificationModel) *notification.Notification {
	return &notification.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Kind:      notification.Kind(m.Kind),
		Title:     m.Title,
		Body:      m.Body,
		Link:      m.Link,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
		ReadAt:    m.ReadAt,
	}
}

// AuditToModel converts an audit entry to a GORM model
func AuditToModel(e *audit.Entry) *AuditEntryModel {
	return &AuditEntryModel{
		ID:         e.ID,
		ActorID:    e.ActorID,
		ActorRole:  e.ActorRole,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		Metadata:   JSONField(e.Metadata),
		CreatedAt:  e.CreatedAt,
	}
}

// ModelToAudit converts a GORM model to an audit entry
func ModelToAudit(m *AuditEntryModel) *audit.Entry {
	return &audit.Entry{
		ID:         m.ID,
		ActorID:    m.ActorID,
		ActorRole:  m.ActorRole,
		Action:     m.Action,
		Resource:   m.Resource,
		ResourceID: m.ResourceID,
		Metadata:   map[string]interface{}(m.Metadata),
		CreatedAt:  m.CreatedAt,
	}
}
