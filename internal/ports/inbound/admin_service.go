package inbound

import (
	"context"
	"time"

	"github.com/ayurwell/portal/internal/domain/audit"
	"github.com/ayurwell/portal/internal/domain/dailylog"
	"github.com/ayurwell/portal/internal/domain/dietplan"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/food"
	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/google/uuid"
)

// DashboardService builds the role landing pages
type DashboardService interface {
	Practitioner(ctx context.Context, actor Actor) (*PractitionerDashboard, error)
	Patient(ctx context.Context, actor Actor) (*PatientDashboard, error)
	Admin(ctx context.Context, actor Actor) (*AdminDashboard, error)
}

// PractitionerDashboard is the practitioner landing page
type PractitionerDashboard struct {
	TodayAppointments    []AppointmentDTO   `json:"todayAppointments"`
	UpcomingAppointments []AppointmentDTO   `json:"upcomingAppointments"`
	ActivePatients       int                `json:"activePatients"`
	TotalPatients        int                `json:"totalPatients"`
	RecentPatients       []PatientDTO       `json:"recentPatients"`
	DietPlans            []dietplan.Summary `json:"dietPlans"`
}

// PatientDashboard is the patient landing page
type PatientDashboard struct {
	NextAppointment    *AppointmentDTO        `json:"nextAppointment,omitempty"`
	CurrentPlanSummary *dietplan.Summary      `json:"currentPlanSummary,omitempty"`
	TodayLog           *DailyLogDTO           `json:"todayLog,omitempty"`
	Weekly             dailylog.WeeklySummary `json:"weekly"`
}

// AdminDashboard is the admin landing page
type AdminDashboard struct {
	UsersByRole       map[string]int64 `json:"usersByRole"`
	PendingDoctors    int              `json:"pendingDoctors"`
	Foods             int64            `json:"foods"`
	AppointmentsToday int64            `json:"appointmentsToday"`
}

// AdminService defines the back-office use cases
type AdminService interface {
	ListUsers(ctx context.Context, role *user.Role) ([]UserDTO, error)
	ListDoctors(ctx context.Context, status *doctor.Status) ([]DoctorDTO, error)
	ReviewDoctor(ctx context.Context, actor Actor, id uuid.UUID, decision doctor.Status) (*DoctorDTO, error)

	// Food catalog
	ListFoods(ctx context.Context) ([]FoodDTO, error)
	CreateFood(ctx context.Context, actor Actor, cmd FoodCommand) (*FoodDTO, error)
	UpdateFood(ctx context.Context, actor Actor, id uuid.UUID, cmd FoodCommand) (*FoodDTO, error)
	DeleteFood(ctx context.Context, actor Actor, id uuid.UUID) error

	Audit(ctx context.Context, limit int) ([]*audit.Entry, error)
}

// FoodCommand carries a food's editable attributes
type FoodCommand struct {
	Name         string            `json:"name" validate:"required,max=100"`
	Category     string            `json:"category" validate:"max=60"`
	Rasa         []string          `json:"rasa" validate:"dive,oneof=sweet sour salty pungent bitter astringent"`
	Virya        food.Virya        `json:"virya" validate:"omitempty,oneof=heating cooling"`
	Guna         []string          `json:"guna" validate:"dive,max=40"`
	DoshaEffects food.DoshaEffects `json:"doshaEffects"`
	Calories     float64           `json:"calories" validate:"min=0"`
}

// Attributes converts the command into the domain form
func (c FoodCommand) Attributes() food.Attributes {
	return food.Attributes{
		Name:         c.Name,
		Category:     c.Category,
		Rasa:         c.Rasa,
		Virya:        c.Virya,
		Guna:         c.Guna,
		DoshaEffects: c.DoshaEffects,
		Calories:     c.Calories,
	}
}

// FoodDTO is the transport form of a catalog entry
type FoodDTO struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Category     string            `json:"category,omitempty"`
	Rasa         []string          `json:"rasa"`
	Virya        food.Virya        `json:"virya,omitempty"`
	Guna         []string          `json:"guna"`
	DoshaEffects food.DoshaEffects `json:"doshaEffects"`
	Calories     float64           `json:"calories"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// NewFoodDTO converts the entry for transport
func NewFoodDTO(f *food.Food) FoodDTO {
	rasa, guna := f.Rasa, f.Guna
	if rasa == nil {
		rasa = []string{}
	}
	if guna == nil {
		guna = []string{}
	}
	return FoodDTO{
		ID:           f.ID,
		Name:         f.Name,
		Category:     f.Category,
		Rasa:         rasa,
		Virya:        f.Virya,
		Guna:         guna,
		DoshaEffects: f.DoshaEffects,
		Calories:     f.Calories,
		UpdatedAt:    f.UpdatedAt,
	}
}

// NotificationService defines the in-app notification use cases
type NotificationService interface {
	List(ctx context.Context, actor Actor, limit int) ([]*notification.Notification, error)
	MarkRead(ctx context.Context, actor Actor, id uuid.UUID) (*notification.Notification, error)
}
