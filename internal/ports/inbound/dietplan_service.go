package inbound

import (
	"context"
	"time"

	"github.com/ayurwell/portal/internal/domain/dietplan"
	"github.com/google/uuid"
)

// DietPlanService defines the diet plan use cases for both roles
type DietPlanService interface {
	// Practitioner commands
	Generate(ctx context.Context, actor Actor, cmd GenerateDietPlanCommand) (*GeneratedDietPlan, error)
	Save(ctx context.Context, actor Actor, cmd SaveDietPlanCommand) (*DietPlanDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, cmd UpdateDietPlanCommand) (*DietPlanDTO, error)
	Send(ctx context.Context, actor Actor, id uuid.UUID) (*DietPlanDTO, error)

	// Queries
	List(ctx context.Context, actor Actor) ([]dietplan.Summary, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*DietPlanDTO, error)

	// Patient views
	Current(ctx context.Context, actor Actor) (*DietPlanDTO, error)
	Today(ctx context.Context, actor Actor) (*TodayMeals, error)
	SuggestMeals(ctx context.Context, actor Actor, cmd SuggestMealsCommand) (*MealAlternativesOutput, error)
}

// GenerateDietPlanCommand asks the AI for a draft plan for one patient
type GenerateDietPlanCommand struct {
	PatientID   uuid.UUID `json:"patientId" validate:"required"`
	Constraints string    `json:"constraints" validate:"required,min=10,max=2000"`
}

// SaveDietPlanCommand stores a plan as a draft
type SaveDietPlanCommand struct {
	PatientID   uuid.UUID      `json:"patientId" validate:"required"`
	Title       string         `json:"title" validate:"required,max=200"`
	Days        []dietplan.Day `json:"days" validate:"required,min=1"`
	Notes       string         `json:"notes,omitempty" validate:"max=4000"`
	Constraints string         `json:"constraints,omitempty" validate:"max=2000"`
	AIGenerated bool           `json:"aiGenerated"`
	AIModel     string         `json:"aiModel,omitempty"`
}

// UpdateDietPlanCommand edits the content of a saved plan
type UpdateDietPlanCommand struct {
	Title string         `json:"title" validate:"required,max=200"`
	Days  []dietplan.Day `json:"days" validate:"required,min=1"`
	Notes string         `json:"notes,omitempty" validate:"max=4000"`
}

// SuggestMealsCommand is the patient's meal-alternative request
type SuggestMealsCommand struct {
	CurrentMeal          string `json:"currentMeal" validate:"required,min=3,max=500"`
	AvailableIngredients string `json:"availableIngredients" validate:"required,min=5,max=1000"`
	DietaryRestrictions  string `json:"dietaryRestrictions,omitempty" validate:"max=500"`
}

// GeneratedDietPlan is an unsaved AI draft together with the patient it was made for
type GeneratedDietPlan struct {
	PatientID   uuid.UUID     `json:"patientId"`
	PatientName string        `json:"patientName"`
	Constraints string        `json:"constraints"`
	Provider    string        `json:"provider"`
	DietPlan    GeneratedPlan `json:"dietPlan"`
}

// DietPlanDTO is the transport form of a stored plan
type DietPlanDTO struct {
	ID             uuid.UUID       `json:"id"`
	Version        int64           `json:"version"`
	PatientID      uuid.UUID       `json:"patientId"`
	PatientName    string          `json:"patientName"`
	PractitionerID uuid.UUID       `json:"practitionerId"`
	Title          string          `json:"title"`
	Days           []dietplan.Day  `json:"days"`
	Notes          string          `json:"notes,omitempty"`
	Constraints    string          `json:"constraints,omitempty"`
	Status         dietplan.Status `json:"status"`
	AIGenerated    bool            `json:"aiGenerated"`
	AIModel        string          `json:"aiModel,omitempty"`
	CreationDate   time.Time       `json:"creationDate"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	SentAt         *time.Time      `json:"sentAt,omitempty"`
}

// NewDietPlanDTO converts the plan for transport
func NewDietPlanDTO(p *dietplan.DietPlan) DietPlanDTO {
	return DietPlanDTO{
		ID:             p.ID(),
		Version:        p.Version(),
		PatientID:      p.PatientID(),
		PatientName:    p.PatientName(),
		PractitionerID: p.PractitionerID(),
		Title:          p.Title(),
		Days:           p.Days(),
		Notes:          p.Notes(),
		Constraints:    p.Constraints(),
		Status:         p.Status(),
		AIGenerated:    p.IsAIGenerated(),
		AIModel:        p.AIModel(),
		CreationDate:   p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
		SentAt:         p.SentAt(),
	}
}

// TodayMeals is the day of the current plan the patient follows today
type TodayMeals struct {
	PlanID    uuid.UUID    `json:"planId"`
	Title     string       `json:"title"`
	Date      string       `json:"date"`
	DayNumber int          `json:"dayNumber"`
	TotalDays int          `json:"totalDays"`
	Day       dietplan.Day `json:"day"`
}

// AIService runs the two completion flows behind the provider chain
type AIService interface {
	GenerateInitialDietPlan(ctx context.Context, actor Actor, in DietPlanInput) (*DietPlanOutput, string, error)
	SuggestAlternativeMeals(ctx context.Context, actor Actor, in MealAlternativesInput) (*MealAlternativesOutput, string, error)
	Providers(ctx context.Context) []ProviderStatus
}

// DietPlanInput is the generateInitialDietPlan input
type DietPlanInput struct {
	PatientProfile string `json:"patientProfile" validate:"required"`
	Constraints    string `json:"constraints" validate:"required,min=10"`
}

// DietPlanOutput is the generateInitialDietPlan output
type DietPlanOutput struct {
	DietPlan GeneratedPlan `json:"dietPlan" validate:"required"`
}

// GeneratedPlan is the plan body the model writes
type GeneratedPlan struct {
	Title string         `json:"title" validate:"required,max=200"`
	Plan  []dietplan.Day `json:"plan" validate:"required,min=1,unique=Day"`
	Notes string         `json:"notes"`
}

// MealAlternativesInput is the suggestAlternativeMeals input
type MealAlternativesInput struct {
	PatientProfile       string `json:"patientProfile" validate:"required"`
	CurrentMeal          string `json:"currentMeal" validate:"required,min=3"`
	AvailableIngredients string `json:"availableIngredients" validate:"required,min=5"`
	DietaryRestrictions  string `json:"dietaryRestrictions,omitempty"`
}

// MealAlternativesOutput is the suggestAlternativeMeals output
type MealAlternativesOutput struct {
	AlternativeMeals []string `json:"alternativeMeals" validate:"required,min=1,dive,required"`
	Reasoning        string   `json:"reasoning" validate:"required"`
}

// ProviderStatus reports one AI backend's health
type ProviderStatus struct {
	Name      string `json:"name"`
	Healthy   bool   `json:"healthy"`
	Primary   bool   `json:"primary"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latencyMs"`
}
