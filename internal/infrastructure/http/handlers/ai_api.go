package handlers

import (
	"net/http"

	"github.com/ayurwell/portal/internal/infrastructure/http/response"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"go.uber.org/zap"
)

// DietPlanAPIHandlers handles diet plan and AI requests
type DietPlanAPIHandlers struct {
	base
	plans inbound.DietPlanService
	ai    inbound.AIService
}

// NewDietPlanAPIHandlers creates a new diet plan handlers instance
func NewDietPlanAPIHandlers(
	plans inbound.DietPlanService,
	ai inbound.AIService,
	validator *security.Validator,
	logger *zap.Logger,
) *DietPlanAPIHandlers {
	return &DietPlanAPIHandlers{
		base:  newBase(logger.Named("dietplan-api"), validator),
		plans: plans,
		ai:    ai,
	}
}

// Generate handles POST /diet-plans/generate. The plan is returned unsaved.
func (h *DietPlanAPIHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var cmd inbound.GenerateDietPlanCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}

	generated, err := h.plans.Generate(r.Context(), actor, cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, generated)
}

// Save handles POST /diet-plans
func (h *DietPlanAPIHandlers) Save(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var cmd inbound.SaveDietPlanCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}

	saved, err := h.plans.Save(r.Context(), actor, cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, saved)
}

// List handles GET /diet-plans
func (h *DietPlanAPIHandlers) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	summaries, err := h.plans.List(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, summaries)
}

// Get handles GET /diet-plans/{id}
func (h *DietPlanAPIHandlers) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	plan, err := h.plans.Get(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, plan)
}

// Update handles PUT /diet-plans/{id}
func (h *DietPlanAPIHandlers) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var cmd inbound.UpdateDietPlanCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}

	plan, err := h.plans.Update(r.Context(), actor, id, cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, plan)
}

// Send handles POST /diet-plans/{id}/send
func (h *DietPlanAPIHandlers) Send(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	plan, err := h.plans.Send(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, plan)
}

// Current handles GET /diet-plans/current
func (h *DietPlanAPIHandlers) Current(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	plan, err := h.plans.Current(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, plan)
}

// Today handles GET /diet-plans/current/today
func (h *DietPlanAPIHandlers) Today(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	meals, err := h.plans.Today(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, meals)
}

// MealAlternatives handles POST /ai/meal-alternatives
func (h *DietPlanAPIHandlers) MealAlternatives(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var cmd inbound.SuggestMealsCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}

	out, err := h.plans.SuggestMeals(r.Context(), actor, cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, out)
}

// Providers handles GET /ai/providers
func (h *DietPlanAPIHandlers) Providers(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.ai.Providers(r.Context()))
}
