package handlers

import (
	"net/http"

	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/http/response"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"go.uber.org/zap"
)

// AdminAPIHandlers serves the admin console and the three dashboards
type AdminAPIHandlers struct {
	base
	admin      inbound.AdminService
	dashboards inbound.DashboardService
}

// NewAdminAPIHandlers creates the admin handlers
func NewAdminAPIHandlers(admin inbound.AdminService, dashboards inbound.DashboardService, validator *security.Validator, logger *zap.Logger) *AdminAPIHandlers {
	return &AdminAPIHandlers{
		base:       newBase(logger.Named("admin-api"), validator),
		admin:      admin,
		dashboards: dashboards,
	}
}

// PractitionerDashboard handles GET /dashboard/practitioner
func (h *AdminAPIHandlers) PractitionerDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	dash, err := h.dashboards.Practitioner(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, dash)
}

// PatientDashboard handles GET /dashboard/patient
func (h *AdminAPIHandlers) PatientDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	dash, err := h.dashboards.Patient(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, dash)
}

// AdminDashboard handles GET /dashboard/admin
func (h *AdminAPIHandlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	dash, err := h.dashboards.Admin(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, dash)
}

// ListUsers handles GET /admin/users?role=
func (h *AdminAPIHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	var role *user.Role
	if raw := r.URL.Query().Get("role"); raw != "" {
		parsed := user.Role(raw)
		if raw == "none" {
			parsed = user.RoleNone
		} else if !parsed.Valid() {
			h.fail(w, r, apperrors.NewBadRequestError("Invalid role filter"))
			return
		}
		role = &parsed
	}

	users, err := h.admin.ListUsers(r.Context(), role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, users)
}

// ListDoctors handles GET /admin/doctors?status=
func (h *AdminAPIHandlers) ListDoctors(w http.ResponseWriter, r *http.Request) {
	var status *doctor.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := doctor.Status(raw)
		if !parsed.Valid() {
			h.fail(w, r, apperrors.NewBadRequestError("Invalid status filter"))
			return
		}
		status = &parsed
	}

	doctors, err := h.admin.ListDoctors(r.Context(), status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, doctors)
}

// VerifyDoctor handles POST /admin/doctors/{id}/verify
func (h *AdminAPIHandlers) VerifyDoctor(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, doctor.StatusVerified)
}

// RejectDoctor handles POST /admin/doctors/{id}/reject
func (h *AdminAPIHandlers) RejectDoctor(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, doctor.StatusRejected)
}

func (h *AdminAPIHandlers) review(w http.ResponseWriter, r *http.Request, decision doctor.Status) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	reviewed, err := h.admin.ReviewDoctor(r.Context(), actor, id, decision)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, reviewed)
}

// ListFoods handles GET /foods and GET /admin/foods
func (h *AdminAPIHandlers) ListFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := h.admin.ListFoods(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, foods)
}

// CreateFood handles POST /admin/foods
func (h *AdminAPIHandlers) CreateFood(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var cmd inbound.FoodCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}
	created, err := h.admin.CreateFood(r.Context(), actor, cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

// UpdateFood handles PUT /admin/foods/{id}
func (h *AdminAPIHandlers) UpdateFood(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var cmd inbound.FoodCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}
	updated, err := h.admin.UpdateFood(r.Context(), actor, id, cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

// DeleteFood handles DELETE /admin/foods/{id}
func (h *AdminAPIHandlers) DeleteFood(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.admin.DeleteFood(r.Context(), actor, id); err != nil {
		h.fail(w, r, err)
		return
	}
	response.Message(w, http.StatusOK, "Food deleted")
}

// Audit handles GET /admin/audit?limit=
func (h *AdminAPIHandlers) Audit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.admin.Audit(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, entries)
}
