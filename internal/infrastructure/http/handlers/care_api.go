package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ayurwell/portal/internal/domain/patient"
	"github.com/ayurwell/portal/internal/infrastructure/http/response"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"go.uber.org/zap"
)

// avatarField is the multipart field carrying the image
const avatarField = "avatar"

// CareAPIHandlers serves profiles, patients, doctors, appointments and daily logs
type CareAPIHandlers struct {
	base
	profiles       inbound.ProfileService
	patients       inbound.PatientService
	doctors        inbound.DoctorService
	appointments   inbound.AppointmentService
	dailyLogs      inbound.DailyLogService
	maxAvatarBytes int64
}

// CareServices groups the services behind CareAPIHandlers
type CareServices struct {
	Profiles     inbound.ProfileService
	Patients     inbound.PatientService
	Doctors      inbound.DoctorService
	Appointments inbound.AppointmentService
	DailyLogs    inbound.DailyLogService
}

// NewCareAPIHandlers creates the care handlers
func NewCareAPIHandlers(services CareServices, maxAvatarBytes int64, validator *security.Validator, logger *zap.Logger) *CareAPIHandlers {
	return &CareAPIHandlers{
		base:           newBase(logger.Named("care-api"), validator),
		profiles:       services.Profiles,
		patients:       services.Patients,
		doctors:        services.Doctors,
		appointments:   services.Appointments,
		dailyLogs:      services.DailyLogs,
		maxAvatarBytes: maxAvatarBytes,
	}
}

// GetProfile handles GET /profile
func (h *CareAPIHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	profile, err := h.profiles.GetProfile(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /profile
func (h *CareAPIHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var cmd inbound.UpdateProfileCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}
	profile, err := h.profiles.UpdateProfile(r.Context(), actor, cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

// UploadAvatar handles POST /profile/avatar with a multipart "avatar" file
func (h *CareAPIHandlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	// Leave room for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarBytes+64<<10)
	file, header, err := r.FormFile(avatarField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, apperrors.NewBadRequestError("Avatar is too large"))
			return
		}
		h.fail(w, r, apperrors.NewBadRequestError("Multipart field \"avatar\" is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxAvatarBytes+1))
	if err != nil {
		h.fail(w, r, apperrors.NewBadRequestError("Could not read avatar"))
		return
	}

	profile, err := h.profiles.UploadAvatar(r.Context(), actor, inbound.UploadAvatarCommand{
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

// IntakePatient handles POST /patients
func (h *CareAPIHandlers) IntakePatient(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var cmd inbound.IntakeCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}
	created, err := h.patients.Intake(r.Context(), actor, cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

// ListPatients handles GET /patients?status=&q=
func (h *CareAPIHandlers) ListPatients(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	query := inbound.PatientQuery{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := patient.Status(raw)
		if !status.Valid() {
			h.fail(w, r, apperrors.NewBadRequestError("Invalid status filter"))
			return
		}
		query.Status = &status
	}

	patients, err := h.patients.List(r.Context(), actor, query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, patients)
}

// GetPatient handles GET /patients/{id}
func (h *CareAPIHandlers) GetPatient(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	found, err := h.patients.Get(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, found)
}

// ChangePatientStatus handles PATCH /patients/{id}/status
func (h *CareAPIHandlers) ChangePatientStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var cmd inbound.ChangePatientStatusCommand
	if !h.decode(w, r, &cmd, true) {
		return
	}
	updated, err := h.patients.ChangeStatus(r.Context(), actor, id, cmd.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

// ListDoctors handles GET /doctors
func (h *CareAPIHandlers) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctors.ListVerified(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, doctors)
}

// GetOwnDoctor handles GET /doctors/me
func (h *CareAPIHandlers) GetOwnDoctor(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	profile, err := h.doctors.GetOwn(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

// UpdateOwnDoctor handles PUT /doctors/me
func (h *CareAPIHandlers) UpdateOwnDoctor(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var cmd inbound.UpdateDoctorCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}
	profile, err := h.doctors.UpdateOwn(r.Context(), actor, cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

// BookAppointment handles POST /appointments
func (h *CareAPIHandlers) BookAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var cmd inbound.BookAppointmentCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}
	booked, err := h.appointments.Book(r.Context(), actor, cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, booked)
}

// ListAppointments handles GET /appointments
func (h *CareAPIHandlers) ListAppointments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	list, err := h.appointments.List(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

// CancelAppointment handles POST /appointments/{id}/cancel
func (h *CareAPIHandlers) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	cancelled, err := h.appointments.Cancel(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, cancelled)
}

// UpdateAppointmentStatus handles PATCH /appointments/{id}/status
func (h *CareAPIHandlers) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var cmd inbound.UpdateAppointmentStatusCommand
	if !h.decode(w, r, &cmd, true) {
		return
	}
	updated, err := h.appointments.UpdateStatus(r.Context(), actor, id, cmd.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

// SubmitDailyLog handles POST /daily-logs
func (h *CareAPIHandlers) SubmitDailyLog(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var cmd inbound.SubmitDailyLogCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}
	entry, err := h.dailyLogs.Submit(r.Context(), actor, cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, entry)
}

// ListDailyLogs handles GET /daily-logs?from=&to=
func (h *CareAPIHandlers) ListDailyLogs(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	logs, err := h.dailyLogs.List(r.Context(), actor, q.Get("from"), q.Get("to"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, logs)
}

// WeeklyDailyLogs handles GET /daily-logs/weekly
func (h *CareAPIHandlers) WeeklyDailyLogs(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	summary, err := h.dailyLogs.Weekly(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}
