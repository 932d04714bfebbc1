package handlers

import (
	"net/http"
	"strings"

	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/http/middleware"
	"github.com/ayurwell/portal/internal/infrastructure/http/response"
	"github.com/ayurwell/portal/internal/infrastructure/monitoring"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"go.uber.org/zap"
)

const forgotPasswordMessage = "If an account exists for this e-mail, a password reset link has been sent."

// AuthMetrics counts authentication outcomes
type AuthMetrics interface {
	RecordAuthEvent(event string, success bool)
}

// AuthAPIHandlers handles authentication and navigation requests
type AuthAPIHandlers struct {
	base
	auth    inbound.AuthService
	metrics AuthMetrics
}

// NewAuthAPIHandlers creates the auth handlers. metrics may be nil.
func NewAuthAPIHandlers(auth inbound.AuthService, metrics AuthMetrics, validator *security.Validator, logger *zap.Logger) *AuthAPIHandlers {
	return &AuthAPIHandlers{
		base:    newBase(logger.Named("auth-api"), validator),
		auth:    auth,
		metrics: metrics,
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyMFARequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// NavigationResponse is the resolver's answer
type NavigationResponse struct {
	Redirect *string `json:"redirect"`
}

// Signup handles POST /auth/signup
func (h *AuthAPIHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.SignupCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}

	resp, err := h.auth.Signup(r.Context(), cmd)
	h.record(monitoring.AuthEventSignup, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, resp)
}

// Login handles POST /auth/login
func (h *AuthAPIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.LoginCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}

	resp, err := h.auth.Login(r.Context(), cmd)
	h.record(monitoring.AuthEventLogin, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}

// Refresh handles POST /auth/refresh
func (h *AuthAPIHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req, true) {
		return
	}

	resp, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	h.record(monitoring.AuthEventRefresh, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}

// Logout handles POST /auth/logout
func (h *AuthAPIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := h.auth.Logout(r.Context(), actor); err != nil {
		h.fail(w, r, err)
		return
	}
	response.Message(w, http.StatusOK, "Logged out")
}

// ForgotPassword handles POST /auth/forgot-password. The answer does not
// reveal whether the account exists.
func (h *AuthAPIHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		h.fail(w, r, err)
		return
	}
	response.Message(w, http.StatusAccepted, forgotPasswordMessage)
}

// ResetPassword handles POST /auth/reset-password
func (h *AuthAPIHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.ResetPasswordCommand
	if !h.decode(w, r, &cmd, false) {
		return
	}

	err := h.auth.ResetPassword(r.Context(), cmd)
	h.record(monitoring.AuthEventReset, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Message(w, http.StatusOK, "Password updated")
}

// SelectRole handles POST /auth/select-role
func (h *AuthAPIHandlers) SelectRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var cmd inbound.SelectRoleCommand
	if !h.decode(w, r, &cmd, true) {
		return
	}

	resp, err := h.auth.SelectRole(r.Context(), actor, cmd.Role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}

// Me handles GET /auth/me
func (h *AuthAPIHandlers) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	me, err := h.auth.Me(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, me)
}

// EnrollMFA handles POST /auth/mfa/enroll
func (h *AuthAPIHandlers) EnrollMFA(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	enrollment, err := h.auth.EnrollMFA(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, enrollment)
}

// VerifyMFA handles POST /auth/mfa/verify
func (h *AuthAPIHandlers) VerifyMFA(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req verifyMFARequest
	if !h.decode(w, r, &req, true) {
		return
	}
	if err := h.auth.VerifyMFA(r.Context(), actor, req.Code); err != nil {
		h.fail(w, r, err)
		return
	}
	response.Message(w, http.StatusOK, "Two-factor authentication enabled")
}

// ResolveNavigation handles GET /navigation/resolve?path=. The token is optional.
func (h *AuthAPIHandlers) ResolveNavigation(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		path = user.PathHome
	}

	session := user.Session{}
	if actor, ok := middleware.ActorFromContext(r.Context()); ok {
		session = user.Session{Authenticated: true, Role: actor.Role}
	}

	resp := NavigationResponse{}
	if target, redirect := user.ResolveRedirect(path, session); redirect {
		resp.Redirect = &target
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *AuthAPIHandlers) record(event string, err error) {
	if h.metrics != nil {
		h.metrics.RecordAuthEvent(event, err == nil)
	}
}
