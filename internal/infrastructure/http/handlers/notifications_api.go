package handlers

import (
	"net/http"

	"github.com/ayurwell/portal/internal/infrastructure/http/middleware"
	"github.com/ayurwell/portal/internal/infrastructure/http/response"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StreamServer upgrades a request into a notification stream for one user
type StreamServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error
}

// NotificationAPIHandlers handles notification requests
type NotificationAPIHandlers struct {
	base
	notifications inbound.NotificationService
	auth          middleware.Authenticator
	stream        StreamServer
}

// NewNotificationAPIHandlers creates the notification handlers
func NewNotificationAPIHandlers(
	notifications inbound.NotificationService,
	auth middleware.Authenticator,
	stream StreamServer,
	validator *security.Validator,
	logger *zap.Logger,
) *NotificationAPIHandlers {
	return &NotificationAPIHandlers{
		base:          newBase(logger.Named("notifications-api"), validator),
		notifications: notifications,
		auth:          auth,
		stream:        stream,
	}
}

// List handles GET /notifications?limit=
func (h *NotificationAPIHandlers) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	items, err := h.notifications.List(r.Context(), actor, queryInt(r, "limit", 0))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

// MarkRead handles POST /notifications/{id}/read
func (h *NotificationAPIHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	item, err := h.notifications.MarkRead(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}

// Stream handles GET /notifications/stream?token=. Browsers cannot set
// headers on a websocket handshake, so the access token may come in the query.
func (h *NotificationAPIHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = middleware.BearerToken(r)
	}
	if token == "" {
		h.fail(w, r, apperrors.NewUnauthorizedError("Access token required"))
		return
	}

	actor, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.stream.Serve(w, r, actor.UserID); err != nil {
		// The upgrader has already answered the client.
		h.logger.Debug("Notification stream ended",
			zap.String("user_id", actor.UserID.String()),
			zap.Error(err),
		)
	}
}
