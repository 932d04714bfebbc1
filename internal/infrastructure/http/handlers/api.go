// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"net/http"
	"strconv"

	"github.com/ayurwell/portal/internal/infrastructure/http/middleware"
	"github.com/ayurwell/portal/internal/infrastructure/http/response"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// base carries what every handler group needs
type base struct {
	logger    *zap.Logger
	validator *security.Validator
}

func newBase(logger *zap.Logger, validator *security.Validator) base {
	return base{logger: logger, validator: validator}
}

func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	response.Error(w, r, b.logger, err)
}

// decode reads and validates the body. On failure the error is already written.
func (b base) decode(w http.ResponseWriter, r *http.Request, dst interface{}, validate bool) bool {
	if err := response.Decode(w, r, dst); err != nil {
		b.fail(w, r, err)
		return false
	}
	if validate {
		if err := b.validator.Validate(dst); err != nil {
			b.fail(w, r, err)
			return false
		}
	}
	return true
}

// actor returns the authenticated caller. Routes using it sit behind
// middleware.Authenticate, so a missing actor is a wiring error.
func (b base) actor(w http.ResponseWriter, r *http.Request) (inbound.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		b.fail(w, r, apperrors.NewUnauthorizedError("Authentication required"))
	}
	return actor, ok
}

// pathID parses a UUID route parameter
func (b base) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		b.fail(w, r, apperrors.NewBadRequestError("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
