package apiserver

import (
	"net/http"

	"github.com/ayurwell/portal/internal/infrastructure/http/response"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"go.uber.org/zap"
)

func notFound(r *http.Request) error {
	return apperrors.NewNotFoundError("Route").WithMetadata("path", r.URL.Path)
}

func methodNotAllowed(r *http.Request) error {
	return apperrors.NewAppError(apperrors.CodeBadRequest, "Method not allowed", "").
		WithMetadata("method", r.Method)
}

// maintenance answers every API request with 503 while the flag is set
func maintenance(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "120")
			response.Error(w, r, logger, apperrors.NewAppError(
				apperrors.CodeServiceUnavailable,
				"AyurWell is down for maintenance. Please try again shortly.",
				"",
			))
		})
	}
}
