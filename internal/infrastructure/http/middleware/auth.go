package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/http/response"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"go.uber.org/zap"
)

type contextKey struct{}

var actorKey = contextKey{}

// Authenticator resolves an access token into the calling actor
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*inbound.Actor, error)
}

// WithActor stores the actor in ctx
func WithActor(ctx context.Context, actor inbound.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the actor set by Authenticate
func ActorFromContext(ctx context.Context) (inbound.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(inbound.Actor)
	return actor, ok
}

// BearerToken extracts the token of an "Authorization: Bearer" header
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// Authenticate requires a valid access token
func Authenticate(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				response.Error(w, r, logger, apperrors.NewUnauthorizedError("Authorization header required"))
				return
			}

			actor, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				response.Error(w, r, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), *actor)))
		})
	}
}

// OptionalAuthenticate sets the actor when a valid token is present and
// otherwise serves the request anonymously
func OptionalAuthenticate(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := BearerToken(r); ok {
				if actor, err := auth.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(WithActor(r.Context(), *actor))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole lets only the given roles through
func RequireRole(logger *zap.Logger, roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				response.Error(w, r, logger, apperrors.NewUnauthorizedError("Authentication required"))
				return
			}
			if !security.HasAnyRole(actor.Role, roles...) {
				response.Error(w, r, logger, apperrors.NewInsufficientPermissionsError("access this resource"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission checks the actor's role against the RBAC matrix
func RequirePermission(rbac *security.RBACService, logger *zap.Logger, resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				response.Error(w, r, logger, apperrors.NewUnauthorizedError("Authentication required"))
				return
			}
			if !rbac.HasPermission(actor.Role, resource, action) {
				response.Error(w, r, logger, apperrors.NewInsufficientPermissionsError(action+" "+resource))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
