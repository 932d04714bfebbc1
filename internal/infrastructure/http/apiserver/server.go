// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/ayurwell/portal/internal/infrastructure/http/handlers"
	"github.com/ayurwell/portal/internal/infrastructure/http/middleware"
	"github.com/ayurwell/portal/internal/infrastructure/http/response"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var compressibleTypes = []string{
	"application/json",
	"application/yaml",
	"text/html",
	"text/plain",
}

// Handlers groups the API handler sets mounted by the server
type Handlers struct {
	Auth          *handlers.AuthAPIHandlers
	Care          *handlers.CareAPIHandlers
	DietPlans     *handlers.DietPlanAPIHandlers
	Admin         *handlers.AdminAPIHandlers
	Notifications *handlers.NotificationAPIHandlers
}

// Deps are the cross-cutting collaborators of the router
type Deps struct {
	Authenticator middleware.Authenticator
	RBAC          *security.RBACService
	// Recorder may be nil when metrics are disabled
	Recorder middleware.RequestRecorder
}

// Server is the AyurWell JSON API server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	router  chi.Router
	docs    *OpenAPIHandler
	deps    Deps
	handles Handlers
}

// NewServer creates the API server and builds its routes
func NewServer(cfg *config.Config, h Handlers, deps Deps, logger *zap.Logger) *Server {
	s := &Server{
		config:  cfg,
		logger:  logger.Named("apiserver"),
		docs:    NewOpenAPIHandler(logger),
		deps:    deps,
		handles: h,
	}

	s.router = s.setupRoutes()

	var handler http.Handler = s.router
	if cfg.Monitoring.Tracing.Enabled {
		handler = otelhttp.NewHandler(handler, "ayurwell-api",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
	if cfg.Server.H2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	s.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return s
}

// setupRoutes configures the global middleware stack and mounts /api/v1
func (s *Server) setupRoutes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	if s.deps.Recorder != nil {
		r.Use(middleware.Metrics(s.deps.Recorder))
	}
	if s.config.Server.EnableCompression {
		r.Use(s.compressor().Handler)
	}
	r.Use(middleware.JSONOnly())
	if s.config.Features.MaintenanceMode {
		r.Use(maintenance(s.logger))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, s.logger, notFound(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, s.logger, methodNotAllowed(r))
	})

	r.Route("/api/v1", s.setupAPIV1Routes)

	return r
}

// compressor registers brotli next to chi's gzip and deflate encoders
func (s *Server) compressor() *chimiddleware.Compressor {
	level := s.config.Server.CompressionLevel
	if level <= 0 {
		level = 5
	}
	c := chimiddleware.NewCompressor(level, compressibleTypes...)
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c
}

// setupAPIV1Routes configures API v1 endpoints
func (s *Server) setupAPIV1Routes(r chi.Router) {
	h := s.handles
	authn := middleware.Authenticate(s.deps.Authenticator, s.logger)

	// Documentation
	r.Get("/openapi.yaml", s.docs.ServeOpenAPISpec)
	r.Get("/docs", s.docs.ServeSwaggerUI)

	// Authentication routes
	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestLimit: s.rateLimit(s.config.RateLimit.AuthRequestsPerMin),
			WindowSize:   time.Minute,
			KeyFunc:      httprate.KeyByIP,
		}))
		r.Use(s.requestTimeout())

		r.Post("/signup", h.Auth.Signup)
		r.Post("/login", h.Auth.Login)
		r.Post("/refresh", h.Auth.Refresh)
		r.Post("/forgot-password", h.Auth.ForgotPassword)
		r.Post("/reset-password", h.Auth.ResetPassword)

		// Protected auth routes
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Post("/logout", h.Auth.Logout)
			r.Post("/select-role", h.Auth.SelectRole)
			r.Get("/me", h.Auth.Me)
			if s.config.Features.EnableMFA {
				r.With(s.permission(security.ResourceMFA, security.ActionWrite)).Post("/mfa/enroll", h.Auth.EnrollMFA)
				r.Post("/mfa/verify", h.Auth.VerifyMFA)
			}
		})
	})

	r.With(middleware.OptionalAuthenticate(s.deps.Authenticator)).Get("/navigation/resolve", h.Auth.ResolveNavigation)

	apiLimit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestLimit: s.rateLimit(s.config.RateLimit.APIRequestsPerMin),
		WindowSize:   time.Minute,
		KeyFunc:      middleware.KeyByActor,
	})

	r.Route("/notifications", func(r chi.Router) {
		// The stream authenticates from its query and is long-lived,
		// so it sits outside the bearer check and the request timeout.
		if s.config.Features.EnableNotifications {
			r.Get("/stream", h.Notifications.Stream)
		}
		r.Group(func(r chi.Router) {
			r.Use(authn, apiLimit, s.requestTimeout())
			r.Get("/", h.Notifications.List)
			r.Post("/{id}/read", h.Notifications.MarkRead)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authn, apiLimit)

		r.Group(func(r chi.Router) {
			r.Use(s.requestTimeout())
			s.mountCareRoutes(r)
			s.mountAdminRoutes(r)
		})
		s.mountDietPlanRoutes(r)
	})
}

func (s *Server) mountCareRoutes(r chi.Router) {
	h := s.handles

	r.Route("/profile", func(r chi.Router) {
		r.With(s.permission(security.ResourceProfile, security.ActionRead)).Get("/", h.Care.GetProfile)
		r.With(s.permission(security.ResourceProfile, security.ActionWrite)).Put("/", h.Care.UpdateProfile)
		if s.config.Features.EnableAvatarUpload {
			r.With(s.permission(security.ResourceProfile, security.ActionWrite)).Post("/avatar", h.Care.UploadAvatar)
		}
	})

	r.Route("/patients", func(r chi.Router) {
		r.Use(s.role(user.RolePractitioner))
		r.Post("/", h.Care.IntakePatient)
		r.Get("/", h.Care.ListPatients)
		r.Get("/{id}", h.Care.GetPatient)
		r.Patch("/{id}/status", h.Care.ChangePatientStatus)
	})

	r.Route("/doctors", func(r chi.Router) {
		r.With(s.permission(security.ResourceDoctors, security.ActionRead)).Get("/", h.Care.ListDoctors)
		r.Group(func(r chi.Router) {
			r.Use(s.role(user.RolePractitioner))
			r.Get("/me", h.Care.GetOwnDoctor)
			r.Put("/me", h.Care.UpdateOwnDoctor)
		})
	})

	r.Route("/appointments", func(r chi.Router) {
		r.With(s.role(user.RolePatient, user.RolePractitioner)).Get("/", h.Care.ListAppointments)
		r.With(s.role(user.RolePatient)).Post("/", h.Care.BookAppointment)
		r.With(s.role(user.RolePatient)).Post("/{id}/cancel", h.Care.CancelAppointment)
		r.With(s.role(user.RolePractitioner)).Patch("/{id}/status", h.Care.UpdateAppointmentStatus)
	})

	r.Route("/daily-logs", func(r chi.Router) {
		r.Use(s.role(user.RolePatient))
		r.Post("/", h.Care.SubmitDailyLog)
		r.Get("/", h.Care.ListDailyLogs)
		r.Get("/weekly", h.Care.WeeklyDailyLogs)
	})
}

func (s *Server) mountDietPlanRoutes(r chi.Router) {
	h := s.handles

	// Provider calls get the AI timeout instead of the request timeout
	aiTimeout := chimiddleware.Timeout(s.config.AI.Timeout + config.AIResponseMargin)

	r.Route("/diet-plans", func(r chi.Router) {
		r.With(aiTimeout, s.role(user.RolePractitioner)).Post("/generate", h.DietPlans.Generate)

		r.Group(func(r chi.Router) {
			r.Use(s.requestTimeout())
			r.Group(func(r chi.Router) {
				r.Use(s.role(user.RolePractitioner))
				r.Post("/", h.DietPlans.Save)
				r.Get("/", h.DietPlans.List)
				r.Put("/{id}", h.DietPlans.Update)
				r.Post("/{id}/send", h.DietPlans.Send)
			})
			r.Group(func(r chi.Router) {
				r.Use(s.role(user.RolePatient))
				r.Get("/current", h.DietPlans.Current)
				r.Get("/current/today", h.DietPlans.Today)
			})
			r.With(s.role(user.RolePatient, user.RolePractitioner)).Get("/{id}", h.DietPlans.Get)
		})
	})

	r.Route("/ai", func(r chi.Router) {
		r.With(aiTimeout, s.role(user.RolePatient)).Post("/meal-alternatives", h.DietPlans.MealAlternatives)
		r.With(s.requestTimeout(), s.role(user.RoleAdmin)).Get("/providers", h.DietPlans.Providers)
	})
}

func (s *Server) mountAdminRoutes(r chi.Router) {
	h := s.handles

	r.Route("/dashboard", func(r chi.Router) {
		r.With(s.role(user.RolePractitioner)).Get("/practitioner", h.Admin.PractitionerDashboard)
		r.With(s.role(user.RolePatient)).Get("/patient", h.Admin.PatientDashboard)
		r.With(s.role(user.RoleAdmin)).Get("/admin", h.Admin.AdminDashboard)
	})

	r.With(s.permission(security.ResourceFoods, security.ActionRead)).Get("/foods", h.Admin.ListFoods)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.role(user.RoleAdmin))
		r.With(s.permission(security.ResourceUsers, security.ActionRead)).Get("/users", h.Admin.ListUsers)

		r.Get("/doctors", h.Admin.ListDoctors)
		r.Post("/doctors/{id}/verify", h.Admin.VerifyDoctor)
		r.Post("/doctors/{id}/reject", h.Admin.RejectDoctor)

		r.Route("/foods", func(r chi.Router) {
			r.Use(s.permission(security.ResourceFoods, security.ActionManage))
			r.Get("/", h.Admin.ListFoods)
			r.Post("/", h.Admin.CreateFood)
			r.Put("/{id}", h.Admin.UpdateFood)
			r.Delete("/{id}", h.Admin.DeleteFood)
		})

		r.With(s.permission(security.ResourceAudit, security.ActionRead)).Get("/audit", h.Admin.Audit)
	})

}

// rateLimit returns 0, which disables the limiter, unless limits are enabled
func (s *Server) rateLimit(perMinute int) int {
	if !s.config.RateLimit.Enable {
		return 0
	}
	return perMinute
}

func (s *Server) requestTimeout() func(http.Handler) http.Handler {
	return chimiddleware.Timeout(s.config.Server.RequestTimeout)
}

func (s *Server) role(roles ...user.Role) func(http.Handler) http.Handler {
	return middleware.RequireRole(s.logger, roles...)
}

func (s *Server) permission(resource, action string) func(http.Handler) http.Handler {
	return middleware.RequirePermission(s.deps.RBAC, s.logger, resource, action)
}

// Handler returns the routed handler without the http.Server around it
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the API server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting API server",
		zap.String("address", s.server.Addr),
		zap.Bool("h2c", s.config.Server.H2C),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Server returns the underlying HTTP server instance
func (s *Server) Server() *http.Server {
	return s.server
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.server.Shutdown(ctx)
}
