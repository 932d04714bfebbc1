package container

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/ayurwell/portal/internal/application/admin"
	aiapp "github.com/ayurwell/portal/internal/application/ai"
	"github.com/ayurwell/portal/internal/application/appointment"
	"github.com/ayurwell/portal/internal/application/auth"
	"github.com/ayurwell/portal/internal/application/dailylog"
	"github.com/ayurwell/portal/internal/application/dashboard"
	"github.com/ayurwell/portal/internal/application/dietplan"
	"github.com/ayurwell/portal/internal/application/doctor"
	"github.com/ayurwell/portal/internal/application/events"
	"github.com/ayurwell/portal/internal/application/notification"
	"github.com/ayurwell/portal/internal/application/patient"
	"github.com/ayurwell/portal/internal/application/profile"
	"github.com/ayurwell/portal/internal/domain/shared"
	"github.com/ayurwell/portal/internal/infrastructure/ai/gemini"
	"github.com/ayurwell/portal/internal/infrastructure/ai/mock"
	"github.com/ayurwell/portal/internal/infrastructure/ai/ollama"
	"github.com/ayurwell/portal/internal/infrastructure/ai/openai"
	"github.com/ayurwell/portal/internal/infrastructure/cache"
	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/ayurwell/portal/internal/infrastructure/http/stream"
	"github.com/ayurwell/portal/internal/infrastructure/mailer"
	"github.com/ayurwell/portal/internal/infrastructure/monitoring"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/infrastructure/storage"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
)

const mailFrom = "AyurWell <no-reply@ayurwell.com>"

// SecurityModule provides tokens, MFA, RBAC and request validation
var SecurityModule = fx.Provide(
	security.NewValidator,
	security.NewRBACService,
	func(cfg *config.Config, sessions *cache.SessionStore, log *zap.Logger) *security.TokenService {
		return security.NewTokenService(&cfg.Auth, sessions, log)
	},
	func(cfg *config.Config, log *zap.Logger) *security.MFAService {
		return security.NewMFAService(log, cfg.Auth.MFAIssuer)
	},
)

// AIModule provides the provider chain and the AI flow service
var AIModule = fx.Provide(
	NewAIProviders,
	// Telemetry is requested so the global meter exists before the
	// service creates its instruments.
	func(
		providers []outbound.AIProvider,
		cacheRepo outbound.CacheRepository,
		validator *security.Validator,
		cfg *config.Config,
		log *zap.Logger,
		_ *monitoring.Telemetry,
	) (*aiapp.Service, error) {
		return aiapp.NewService(providers, cacheRepo, validator, aiapp.Options{
			Primary:           cfg.AI.Primary,
			Timeout:           cfg.AI.Timeout,
			EnableCache:       cfg.AI.EnableCache,
			CacheTTL:          cfg.AI.CacheTTL,
			RequestsPerMinute: cfg.AI.RateLimit.RequestsPerMinute,
			Burst:             cfg.AI.RateLimit.Burst,
		}, log)
	},
)

// NewAIProviders builds every configured provider. The primary is always
// included so a misconfiguration shows up in provider health; the others
// only when they have credentials. The mock comes last when enabled.
func NewAIProviders(cfg *config.Config, log *zap.Logger) ([]outbound.AIProvider, error) {
	var providers []outbound.AIProvider

	if cfg.AI.Primary == "gemini" || cfg.AI.Gemini.APIKey != "" {
		client, err := gemini.NewClient(context.Background(), cfg.AI.Gemini, log)
		if err != nil {
			return nil, err
		}
		providers = append(providers, client)
	}
	if cfg.AI.Primary == "openai" || cfg.AI.OpenAI.APIKey != "" {
		providers = append(providers, openai.NewClient(cfg.AI.OpenAI, cfg.AI.Timeout, log))
	}
	if cfg.AI.Primary == "ollama" || cfg.AI.Ollama.Enabled {
		providers = append(providers, ollama.NewClient(cfg.AI.Ollama, cfg.AI.Timeout, log))
	}
	if cfg.AI.MockFallback || cfg.AI.Primary == "mock" {
		providers = append(providers, mock.New())
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	log.Info("AI providers configured", zap.String("primary", cfg.AI.Primary), zap.Strings("providers", names))

	return providers, nil
}

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	// Adapters
	func(cfg *config.Config, log *zap.Logger) (*storage.S3Store, error) {
		if cfg.Storage.Provider != "s3" {
			// nothing to store avatars in, so the upload route stays unmounted
			if cfg.Features.EnableAvatarUpload {
				log.Warn("Avatar upload disabled, no object storage configured", zap.String("provider", cfg.Storage.Provider))
				cfg.Features.EnableAvatarUpload = false
			}
			return nil, nil
		}
		return storage.NewS3Store(cfg.Storage, log)
	},
	func(store *storage.S3Store) outbound.StorageService {
		if store == nil {
			return nil
		}
		return store
	},
	fx.Annotate(
		func(log *zap.Logger) *mailer.LogMailer { return mailer.NewLogMailer(mailFrom, log) },
		fx.As(new(outbound.EmailService)),
	),
	func(cfg *config.Config, log *zap.Logger) *stream.Hub {
		return stream.NewHub(stream.Config{AllowedOrigins: cfg.Server.AllowedOrigins}, log)
	},
	func(hub *stream.Hub, metrics *monitoring.MetricsCollector) outbound.NotificationPusher {
		return metrics.InstrumentPusher(hub)
	},

	// Services
	notification.NewService,
	func(
		users outbound.UserRepository,
		store outbound.StorageService,
		validator *security.Validator,
		cfg *config.Config,
		log *zap.Logger,
	) *profile.Service {
		return profile.NewService(users, store, validator, cfg.Storage.MaxAvatarBytes, log)
	},
	patient.NewService,
	doctor.NewService,
	appointment.NewService,
	dailylog.NewService,
	dietplan.NewService,
	func(s *aiapp.Service) inbound.AIService { return s },
	func(d authDeps, cfg *config.Config, log *zap.Logger) *auth.Service {
		return auth.NewService(auth.Deps{
			Users:      d.Users,
			Doctors:    d.Doctors,
			Patients:   d.Patients,
			Audit:      d.Audit,
			Mailer:     d.Mailer,
			Notifier:   d.Notifier,
			Tokens:     d.Tokens,
			Sessions:   d.Sessions,
			MFA:        d.MFA,
			Validator:  d.Validator,
			Dispatcher: d.Dispatcher,
		}, &cfg.Auth, cfg.App.PublicURL, log)
	},
	func(d adminDeps, log *zap.Logger) *admin.Service {
		return admin.NewService(admin.Deps{
			Users:     d.Users,
			Doctors:   d.Doctors,
			Foods:     d.Foods,
			AuditLog:  d.Audit,
			Cache:     d.Cache,
			Notifier:  d.Notifier,
			Validator: d.Validator,
		}, log)
	},
	func(r dashboardRepos, log *zap.Logger) *dashboard.Service {
		return dashboard.NewService(dashboard.Repositories{
			Users:        r.Users,
			Patients:     r.Patients,
			Doctors:      r.Doctors,
			Appointments: r.Appointments,
			DailyLogs:    r.DailyLogs,
			DietPlans:    r.DietPlans,
			Foods:        r.Foods,
		}, log)
	},
)

// EventModule provides the dispatcher and subscribes the event handlers to it
var EventModule = fx.Options(
	fx.Provide(
		events.NewDispatcher,
		func(d *events.Dispatcher) shared.EventDispatcher { return d },
	),
	fx.Invoke(func(d *events.Dispatcher, notifier *notification.Service, auditRepo outbound.AuditRepository, metrics *monitoring.MetricsCollector, log *zap.Logger) {
		events.NewSubscriber(notifier, auditRepo, metrics, log).Register(d)
	}),
)

type authDeps struct {
	fx.In

	Users      outbound.UserRepository
	Doctors    outbound.DoctorRepository
	Patients   outbound.PatientRepository
	Audit      outbound.AuditRepository
	Mailer     outbound.EmailService
	Notifier   *notification.Service
	Tokens     *security.TokenService
	Sessions   *cache.SessionStore
	MFA        *security.MFAService
	Validator  *security.Validator
	Dispatcher shared.EventDispatcher
}

type adminDeps struct {
	fx.In

	Users     outbound.UserRepository
	Doctors   outbound.DoctorRepository
	Foods     outbound.FoodRepository
	Audit     outbound.AuditRepository
	Cache     outbound.CacheRepository
	Notifier  *notification.Service
	Validator *security.Validator
}

type dashboardRepos struct {
	fx.In

	Users        outbound.UserRepository
	Patients     outbound.PatientRepository
	Doctors      outbound.DoctorRepository
	Appointments outbound.AppointmentRepository
	DailyLogs    outbound.DailyLogRepository
	DietPlans    outbound.DietPlanRepository
	Foods        outbound.FoodRepository
}
