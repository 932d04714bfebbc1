package container

import (
	"context"
	"database/sql"
	"time"

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
	"github.com/ayurwell/portal/internal/application/notification"
	"github.com/ayurwell/portal/internal/application/patient"
	"github.com/ayurwell/portal/internal/application/profile"
	aiinfra "github.com/ayurwell/portal/internal/infrastructure/ai"
	"github.com/ayurwell/portal/internal/infrastructure/cache"
	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/ayurwell/portal/internal/infrastructure/http/apiserver"
	"github.com/ayurwell/portal/internal/infrastructure/http/handlers"
	"github.com/ayurwell/portal/internal/infrastructure/http/opsserver"
	"github.com/ayurwell/portal/internal/infrastructure/http/stream"
	"github.com/ayurwell/portal/internal/infrastructure/monitoring"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/infrastructure/storage"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/ayurwell/portal/pkg/healthcheck"
)

// HTTPModule provides the API server, the ops server and the health checks
var HTTPModule = fx.Provide(
	func(p handlerParams) apiserver.Handlers {
		log := p.Logger
		v := p.Validator
		return apiserver.Handlers{
			Auth: handlers.NewAuthAPIHandlers(p.Auth, p.Metrics, v, log),
			Care: handlers.NewCareAPIHandlers(handlers.CareServices{
				Profiles:     p.Profiles,
				Patients:     p.Patients,
				Doctors:      p.Doctors,
				Appointments: p.Appointments,
				DailyLogs:    p.DailyLogs,
			}, p.Config.Storage.MaxAvatarBytes, v, log),
			DietPlans:     handlers.NewDietPlanAPIHandlers(p.DietPlans, p.AI, v, log),
			Admin:         handlers.NewAdminAPIHandlers(p.Admin, p.Dashboards, v, log),
			Notifications: handlers.NewNotificationAPIHandlers(p.Notifications, p.Auth, p.Hub, v, log),
		}
	},
	func(cfg *config.Config, h apiserver.Handlers, authSvc *auth.Service, rbac *security.RBACService, metrics *monitoring.MetricsCollector, log *zap.Logger) *apiserver.Server {
		deps := apiserver.Deps{Authenticator: authSvc, RBAC: rbac}
		if cfg.Monitoring.EnableMetrics {
			deps.Recorder = metrics
		}
		return apiserver.NewServer(cfg, h, deps, log)
	},
	NewHealthCheck,
	func(cfg *config.Config, health *healthcheck.HealthCheck, metrics *monitoring.MetricsCollector, db *sql.DB, redis *cache.RedisClient, providers []outbound.AIProvider, log *zap.Logger) *opsserver.Server {
		diagnostics := opsserver.NewDiagnostics(db, redis, providers, log)
		return opsserver.NewServer(cfg, health, metrics.Handler(), diagnostics, log)
	},
)

type handlerParams struct {
	fx.In

	Config        *config.Config
	Logger        *zap.Logger
	Validator     *security.Validator
	Metrics       *monitoring.MetricsCollector
	Auth          *auth.Service
	Profiles      *profile.Service
	Patients      *patient.Service
	Doctors       *doctor.Service
	Appointments  *appointment.Service
	DailyLogs     *dailylog.Service
	DietPlans     *dietplan.Service
	AI            *aiapp.Service
	Admin         *admin.Service
	Dashboards    *dashboard.Service
	Notifications *notification.Service
	Hub           *stream.Hub
}

type healthParams struct {
	fx.In

	Config    *config.Config
	Logger    *zap.Logger
	DB        *sql.DB
	Redis     *cache.RedisClient
	Store     *storage.S3Store
	Providers []outbound.AIProvider
	Metrics   *monitoring.MetricsCollector
}

// NewHealthCheck registers the database and Redis as critical checks. The AI
// chain and object storage only degrade the service.
func NewHealthCheck(p healthParams) *healthcheck.HealthCheck {
	health := healthcheck.New(p.Config.App.Version, p.Logger.Named("health"))
	health.SetCacheTTL(p.Config.Monitoring.HealthCacheTTL)

	health.Register("database", healthcheck.NewSQLChecker(p.DB))
	if p.Redis != nil {
		health.Register("redis", healthcheck.NewRedisChecker(p.Redis.Universal()))
	}

	hm := healthcheck.NewHealthMetrics("ayurwell", p.Metrics.Registry())
	ai := healthcheck.Guard("ai", aiinfra.NewHealthChecker(p.Providers, p.Logger), healthcheck.DefaultCircuitBreakerConfig())
	health.RegisterOptional("ai", healthcheck.WithMetrics("ai", hm, ai))

	if p.Store != nil {
		store := p.Store
		health.RegisterOptional("storage", healthcheck.NewCustomChecker("storage", func(ctx context.Context) (healthcheck.Status, string, interface{}) {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				return healthcheck.StatusUnhealthy, err.Error(), nil
			}
			return healthcheck.StatusHealthy, "bucket reachable", nil
		}))
	}

	return health
}
