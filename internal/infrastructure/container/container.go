// Package container wires the application together with Uber FX
package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ayurwell/portal/internal/infrastructure/cache"
	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/ayurwell/portal/internal/infrastructure/monitoring"
	gormRepo "github.com/ayurwell/portal/internal/infrastructure/persistence/gorm"
	"github.com/ayurwell/portal/internal/infrastructure/persistence/memory"
	"github.com/ayurwell/portal/internal/infrastructure/persistence/migrations"
	"github.com/ayurwell/portal/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/ayurwell/portal/internal/infrastructure/persistence/redis"
	"github.com/ayurwell/portal/internal/infrastructure/persistence/sqlite"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/ayurwell/portal/pkg/logger"
)

// ConfigPath is the file or directory config.Load reads from. Empty means
// the default search paths.
type ConfigPath string

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	TelemetryModule,
	DatabaseModule,
	CacheModule,

	// Repository modules
	RepositoryModule,

	// Service modules
	SecurityModule,
	AIModule,
	ServiceModule,
	EventModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// New returns the application options for the config found at path
func New(path string) fx.Option {
	return fx.Options(
		fx.Supply(ConfigPath(path)),
		Module,
	)
}

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging. The atomic level is reloaded with the config.
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
		return logger.NewWithLevel(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// TelemetryModule provides Prometheus metrics and the OpenTelemetry providers
var TelemetryModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(lc fx.Lifecycle, cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) (*monitoring.Telemetry, error) {
		telemetry, err := monitoring.NewTelemetry(context.Background(), cfg.App, cfg.Monitoring, metrics.Registry(), log.Named("telemetry"))
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: telemetry.Shutdown})
		return telemetry, nil
	},
)

// DatabaseModule provides database connections
var DatabaseModule = fx.Provide(
	OpenDatabase,
	func(db *gorm.DB) (*sql.DB, error) {
		return db.DB()
	},
)

// OpenDatabase connects to the configured driver, brings the schema up to
// date and seeds demo data when asked to
func OpenDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.AutoMigrate {
			if err := migrateUp(cfg, log); err != nil {
				return nil, err
			}
		}
		cm, cerr := postgres.NewConnectionManager(cfg, log.Named("postgres"))
		if cerr != nil {
			return nil, cerr
		}
		db = cm.GetDB()
	case "sqlite", "":
		gl := gormRepo.NewLogger(log.Named("gorm"), cfg.Database.LogLevel, cfg.Database.SlowQueryThreshold)
		db, err = sqlite.SetupDatabase(cfg.Database.Path, gl)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		log.Info("Connected to SQLite database", zap.String("path", cfg.Database.Path))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	if cfg.Database.Seed {
		report, err := sqlite.SeedDatabase(db, sqlite.SeedOptions{
			AdminEmail:    cfg.Auth.AdminEmail,
			BCryptCost:    cfg.Auth.BCryptCost,
			ExtraPatients: 8,
		})
		if err != nil {
			log.Warn("Failed to seed database", zap.Error(err))
		} else if !report.Skipped {
			log.Info("Seeded demo data",
				zap.String("practitioner", report.PractitionerEmail),
				zap.String("patient", report.PatientEmail),
				zap.Int("patients", report.Patients),
				zap.Int("foods", report.Foods),
			)
		}
	}

	return db, nil
}

func migrateUp(cfg *config.Config, log *zap.Logger) error {
	m, err := migrations.NewFromURL(cfg.MigrationURL(), log.Named("migrations"))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			log.Warn("Failed to close migrator", zap.Error(cerr))
		}
	}()
	return m.Up()
}

// CacheModule provides caching. Without Redis an in-process cache stands in,
// which only works for a single instance.
var CacheModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*cache.RedisClient, error) {
		if !cfg.Redis.Enabled {
			return nil, nil
		}
		client, err := cache.NewRedisClient(&cfg.Redis, log.Named("redis"))
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
		return client, nil
	},
	func(lc fx.Lifecycle, client *cache.RedisClient, log *zap.Logger) outbound.CacheRepository {
		if client != nil {
			return redisRepo.NewCacheRepository(client, log.Named("cache"))
		}
		log.Warn("Redis disabled, using in-memory cache")
		repo := memory.NewCacheRepository(time.Minute)
		lc.Append(fx.Hook{OnStop: func(context.Context) error {
			repo.Close()
			return nil
		}})
		return repo
	},
	cache.NewSessionStore,
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewUserRepository,
	gormRepo.NewPatientRepository,
	gormRepo.NewDoctorRepository,
	gormRepo.NewAppointmentRepository,
	gormRepo.NewDailyLogRepository,
	gormRepo.NewDietPlanRepository,
	gormRepo.NewFoodRepository,
	gormRepo.NewNotificationRepository,
	gormRepo.NewAuditRepository,
)
