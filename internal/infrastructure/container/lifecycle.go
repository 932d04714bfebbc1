package container

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	aiapp "github.com/ayurwell/portal/internal/application/ai"
	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/ayurwell/portal/internal/infrastructure/http/apiserver"
	"github.com/ayurwell/portal/internal/infrastructure/http/opsserver"
	"github.com/ayurwell/portal/internal/infrastructure/http/stream"
	"github.com/ayurwell/portal/internal/infrastructure/monitoring"
	"github.com/ayurwell/portal/pkg/logger"
)

const dbStatsInterval = 15 * time.Second

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *config.Config
	Logger     *zap.Logger
	Level      zap.AtomicLevel
	DB         *sql.DB
	API        *apiserver.Server
	Ops        *opsserver.Server
	Hub        *stream.Hub
	AI         *aiapp.Service
	Metrics    *monitoring.MetricsCollector
}

// RegisterLifecycleHooks starts both servers, samples pool statistics and
// applies config file changes while the application runs
func RegisterLifecycleHooks(p lifecycleParams) {
	log := p.Logger
	watchCtx, stopWatch := context.WithCancel(context.Background())

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting AyurWell",
				zap.String("version", p.Config.App.Version),
				zap.String("environment", p.Config.App.Environment),
			)

			if p.Config.Monitoring.EnableMetrics {
				go p.Metrics.WatchDB(watchCtx, p.DB, dbStatsInterval)
			}

			p.Config.Watch(log, func(next *config.Config) {
				p.Level.SetLevel(logger.ParseLevel(next.App.LogLevel))
				p.AI.SetPrimary(next.AI.Primary)
			})

			serve := func(name string, start func() error) {
				if err := start(); err != nil {
					log.Error("Server stopped unexpectedly", zap.String("server", name), zap.Error(err))
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				}
			}
			go serve("api", p.API.Start)
			go serve("ops", p.Ops.Start)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down AyurWell")
			stopWatch()

			if err := p.API.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown API server", zap.Error(err))
			}
			p.Hub.Close()
			if err := p.Ops.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown ops server", zap.Error(err))
			}

			if err := p.DB.Close(); err != nil {
				log.Error("Failed to close database connection", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
