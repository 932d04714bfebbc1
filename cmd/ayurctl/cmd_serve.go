package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/ayurwell/portal/internal/infrastructure/container"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API and ops servers",
	Long: `Starts the JSON API on server.port and the health/metrics server on
server.ops_port. SIGINT or SIGTERM shuts both down gracefully.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	opts := []fx.Option{container.New(configPath)}
	if verbose {
		opts = append(opts, fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}))
	} else {
		opts = append(opts, fx.NopLogger)
	}
	app := fx.New(opts...)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		log.Warn("Application requested shutdown", zap.Int("exit_code", sig.ExitCode))
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), timeout)
	defer stopCancel()
	return app.Stop(stopCtx)
}
