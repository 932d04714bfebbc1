// Package main is the entry point for the AyurWell API server
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/ayurwell/portal/internal/infrastructure/container"
)

func main() {
	configPath := flag.String("config", os.Getenv("AYURWELL_CONFIG"), "path to config.yaml")
	flag.Parse()

	app := fx.New(
		fx.NopLogger, // the application logs through zap
		container.New(*configPath),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		log.Printf("Application requested shutdown (exit code %d)", sig.ExitCode)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		log.Fatalf("Failed to stop application gracefully: %v", err)
	}
}
