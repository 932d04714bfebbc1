package monitoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

// Telemetry owns the global OpenTelemetry providers. Instruments created
// through otel.Meter end up on the Prometheus registry it was built with.
type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	logger         *zap.Logger
}

// NewTelemetry installs the global tracer and meter providers
func NewTelemetry(ctx context.Context, app config.AppConfig, cfg config.MonitoringConfig, registerer prometheus.Registerer, logger *zap.Logger) (*Telemetry, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(app.Name),
		semconv.ServiceVersion(app.Version),
		semconv.DeploymentEnvironment(app.Environment),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registerer))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	tracerProvider, err := newTracerProvider(ctx, cfg.Tracing, res)
	if err != nil {
		_ = meterProvider.Shutdown(ctx)
		return nil, err
	}

	otel.SetMeterProvider(meterProvider)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Telemetry initialized",
		zap.Bool("tracing", cfg.Tracing.Enabled),
		zap.String("otlp_endpoint", cfg.Tracing.Endpoint),
		zap.Float64("sampling_rate", cfg.Tracing.SamplingRate),
	)

	return &Telemetry{
		tracerProvider: tracerProvider,
		meterProvider:  meterProvider,
		logger:         logger,
	}, nil
}

// Shutdown flushes pending spans and stops both providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if err := t.tracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer provider: %w", err))
	}
	if err := t.meterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("meter provider: %w", err))
	}
	return errors.Join(errs...)
}
