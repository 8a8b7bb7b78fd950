package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"userdir/internal/core/port"
	"userdir/internal/core/telemetry"
	"userdir/pkg/config"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	MetricsPort    string
	OTLPEndpoint   string
}

func ConfigFrom(cfg *config.AppConfig) Config {
	return Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}
}

type Container struct {
	TracerProvider     *sdktrace.TracerProvider
	MeterProvider      *sdkmetric.MeterProvider
	PrometheusRegistry *prometheus.Registry
	MetricsServer      *http.Server
	AppMetrics         *telemetry.AppMetrics
}

// NewContainer installs the global tracer and meter providers. Spans are
// exported over OTLP only when an endpoint is configured; /metrics gets its
// own listener only when a metrics port is configured.
func NewContainer(ctx context.Context, cfg Config, logger *config.Logger) (*Container, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentKey.String(cfg.Environment),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	appMetrics := telemetry.NewAppMetrics(registry)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	if cfg.OTLPEndpoint != "" {
		otlpExporter, err := otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)

		if err != nil {
			return nil, err
		}

		opts = append(opts, sdktrace.WithBatcher(otlpExporter,
			sdktrace.WithBatchTimeout(time.Second),
		))
	}

	tracerProvider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tracerProvider)

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		return nil, err
	}

	c := &Container{
		TracerProvider:     tracerProvider,
		MeterProvider:      meterProvider,
		PrometheusRegistry: registry,
		AppMetrics:         appMetrics,
	}

	if cfg.MetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

		c.MetricsServer = &http.Server{
			Addr:         ":" + cfg.MetricsPort,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}

		go func() {
			if err := c.MetricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Failed to start metrics server", zap.Error(err))
			}
		}()
	}

	return c, nil
}

func (c *Container) Shutdown(ctx context.Context) error {
	if err := c.TracerProvider.Shutdown(ctx); err != nil {
		return err
	}

	if err := c.MeterProvider.Shutdown(ctx); err != nil {
		return err
	}

	if c.MetricsServer != nil {
		return c.MetricsServer.Shutdown(ctx)
	}

	return nil
}

func (c *Container) NewTelemetryProbe(logger *config.Logger) port.Telemetry {
	return telemetry.NewOTELProbe(logger)
}
