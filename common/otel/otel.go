package otel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fritakagp.app/backend/core/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type shutdownFunc func(context.Context) error

// Telemetry owns the exporters installed by Setup.
type Telemetry struct {
	shutdowns []namedShutdown
}

type namedShutdown struct {
	name string
	fn   shutdownFunc
}

// Shutdown flushes and stops the providers in reverse order of installation.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.shutdowns) - 1; i >= 0; i-- {
		s := t.shutdowns[i]
		if err := s.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s shutdown: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// Setup installs OTLP/HTTP exporters for traces, logs and metrics.
// Returns nil when OTEL_EXPORTER_OTLP_ENDPOINT is unset; the global no-op
// providers stay in place then.
func Setup(ctx context.Context, cfg config.OTelConfig) (*Telemetry, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	exp := exporterConfig{endpoint: strings.TrimSuffix(cfg.Endpoint, "/"), headers: parseHeaders(cfg.Headers)}
	t := &Telemetry{}

	steps := []struct {
		name    string
		install func(context.Context, exporterConfig, *resource.Resource) (shutdownFunc, error)
	}{
		{"tracer", installTracing},
		{"logger", installLogging},
		{"meter", installMetrics},
	}
	for _, step := range steps {
		shutdown, err := step.install(ctx, exp, res)
		if err != nil {
			_ = t.Shutdown(ctx)
			return nil, err
		}
		t.shutdowns = append(t.shutdowns, namedShutdown{name: step.name, fn: shutdown})
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return t, nil
}

type exporterConfig struct {
	endpoint string
	headers  map[string]string
}

func (c exporterConfig) url(signal string) string {
	return c.endpoint + "/v1/" + signal
}

func installTracing(ctx context.Context, c exporterConfig, res *resource.Resource) (shutdownFunc, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(c.url("traces")),
		otlptracehttp.WithHeaders(c.headers),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

func installLogging(ctx context.Context, c exporterConfig, res *resource.Resource) (shutdownFunc, error) {
	exporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(c.url("logs")),
		otlploghttp.WithHeaders(c.headers),
	)
	if err != nil {
		return nil, fmt.Errorf("creating log exporter: %w", err)
	}
	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(provider)
	return provider.Shutdown, nil
}

// Job counters are cumulative; the periodic reader pushes them every minute by default.
func installMetrics(ctx context.Context, c exporterConfig, res *resource.Resource) (shutdownFunc, error) {
	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpointURL(c.url("metrics")),
		otlpmetrichttp.WithHeaders(c.headers),
	)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)
	return provider.Shutdown, nil
}

// parseHeaders reads OTEL_EXPORTER_OTLP_HEADERS ("k1=v1,k2=v2").
func parseHeaders(s string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers
}
