// Package apm configures OpenTelemetry tracing for the process.
package apm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/aurora-staking/internal/logger"
)

type Provider string

const (
	ZipkinProvider   Provider = "zipkin"
	OTLPGRPCProvider Provider = "otlp-grpc"
	OTLPHTTPProvider Provider = "otlp-http"
	ConsoleProvider  Provider = "console"
	EmptyProvider    Provider = "empty"
)

// ParseProvider maps a config value to a Provider. Unknown values are empty.
func ParseProvider(name string) Provider {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case ZipkinProvider, OTLPGRPCProvider, OTLPHTTPProvider, ConsoleProvider:
		return p
	default:
		return EmptyProvider
	}
}

type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

// ExporterConfig locates the trace backend.
type ExporterConfig struct {
	Endpoint string
	Headers  map[string]string
}

type TracerOptions struct {
	exporter           sdktrace.SpanExporter
	tracerProviderName string
	useEmpty           bool
	err                error
}

type TracerOption func(*TracerOptions)

// WithProvider selects the exporter for provider.
func WithProvider(provider Provider, cfg ExporterConfig, log logger.LoggerInterface) TracerOption {
	switch provider {
	case ZipkinProvider:
		return useZipkin(cfg)
	case OTLPGRPCProvider:
		return useOTLPGRPC(cfg)
	case OTLPHTTPProvider:
		return useOTLPHTTP(cfg)
	case ConsoleProvider:
		return useConsole()
	}

	log.Warn(context.Background(), "trace provider not configured, tracing disabled", "provider", provider)
	return useEmpty()
}

// WithExporter installs a ready-made exporter.
func WithExporter(name string, exp sdktrace.SpanExporter) TracerOption {
	return func(option *TracerOptions) {
		option.exporter = exp
		option.tracerProviderName = name
	}
}

func useEmpty() TracerOption {
	return func(option *TracerOptions) {
		option.useEmpty = true
		option.tracerProviderName = string(EmptyProvider)
	}
}

func useConsole() TracerOption {
	return func(option *TracerOptions) {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		option.exporter, option.err = exp, err
		option.tracerProviderName = string(ConsoleProvider)
	}
}

func useZipkin(cfg ExporterConfig) TracerOption {
	return func(option *TracerOptions) {
		exp, err := zipkin.New(cfg.Endpoint, zipkin.WithHeaders(cfg.Headers))
		option.exporter, option.err = exp, err
		option.tracerProviderName = string(ZipkinProvider)
	}
}

func useOTLPGRPC(cfg ExporterConfig) TracerOption {
	return func(option *TracerOptions) {
		exp, err := otlptracegrpc.New(
			context.Background(),
			otlptracegrpc.WithEndpointURL(cfg.Endpoint),
			otlptracegrpc.WithHeaders(cfg.Headers),
		)
		option.exporter, option.err = exp, err
		option.tracerProviderName = string(OTLPGRPCProvider)
	}
}

func useOTLPHTTP(cfg ExporterConfig) TracerOption {
	return func(option *TracerOptions) {
		exp, err := otlptracehttp.New(
			context.Background(),
			otlptracehttp.WithEndpointURL(cfg.Endpoint),
			otlptracehttp.WithHeaders(cfg.Headers),
		)
		option.exporter, option.err = exp, err
		option.tracerProviderName = string(OTLPHTTPProvider)
	}
}

// NewTraceProvider installs a global tracer provider for serviceName.
// Without options, or with the empty provider, tracing stays a no-op.
func NewTraceProvider(serviceName string, options ...TracerOption) (TraceProvider, error) {
	opts := &TracerOptions{}
	for _, opt := range options {
		opt(opts)
	}

	if opts.err != nil {
		return nil, fmt.Errorf("failed to create %s exporter: %w", opts.tracerProviderName, opts.err)
	}
	if opts.useEmpty || opts.exporter == nil {
		return emptyTraceProvider{}, nil
	}

	rsrc, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			attribute.String("otel.provider", opts.tracerProviderName),
		))
	if err != nil {
		// Schema URL conflicts still yield a usable resource.
		rsrc = resource.NewSchemaless(semconv.ServiceNameKey.String(serviceName))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(opts.exporter),
		sdktrace.WithResource(rsrc),
	)

	// Set global trace provider
	otel.SetTracerProvider(tp)

	// Set trace propagator
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{
		tp,
	}, nil
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	return o.tp.Shutdown(ctx)
}
