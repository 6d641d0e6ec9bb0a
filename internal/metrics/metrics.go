// Package metrics configures the OpenTelemetry meter provider and serves
// the Prometheus scrape endpoint.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	metric2 "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/aurora-staking/internal/logger"
)

type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

func getReaders(ctx context.Context, cfg Config) ([]metric2.Reader, error) {
	providers := cfg.Provider
	if len(providers) == 0 {
		providers = []ProviderCfg{{Provider: PrometheusProvider}}
	}

	var readers []metric2.Reader

	for _, provider := range providers {
		switch provider.Provider {
		case PrometheusProvider:
			promExporter, err := prometheus.New()
			if err != nil {
				return nil, fmt.Errorf("prometheus exporter: %w", err)
			}

			readers = append(readers, promExporter)
		case OtelCollector:
			opts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(provider.Endpoint),
				otlpmetricgrpc.WithHeaders(provider.Headers),
			}

			if provider.Insecure {
				opts = append(opts, otlpmetricgrpc.WithInsecure())
			}

			exp, err := otlpmetricgrpc.New(ctx, opts...)
			if err != nil {
				return nil, fmt.Errorf("otlp metric exporter: %w", err)
			}

			readers = append(readers, metric2.NewPeriodicReader(exp))
		default:
			return nil, fmt.Errorf("unknown metric provider %q", provider.Provider)
		}
	}

	return readers, nil
}

// NewMetricProvider installs a global meter provider. Without provider
// options it exports to Prometheus.
func NewMetricProvider(ctx context.Context, options ...OptionFn) (MetricProvider, error) {
	var cfg Config

	for _, opt := range options {
		cfg = opt(cfg)
	}

	readers, err := getReaders(ctx, cfg)
	if err != nil {
		return nil, err
	}

	metricsOps := make([]metric2.Option, 0, len(readers)+1)

	for _, reader := range readers {
		metricsOps = append(metricsOps, metric2.WithReader(reader))
	}

	metricsOps = append(metricsOps, metric2.WithResource(
		resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName)),
	))

	meterProvider := metric2.NewMeterProvider(metricsOps...)

	otel.SetMeterProvider(meterProvider)

	return meterProvider, nil
}

// Server serves /metrics for Prometheus scraping.
type Server struct {
	port   int
	logger logger.LoggerInterface
	server *http.Server
}

// NewServer creates a metrics server on port.
func NewServer(port int, log logger.LoggerInterface) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		port:   port,
		logger: log,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start binds the port and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, "metrics server stopped", "error", err)
		}
	}()

	s.logger.Info(ctx, "serving metrics", "port", s.port, "path", "/metrics")
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
