package apm

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

func TestParseProvider(t *testing.T) {
	tests := map[string]Provider{
		"zipkin":     ZipkinProvider,
		" OTLP-GRPC": OTLPGRPCProvider,
		"otlp-http":  OTLPHTTPProvider,
		"console":    ConsoleProvider,
		"":           EmptyProvider,
		"newrelic":   EmptyProvider,
	}

	for in, want := range tests {
		if got := ParseProvider(in); got != want {
			t.Errorf("ParseProvider(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNewTraceProvider_ExportsSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()

	tp, err := NewTraceProvider("aurora-staking-test", WithExporter("memory", exp))
	if err != nil {
		t.Fatalf("NewTraceProvider: %v", err)
	}

	_, span := otel.Tracer("apm-test").Start(context.Background(), "staking.sync")
	span.End()

	sdk, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	if !ok {
		t.Fatalf("global provider is %T", otel.GetTracerProvider())
	}
	if err := sdk.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}

	spans := exp.GetSpans()
	if len(spans) != 1 || spans[0].Name != "staking.sync" {
		t.Fatalf("expected one exported span, got %v", spans)
	}

	if err := tp.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestNewTraceProvider_EmptyProvider(t *testing.T) {
	tp, err := NewTraceProvider("svc", WithProvider(EmptyProvider, ExporterConfig{}, &mockLogger{}))
	if err != nil {
		t.Fatalf("NewTraceProvider: %v", err)
	}
	if _, ok := tp.(emptyTraceProvider); !ok {
		t.Errorf("expected the no-op provider, got %T", tp)
	}
	if err := tp.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
