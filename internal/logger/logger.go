// Package logger provides a context-aware structured logger built on log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Level is the minimum level a Logger emits.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// LoggerInterface is the logging contract used across modules.
// The *c variants take an extra number of stack frames to skip when
// resolving the source location.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	Debugc(ctx context.Context, caller int, msg string, args ...any)
	Infoc(ctx context.Context, caller int, msg string, args ...any)
	Warnc(ctx context.Context, caller int, msg string, args ...any)
	Errorc(ctx context.Context, caller int, msg string, args ...any)
}

// Events lets callers observe records above a level, e.g. to forward
// errors somewhere other than the main writer.
type Events struct {
	Debug func(ctx context.Context, r slog.Record)
	Info  func(ctx context.Context, r slog.Record)
	Warn  func(ctx context.Context, r slog.Record)
	Error func(ctx context.Context, r slog.Record)
}

// Logger writes JSON records tagged with service name and trace ids.
type Logger struct {
	handler slog.Handler
	events  *Events
}

var _ LoggerInterface = (*Logger)(nil)

// New creates a Logger writing to w at the given minimum level.
func New(w io.Writer, minLevel Level, serviceName string, events *Events) *Logger {
	handler := slog.Handler(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     minLevel,
	}))

	if serviceName != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", serviceName)})
	}

	return &Logger{
		handler: handler,
		events:  events,
	}
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelDebug, 3, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelInfo, 3, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelWarn, 3, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelError, 3, msg, args...)
}

func (l *Logger) Debugc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelDebug, 3+caller, msg, args...)
}

func (l *Logger) Infoc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelInfo, 3+caller, msg, args...)
}

func (l *Logger) Warnc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelWarn, 3+caller, msg, args...)
}

func (l *Logger) Errorc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelError, 3+caller, msg, args...)
}

func (l *Logger) write(ctx context.Context, level Level, skip int, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(skip, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	r.Add(args...)

	l.dispatch(ctx, r)

	_ = l.handler.Handle(ctx, r)
}

func (l *Logger) dispatch(ctx context.Context, r slog.Record) {
	if l.events == nil {
		return
	}

	var fn func(context.Context, slog.Record)
	switch {
	case r.Level >= LevelError:
		fn = l.events.Error
	case r.Level >= LevelWarn:
		fn = l.events.Warn
	case r.Level >= LevelInfo:
		fn = l.events.Info
	default:
		fn = l.events.Debug
	}

	if fn != nil {
		fn(ctx, r.Clone())
	}
}
