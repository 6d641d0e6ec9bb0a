package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/fd1az/aurora-staking/internal/logger"
)

func TestLogger_WritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelInfo, "staking-test", nil)

	log.Info(context.Background(), "cycle complete", "account", "0xabc", "streams", 5)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}

	if rec["msg"] != "cycle complete" {
		t.Errorf("expected msg 'cycle complete', got %v", rec["msg"])
	}
	if rec["service"] != "staking-test" {
		t.Errorf("expected service attr, got %v", rec["service"])
	}
	if rec["account"] != "0xabc" {
		t.Errorf("expected account attr, got %v", rec["account"])
	}
	if rec["streams"] != float64(5) {
		t.Errorf("expected streams=5, got %v", rec["streams"])
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelWarn, "", nil)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %s", buf.String())
	}

	log.Warn(context.Background(), "shown")
	if buf.Len() == 0 {
		t.Error("expected warn record to be written")
	}
}

func TestLogger_ErrorEvents(t *testing.T) {
	var got []string
	events := &logger.Events{
		Error: func(ctx context.Context, r slog.Record) {
			got = append(got, r.Message)
		},
	}

	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelDebug, "", events)

	log.Info(context.Background(), "info")
	log.Error(context.Background(), "boom")

	if len(got) != 1 || got[0] != "boom" {
		t.Errorf("expected one error event 'boom', got %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logger.Level
	}{
		{"debug", logger.LevelDebug},
		{"info", logger.LevelInfo},
		{"warn", logger.LevelWarn},
		{"error", logger.LevelError},
		{"", logger.LevelInfo},
		{"verbose", logger.LevelInfo},
	}

	for _, tt := range tests {
		if got := logger.ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
