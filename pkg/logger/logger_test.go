package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestNewWithWriter_ServiceField(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("catalog-importer", "info", &buf)

	l.Info("hello")

	var out map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if got := out["service"]; got != "catalog-importer" {
		t.Errorf("service = %v, want %q", got, "catalog-importer")
	}
	if got := out["msg"]; got != "hello" {
		t.Errorf("msg = %v, want %q", got, "hello")
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "warn", &buf)

	l.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info line should be suppressed at warn level, got %q", buf.String())
	}

	l.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn line should be emitted at warn level")
	}
}

func TestNewWithWriter_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "verbose", &buf)

	l.Debug("suppressed")
	if buf.Len() != 0 {
		t.Errorf("debug line should be suppressed at default level, got %q", buf.String())
	}

	l.Info("kept")
	if buf.Len() == 0 {
		t.Error("info line should be emitted at default level")
	}
}

func TestCorrelationID_RoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "run-123")
	if got := CorrelationIDFromContext(ctx); got != "run-123" {
		t.Errorf("correlation id = %q, want %q", got, "run-123")
	}
}

func TestCorrelationIDFromContext_Missing(t *testing.T) {
	if got := CorrelationIDFromContext(context.Background()); got != "" {
		t.Errorf("correlation id = %q, want empty", got)
	}
}

func TestFromContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", "info", &buf)

	ctx := IntoContext(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Error("FromContext should return the stored logger")
	}
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	if got := FromContext(context.Background()); got == nil {
		t.Error("FromContext should fall back to the default logger")
	}
}
