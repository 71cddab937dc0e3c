package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/cwrk-planet/signal-relay/pkg/logger"
)

func TestDetectEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	if got := logger.DetectEnv(); got != logger.EnvDev {
		t.Fatalf("default should be dev, got %q", got)
	}

	t.Setenv("APP_ENV", "staging")
	if got := logger.DetectEnv(); got != logger.EnvStage {
		t.Fatalf("expected stage, got %q", got)
	}

	t.Setenv("APP_ENV", " Production ")
	if got := logger.DetectEnv(); got != logger.EnvProd {
		t.Fatalf("expected prod, got %q", got)
	}
}

func TestInit_DevStd_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logger.Config{
		Service: "signal-relay",
		Version: "v0.0.1",
		Env:     logger.EnvDev,
		Backend: logger.BackendStd,
		Level:   slog.LevelDebug,
		Output:  &buf,
	})
	slog.Info("room joined", "room", "lobby")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("expected text output in dev/std, got JSON: %s", out)
	}
	for _, want := range []string{"room joined", "room=lobby", "service=signal-relay", "env=dev"} {
		if !strings.Contains(out, want) {
			t.Fatalf("%q missing: %s", want, out)
		}
	}
}

func TestInit_DebugFlagLowersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logger.Config{Env: logger.EnvDev, Backend: logger.BackendStd, Output: &buf})
	slog.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written without Debug: %s", buf.String())
	}

	logger.Init(logger.Config{Env: logger.EnvDev, Backend: logger.BackendStd, Debug: true, Output: &buf})
	slog.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("debug line missing: %s", buf.String())
	}
}

func TestInit_ProdZap_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logger.Config{
		Service:          "signal-relay",
		Version:          "1.2.3",
		Env:              logger.EnvProd,
		Level:            slog.LevelInfo,
		Output:           &buf,
		SampleInitial:    100000,
		SampleThereafter: 100000,
	})
	slog.Info("booted", slog.String("k", "v"))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected JSON line, got %s, err=%v", buf.String(), err)
	}
	if m["msg"] != "booted" {
		t.Fatalf("msg mismatch: %v", m["msg"])
	}
	if m["service"] != "signal-relay" || m["env"] != "prod" || m["version"] != "1.2.3" {
		t.Fatalf("attrs missing: service=%v env=%v version=%v", m["service"], m["env"], m["version"])
	}
	if m["level"] != "INFO" {
		t.Fatalf("level mismatch: %v", m["level"])
	}
	if m["k"] != "v" {
		t.Fatalf("custom field missing: %v", m["k"])
	}
}

func TestAttrsFromCtx_PropagatesTraceIDs(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	otel.SetTracerProvider(tp)

	if attrs := logger.AttrsFromCtx(context.Background()); attrs != nil {
		t.Fatalf("expected no attrs without span, got %v", attrs)
	}

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	attrs := logger.AttrsFromCtx(ctx)
	if len(attrs) != 2 {
		t.Fatalf("expected trace_id and span_id, got %v", attrs)
	}
	if attrs[0].Key != "trace_id" || attrs[0].Value.String() != span.SpanContext().TraceID().String() {
		t.Fatalf("trace_id mismatch: %v", attrs[0])
	}
	if attrs[1].Key != "span_id" || attrs[1].Value.String() != span.SpanContext().SpanID().String() {
		t.Fatalf("span_id mismatch: %v", attrs[1])
	}
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	base := logger.Init(logger.Config{Env: logger.EnvDev, Backend: logger.BackendStd, Output: &buf})

	if got := logger.FromContext(context.Background()); got != base {
		t.Fatalf("expected process logger")
	}

	scoped := base.With("req_id", "abc")
	ctx := logger.WithContext(context.Background(), scoped)
	logger.FromContext(ctx).Info("scoped")
	if !strings.Contains(buf.String(), "req_id=abc") {
		t.Fatalf("scoped attr missing: %s", buf.String())
	}
}
