package httpmw

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/cwrk-planet/signal-relay/pkg/logger"
)

func TestRequestLogger_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logger.Config{Env: logger.EnvDev, Backend: logger.BackendStd, Output: &buf})

	h := middleware.RequestID(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside")
		http.Error(w, "nope", http.StatusNotFound)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	out := buf.String()
	if !strings.Contains(out, "msg=inside") || !strings.Contains(out, "path=/missing") {
		t.Fatalf("request-scoped logger not used: %s", out)
	}
	if !strings.Contains(out, "level=WARN msg=http_request") || !strings.Contains(out, "status=404") {
		t.Fatalf("expected warn line with status: %s", out)
	}
	if !strings.Contains(out, "req_id=") {
		t.Fatalf("req_id missing: %s", out)
	}
}

func TestStatusWriter_HijackUnsupported(t *testing.T) {
	sw := &statusWriter{ResponseWriter: httptest.NewRecorder()}
	if _, _, err := sw.Hijack(); err == nil {
		t.Fatalf("expected error from recorder without Hijacker")
	}
}
