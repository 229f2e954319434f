package metricsserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flashkv/flashkv/internal/telemetry/metric"
)

func TestRouter_Healthz(t *testing.T) {
	r := NewRouter(metric.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("body = %q, want status:healthy", rec.Body.String())
	}
}

func TestRouter_Metrics(t *testing.T) {
	reg := metric.NewRegistry()
	reg.ConnectionsAccepted.Inc()

	r := NewRouter(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "flashkv_connections_accepted_total 1") {
		t.Error("expected flashkv_connections_accepted_total 1 in /metrics output")
	}
}

func TestRouter_UnknownPath(t *testing.T) {
	r := NewRouter(metric.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
