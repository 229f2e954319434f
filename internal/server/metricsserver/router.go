package metricsserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/flashkv/flashkv/internal/telemetry/metric"
)

// NewRouter builds the metrics server's handler: GET /metrics in
// Prometheus text format, GET /healthz for liveness checks.
func NewRouter(registry *metric.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", registry.Handler())
	mux.HandleFunc("GET /healthz", handleHealthz)
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
