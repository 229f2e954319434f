// Package metric provides Prometheus metrics for FlashKV.
//
// It exposes connection, command, and storage metrics in Prometheus
// format for monitoring server health and load.
package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flashkv/flashkv/internal/storage"
)

// Registry holds every metric flashkv-server exposes, plus the
// prometheus.Registry they're registered against.
type Registry struct {
	registry *prometheus.Registry

	ConnectionsAccepted prometheus.Counter
	ConnectionsActive   prometheus.Gauge
	RateLimitRejections prometheus.Counter

	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	BytesRead       prometheus.Counter
	BytesWritten    prometheus.Counter
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide Registry, creating it on first call.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// NewRegistry builds a fresh Registry backed by its own
// prometheus.Registry (not the default global one), so multiple
// instances never collide in tests.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		registry: reg,
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flashkv_connections_accepted_total",
			Help: "Total TCP connections accepted by the RESP server.",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flashkv_connections_active",
			Help: "Currently open RESP connections.",
		}),
		RateLimitRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flashkv_rate_limit_rejections_total",
			Help: "Commands rejected by the per-IP rate limiter.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flashkv_commands_total",
			Help: "Total commands processed, by command name and outcome.",
		}, []string{"command", "outcome"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flashkv_command_duration_seconds",
			Help:    "Command handler latency in seconds, by command name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		BytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flashkv_bytes_read_total",
			Help: "Total bytes read from client sockets.",
		}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flashkv_bytes_written_total",
			Help: "Total bytes written to client sockets.",
		}),
	}

	reg.MustRegister(
		r.ConnectionsAccepted,
		r.ConnectionsActive,
		r.RateLimitRejections,
		r.CommandsTotal,
		r.CommandDuration,
		r.BytesRead,
		r.BytesWritten,
	)

	return r
}

// RegisterStorage adds a StorageCollector over engine to the registry.
// Call once per engine instance; registering the same engine twice
// panics, since prometheus.Registry rejects duplicate collectors.
func (r *Registry) RegisterStorage(engine *storage.Engine) {
	r.registry.MustRegister(NewStorageCollector(engine))
}

// RecordCommand increments CommandsTotal and observes CommandDuration
// for one dispatched command.
func (r *Registry) RecordCommand(command, outcome string, seconds float64) {
	r.CommandsTotal.WithLabelValues(command, outcome).Inc()
	r.CommandDuration.WithLabelValues(command).Observe(seconds)
}

// Handler returns an http.Handler serving this registry's metrics in
// Prometheus text exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Handler returns an http.Handler for the process-wide Global registry.
func Handler() http.Handler {
	return Global().Handler()
}
