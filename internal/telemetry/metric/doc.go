// Package metric provides Prometheus metrics for FlashKV.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: metric definitions, Registry, and the /metrics handler
//   - collector.go: a custom collector reading live storage.Engine counters
//
// Metrics include connection counts, command throughput and latency,
// byte counters, and storage size/operation counters.
//
// Metrics are exposed at /metrics in Prometheus text format via
// internal/server/metricsserver.
package metric
