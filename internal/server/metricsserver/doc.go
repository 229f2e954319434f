// Package metricsserver provides the HTTP server exposing FlashKV's
// Prometheus metrics and health check.
//
// It uses the Go standard library net/http, the same way the RESP
// server uses net directly: no web framework, just a mux and a couple
// of routes.
package metricsserver
