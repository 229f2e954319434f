// Package main provides the entry point for flashkv-server.
//
// flashkv-server is an in-memory, RESP-protocol key-value server. It
// speaks the Redis wire protocol (RESP2/RESP3) over TCP and exposes a
// Prometheus metrics endpoint plus a liveness check over HTTP.
//
// Usage:
//
//	flashkv-server [flags]
//	flashkv-server --config /path/to/config.yaml
//
// The server loads configuration, starts the background expiry sweeper,
// and listens for RESP connections until it receives SIGINT or SIGTERM.
package main
