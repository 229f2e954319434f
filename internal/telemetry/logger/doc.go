// Package logger provides structured logging for FlashKV.
//
// This package wraps log/slog for structured logging:
//
//   - logger.go: slog-backed Logger, level and format configuration
//   - context.go: Context-aware logging with connection IDs and command sequence numbers
//   - redact.go: Sensitive data redaction
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering
//   - Automatic sensitive data masking
//   - Context propagation for connection tracing
package logger
