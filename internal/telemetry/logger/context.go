// Package logger provides structured logging for FlashKV.
package logger

import "context"

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = "flashkv.logger"
	// connIDKey is the context key for the connection ID.
	connIDKey contextKey = "flashkv.conn_id"
	// commandSeqKey is the context key for the per-connection command
	// sequence number.
	commandSeqKey contextKey = "flashkv.command_seq"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithConnID adds a connection ID to the context. Every accepted RESP
// connection gets one for the lifetime of the socket, so log lines from
// concurrent connections can be told apart.
func WithConnID(ctx context.Context, connID string) context.Context {
	return context.WithValue(ctx, connIDKey, connID)
}

// ConnIDFromContext extracts the connection ID from context.
func ConnIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(connIDKey).(string); ok {
		return id
	}
	return ""
}

// WithCommandSeq adds a per-connection command sequence number to the
// context. A connection's commands are dispatched one at a time, so the
// sequence increases monotonically across a pipeline and lets a single
// command's log lines be correlated even when several are batched into
// one read.
func WithCommandSeq(ctx context.Context, seq string) context.Context {
	return context.WithValue(ctx, commandSeqKey, seq)
}

// CommandSeqFromContext extracts the command sequence number from context.
func CommandSeqFromContext(ctx context.Context) string {
	if seq, ok := ctx.Value(commandSeqKey).(string); ok {
		return seq
	}
	return ""
}

// L is a shorthand for FromContext that also enriches the logger with
// the connection ID and command sequence number carried on the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)

	if connID := ConnIDFromContext(ctx); connID != "" {
		l = l.With("conn_id", connID)
	}

	if seq := CommandSeqFromContext(ctx); seq != "" {
		l = l.With("command_seq", seq)
	}

	return l
}
