package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestWithLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	}

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	ctx = WithLogger(ctx, l)

	retrieved := FromContext(ctx)
	if retrieved == nil {
		t.Fatal("FromContext returned nil")
	}

	retrieved.Info("test message")

	if buf.Len() == 0 {
		t.Error("Logger from context should produce output")
	}
}

func TestFromContext_Default(t *testing.T) {
	ctx := context.Background()

	// Should return default logger when none is set
	l := FromContext(ctx)
	if l == nil {
		t.Error("FromContext should return default logger, got nil")
	}
}

func TestWithConnID(t *testing.T) {
	ctx := context.Background()
	connID := "17"

	ctx = WithConnID(ctx, connID)

	retrieved := ConnIDFromContext(ctx)
	if retrieved != connID {
		t.Errorf("ConnIDFromContext() = %q, want %q", retrieved, connID)
	}
}

func TestConnIDFromContext_Empty(t *testing.T) {
	ctx := context.Background()

	retrieved := ConnIDFromContext(ctx)
	if retrieved != "" {
		t.Errorf("ConnIDFromContext() = %q, want empty string", retrieved)
	}
}

func TestWithCommandSeq(t *testing.T) {
	ctx := context.Background()
	seq := "3"

	ctx = WithCommandSeq(ctx, seq)

	retrieved := CommandSeqFromContext(ctx)
	if retrieved != seq {
		t.Errorf("CommandSeqFromContext() = %q, want %q", retrieved, seq)
	}
}

func TestCommandSeqFromContext_Empty(t *testing.T) {
	ctx := context.Background()

	retrieved := CommandSeqFromContext(ctx)
	if retrieved != "" {
		t.Errorf("CommandSeqFromContext() = %q, want empty string", retrieved)
	}
}

func TestL_WithConnID(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	}

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	ctx = WithLogger(ctx, l)
	ctx = WithConnID(ctx, "17")

	// L() should enrich with conn ID
	enrichedLogger := L(ctx)
	enrichedLogger.Info("test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	connID, ok := logEntry["conn_id"].(string)
	if !ok || connID != "17" {
		t.Errorf("Expected conn_id='17', got %v", logEntry["conn_id"])
	}
}

func TestL_WithCommandSeq(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	}

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	ctx = WithLogger(ctx, l)
	ctx = WithCommandSeq(ctx, "3")

	enrichedLogger := L(ctx)
	enrichedLogger.Info("test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	seq, ok := logEntry["command_seq"].(string)
	if !ok || seq != "3" {
		t.Errorf("Expected command_seq='3', got %v", logEntry["command_seq"])
	}
}

func TestL_WithConnIDAndCommandSeq(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	}

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	ctx = WithLogger(ctx, l)
	ctx = WithConnID(ctx, "17")
	ctx = WithCommandSeq(ctx, "3")

	enrichedLogger := L(ctx)
	enrichedLogger.Info("test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	if connID, ok := logEntry["conn_id"].(string); !ok || connID != "17" {
		t.Errorf("Expected conn_id='17', got %v", logEntry["conn_id"])
	}

	if seq, ok := logEntry["command_seq"].(string); !ok || seq != "3" {
		t.Errorf("Expected command_seq='3', got %v", logEntry["command_seq"])
	}
}

func TestL_NoIDs(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	}

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	ctx = WithLogger(ctx, l)

	// L() without IDs should just return the logger
	enrichedLogger := L(ctx)
	enrichedLogger.Info("test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	// Should not have conn_id or command_seq
	if _, ok := logEntry["conn_id"]; ok {
		t.Error("Should not have conn_id when not set")
	}

	if _, ok := logEntry["command_seq"]; ok {
		t.Error("Should not have command_seq when not set")
	}
}

func TestContextKeyCollision(t *testing.T) {
	// Test that our context keys don't collide with each other
	ctx := context.Background()

	ctx = WithConnID(ctx, "17")
	ctx = WithCommandSeq(ctx, "3")

	// Both should be retrievable
	if connID := ConnIDFromContext(ctx); connID != "17" {
		t.Errorf("ConnID collision, got %q", connID)
	}

	if seq := CommandSeqFromContext(ctx); seq != "3" {
		t.Errorf("CommandSeq collision, got %q", seq)
	}
}
