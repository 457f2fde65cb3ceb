package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	log, err := New(Config{Level: "debug", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info("model loaded", zap.String("model", "random_forest"))
	_ = log.Sync()

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(payload), `"msg":"model loaded"`) {
		t.Fatalf("expected log line in file, got %s", payload)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestForAddsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := WithRequestID(context.Background(), "req-1")

	For(ctx, zap.New(core)).Info("scored")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["request_id"] != "req-1" {
		t.Fatalf("expected request_id field, got %v", entries[0].ContextMap())
	}
	if RequestID(context.Background()) != "" {
		t.Fatal("expected empty request id")
	}
}
