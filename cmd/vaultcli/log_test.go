package main

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTMLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := newTMLogger(zap.New(core)).With("module", "vault")

	logger.Debug("hidden", "a", 1)
	logger.Info("created", "vault", "ABCD")
	logger.Error("failed", "code", 7)

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if e := entries[0]; e.Message != "created" || e.Level != zapcore.InfoLevel {
		t.Fatalf("unexpected entry: %+v", e)
	}
	fields := entries[0].ContextMap()
	if fields["module"] != "vault" || fields["vault"] != "ABCD" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if e := entries[1]; e.Message != "failed" || e.Level != zapcore.ErrorLevel || e.ContextMap()["code"] != int64(7) {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := newLogger(level); err != nil {
			t.Errorf("level %q: %s", level, err)
		}
	}
	if _, err := newLogger("loud"); err == nil {
		t.Fatal("accepted an unknown level")
	}
}
