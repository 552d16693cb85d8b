package logger

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  session_id  ", Value: "  abc  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "session_id" || fields[0].String != "abc" {
		t.Fatalf("unexpected session field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestSessionFields(t *testing.T) {
	fields := SessionFields("  s-1  ", "42")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldSession || fields[0].String != "s-1" {
		t.Fatalf("unexpected session field: %+v", fields[0])
	}

	if fields[1].Key != FieldUser || fields[1].String != "42" {
		t.Fatalf("unexpected user field: %+v", fields[1])
	}

	if len(SessionFields("", "")) != 0 {
		t.Fatalf("expected empty fields")
	}
}

func TestWithSession(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithSession(zap.New(core), "s-1", "42").Info("test log")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldSession] != "s-1" || ctx[FieldUser] != "42" {
		t.Fatalf("unexpected context: %v", ctx)
	}

	// Ensure the nil fallback does not panic.
	WithSession(nil, "s-1", "42").Info("another log")
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matchdeck.log")

	logger, err := New(Options{JSON: true, Debug: true, File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug("written to file")
	_ = logger.Sync()

	matches, err := filepath.Glob(path + "*")
	if err != nil || len(matches) == 0 {
		t.Fatalf("expected log file to be created, got %v (%v)", matches, err)
	}
}
