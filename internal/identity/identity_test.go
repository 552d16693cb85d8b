package identity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestChainOrder(t *testing.T) {
	cache := File(filepath.Join(t.TempDir(), "user"))
	if err := cache.Remember("from-file"); err != nil {
		t.Fatalf("remember: %v", err)
	}

	tests := []struct {
		name   string
		static string
		env    string
		expect string
	}{
		{name: "config first", static: "42", env: "7", expect: "42"},
		{name: "env second", env: "7", expect: "7"},
		{name: "file last", expect: "from-file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvUserID, tt.env)

			chain := Chain{Providers: []Provider{Static(tt.static), Env(""), cache}}
			id, err := chain.UserID(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, id)
			}
		})
	}
}

func TestChainNoIdentity(t *testing.T) {
	t.Setenv(EnvUserID, "")

	core, logs := observer.New(zap.DebugLevel)
	chain := Chain{
		Providers: []Provider{Static(" "), Env(""), File(filepath.Join(t.TempDir(), "missing"))},
		Logger:    zap.New(core),
	}

	if _, err := chain.UserID(context.Background()); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
	if got := logs.FilterMessage("identity provider has no user id").Len(); got != 3 {
		t.Fatalf("expected 3 skipped providers, got %d", got)
	}
}

func TestChainFileError(t *testing.T) {
	t.Setenv(EnvUserID, "")

	dir := t.TempDir()
	chain := Chain{Providers: []Provider{Env(""), File(dir)}}

	_, err := chain.UserID(context.Background())
	if err == nil || errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected a read error for a directory, got %v", err)
	}
}

func TestFileRemember(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "user")
	if err := File(path).Remember(" 123 "); err != nil {
		t.Fatalf("remember: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "123\n" {
		t.Fatalf("unexpected file content %q", data)
	}

	id, err := File(path).UserID(context.Background())
	if err != nil || id != "123" {
		t.Fatalf("expected 123, got %q, %v", id, err)
	}

	if err := File("").Remember("1"); err != nil {
		t.Fatalf("empty path must be a no-op, got %v", err)
	}
}
