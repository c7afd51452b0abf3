package dev

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/strata-dev/strata/internal/config"
)

func newDevProject(t *testing.T, appFiles ...string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	for _, rel := range appFiles {
		p := filepath.Join(dir, "app", filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("package app\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return config.Default(dir)
}

func TestSessionRecompile(t *testing.T) {
	cfg := newDevProject(t, "layout.go", "page.go", "blog/page.go")
	s := NewSession(cfg, nil, nil)

	if err := s.Recompile(context.Background()); err != nil {
		t.Fatalf("Recompile: %v", err)
	}

	if got := len(s.Manifests()); got != 2 {
		t.Errorf("manifests = %d, want 2", got)
	}
	if s.LastError() != "" {
		t.Errorf("LastError = %q", s.LastError())
	}
}

func TestSessionAutoCreatesRootLayout(t *testing.T) {
	cfg := newDevProject(t, "page.go")
	s := NewSession(cfg, nil, nil)

	if err := s.Recompile(context.Background()); err != nil {
		t.Fatalf("Recompile: %v", err)
	}

	// Interactive mode wrote the stub layout instead of failing.
	if _, err := os.Stat(filepath.Join(cfg.AppPath(), "layout.go")); err != nil {
		t.Errorf("stub layout not created: %v", err)
	}
	if got := len(s.Manifests()); got != 1 {
		t.Errorf("manifests = %d, want 1", got)
	}
}

func TestSessionRecompileFailureKeepsManifests(t *testing.T) {
	cfg := newDevProject(t, "layout.go", "page.go")
	s := NewSession(cfg, nil, nil)

	if err := s.Recompile(context.Background()); err != nil {
		t.Fatalf("Recompile: %v", err)
	}

	// A second page file for the same route makes the app ambiguous; the
	// failed recompile must keep the last good manifests and surface the
	// error.
	p := filepath.Join(cfg.AppPath(), "page.templ")
	if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := s.Recompile(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := len(s.Manifests()); got != 1 {
		t.Errorf("manifests = %d, want previous result kept", got)
	}
	if s.LastError() == "" {
		t.Error("LastError empty after failed recompile")
	}
}

func TestSessionHandleChangesIgnoresUnrelatedPaths(t *testing.T) {
	cfg := newDevProject(t, "layout.go", "page.go")
	s := NewSession(cfg, nil, nil)

	if err := s.Recompile(context.Background()); err != nil {
		t.Fatalf("Recompile: %v", err)
	}
	before := s.Manifests()

	s.HandleChanges(context.Background(), []Change{{Path: "/somewhere/else.go"}})

	// Unrelated change: no recompilation, manifests slice unchanged.
	after := s.Manifests()
	if len(before) != len(after) || before[0] != after[0] {
		t.Error("unrelated change triggered a recompile")
	}
}
