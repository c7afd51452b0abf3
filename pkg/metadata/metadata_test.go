package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/strata-dev/strata/pkg/resolver"
)

func writeFile(t *testing.T, dir, rel string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCollectRootConventions(t *testing.T) {
	dir := t.TempDir()
	favicon := writeFile(t, dir, "favicon.ico")
	robots := writeFile(t, dir, "robots.txt")
	icon := writeFile(t, dir, "icon.svg")

	s := NewStaticFiles(dir, nil)
	files, err := s.Collect(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"metadata:favicon", favicon},
		{"metadata:robots", robots},
		{"metadata:icon", icon},
	}
	for _, tt := range tests {
		ref, ok := files[tt.key]
		if !ok {
			t.Errorf("missing %s entry: %v", tt.key, files)
			continue
		}
		if ref.PhysicalPath != tt.want {
			t.Errorf("%s = %q, want %q", tt.key, ref.PhysicalPath, tt.want)
		}
	}
}

func TestCollectRootOnlyKindsSkippedInSegments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blog/favicon.ico")
	writeFile(t, dir, "blog/robots.txt")
	iconPath := writeFile(t, dir, "blog/opengraph-image.png")

	s := NewStaticFiles(dir, nil)
	files, err := s.Collect(context.Background(), "blog", false)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if _, ok := files["metadata:favicon"]; ok {
		t.Error("favicon collected below the app root")
	}
	if _, ok := files["metadata:robots"]; ok {
		t.Error("robots collected below the app root")
	}
	if ref := files["metadata:opengraph-image"]; ref.PhysicalPath != iconPath {
		t.Errorf("opengraph-image = %+v", ref)
	}
}

func TestCollectNothingFound(t *testing.T) {
	s := NewStaticFiles(t.TempDir(), nil)
	files, err := s.Collect(context.Background(), "", true)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if files != nil {
		t.Errorf("files = %v, want nil", files)
	}
}

func TestCollectSharesDepTracker(t *testing.T) {
	dir := t.TempDir()
	icon := writeFile(t, dir, "icon.png")

	deps := resolver.NewDepTracker()
	s := NewStaticFiles(dir, deps)
	if _, err := s.Collect(context.Background(), "", true); err != nil {
		t.Fatal(err)
	}

	if !deps.Affects(icon) {
		t.Error("resolved metadata file not recorded as a dependency")
	}
	// Probed-but-absent candidates count too.
	if !deps.Affects(filepath.Join(dir, "robots.txt")) {
		t.Error("missing metadata candidate not recorded")
	}
}
