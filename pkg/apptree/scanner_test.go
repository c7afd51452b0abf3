package apptree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeAppFile(t *testing.T, dir, rel string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("package app\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScannerScan(t *testing.T) {
	dir := t.TempDir()
	for _, rel := range []string{
		"page.go",
		"layout.go",
		"blog/page.go",
		"blog/post/page.go",
		"dashboard/@stats/page.go",
		"api/users/route.go",
		"blog/page_test.go",
		"readme.md",
		"helpers.go",
	} {
		writeAppFile(t, dir, rel)
	}

	routes, err := NewScanner(dir, []string{".go"}).Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{
		"/api/users/route",
		"/blog/page",
		"/blog/post/page",
		"/dashboard/@stats/page",
		"/page",
	}
	if diff := cmp.Diff(want, routes); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerExtensionList(t *testing.T) {
	dir := t.TempDir()
	writeAppFile(t, dir, "page.templ")
	writeAppFile(t, dir, "blog/page.go")

	routes, err := NewScanner(dir, []string{".go", ".templ"}).Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{"/blog/page", "/page"}
	if diff := cmp.Diff(want, routes); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerIgnoresBareExtension(t *testing.T) {
	dir := t.TempDir()
	writeAppFile(t, dir, ".go")
	writeAppFile(t, dir, "page.go")

	routes, err := NewScanner(dir, []string{".go"}).Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{"/page"}
	if diff := cmp.Diff(want, routes); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
}
