package apptree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	stErrors "github.com/strata-dev/strata/internal/errors"
	"github.com/strata-dev/strata/pkg/resolver"
)

// writeApp lays out an app directory fixture from relative paths. Paths
// ending in "/" become bare directories.
func writeApp(t *testing.T, rels ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, rel := range rels {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(p, 0755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("package app\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestCompiler(t *testing.T, dir string, appPaths []string, mode Mode, ensure EnsureRootLayoutFunc) *Compiler {
	t.Helper()
	return NewCompiler(Options{
		Resolver:         resolver.NewFSResolver(dir, []string{".go"}),
		AppPaths:         appPaths,
		AppDir:           dir,
		Mode:             mode,
		EnsureRootLayout: ensure,
	})
}

func TestCompileNestedLayouts(t *testing.T) {
	dir := writeApp(t,
		"layout.go",
		"page.go",
		"blog/layout.go",
		"blog/page.go",
	)
	appPaths := []string{"/blog/page", "/page"}

	compiled, err := newTestCompiler(t, dir, appPaths, ModeBuild, nil).Compile(context.Background(), "/blog/page")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if compiled.Pathname != "/blog" {
		t.Errorf("Pathname = %q, want /blog", compiled.Pathname)
	}

	wantPages := []string{filepath.Join(dir, "blog", "page.go")}
	if diff := cmp.Diff(wantPages, compiled.PageFiles); diff != "" {
		t.Errorf("page registry mismatch (-want +got):\n%s", diff)
	}

	// The route top carries the app-root layout; the blog node nests below
	// it in the children slot.
	top := compiled.Tree
	if top.Segment != "" {
		t.Errorf("top segment = %q, want empty", top.Segment)
	}
	if ref, ok := top.Files["layout"]; !ok || ref.PhysicalPath != filepath.Join(dir, "layout.go") {
		t.Errorf("top layout = %+v", top.Files)
	}

	blog, ok := top.Children.Get("children")
	if !ok {
		t.Fatalf("missing children slot, keys = %v", top.Children.Keys())
	}
	if blog.Segment != "blog" {
		t.Errorf("blog segment = %q", blog.Segment)
	}
	if ref, ok := blog.Files["layout"]; !ok || ref.PhysicalPath != filepath.Join(dir, "blog", "layout.go") {
		t.Errorf("blog layout = %+v", blog.Files)
	}

	page, ok := blog.Children.Get("children")
	if !ok || page.Segment != PageSegment {
		t.Fatalf("blog children = %+v, %v", page, ok)
	}
	if ref := page.Files["page"]; ref.PhysicalPath != filepath.Join(dir, "blog", "page.go") {
		t.Errorf("page file = %+v", ref)
	}
}

func TestCompileUnrelatedBranchesExcluded(t *testing.T) {
	dir := writeApp(t,
		"layout.go",
		"page.go",
		"blog/page.go",
	)
	appPaths := []string{"/blog/page", "/page"}

	compiled, err := newTestCompiler(t, dir, appPaths, ModeBuild, nil).Compile(context.Background(), "/page")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	// Only the root page participates; the blog branch belongs to a
	// different pathname and must not appear in this tree or registry.
	wantPages := []string{filepath.Join(dir, "page.go")}
	if diff := cmp.Diff(wantPages, compiled.PageFiles); diff != "" {
		t.Errorf("page registry mismatch (-want +got):\n%s", diff)
	}

	page, ok := compiled.Tree.Children.Get("children")
	if !ok || page.Segment != PageSegment {
		t.Fatalf("children = %+v, %v", page, ok)
	}
}

func TestCompileParallelSlots(t *testing.T) {
	dir := writeApp(t,
		"layout.go",
		"dashboard/page.go",
		"dashboard/@stats/page.go",
		"dashboard/@activity/default.go",
	)
	// Scanner order: the slot page sorts before the plain page.
	appPaths := []string{"/dashboard/@stats/page", "/dashboard/page"}

	compiled, err := newTestCompiler(t, dir, appPaths, ModeBuild, nil).Compile(context.Background(), "/dashboard/page")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	dash, ok := compiled.Tree.Children.Get("children")
	if !ok || dash.Segment != "dashboard" {
		t.Fatalf("dashboard node = %+v, %v", dash, ok)
	}

	// Matched slots in first-seen order, then the injected fallback.
	wantKeys := []string{"stats", "children", "activity"}
	if diff := cmp.Diff(wantKeys, dash.Children.Keys()); diff != "" {
		t.Errorf("slot keys mismatch (-want +got):\n%s", diff)
	}

	stats, _ := dash.Children.Get("stats")
	if stats.Segment != PageSegment {
		t.Errorf("stats segment = %q", stats.Segment)
	}
	if ref := stats.Files["page"]; ref.PhysicalPath != filepath.Join(dir, "dashboard", "@stats", "page.go") {
		t.Errorf("stats page = %+v", ref)
	}

	activity, _ := dash.Children.Get("activity")
	if activity.Segment != DefaultSegment {
		t.Errorf("activity segment = %q", activity.Segment)
	}
	if ref := activity.Files["default"]; ref.PhysicalPath != filepath.Join(dir, "dashboard", "@activity", "default.go") {
		t.Errorf("activity default = %+v", ref)
	}

	// Page registry follows leaf path order: slot page first.
	wantPages := []string{
		filepath.Join(dir, "dashboard", "@stats", "page.go"),
		filepath.Join(dir, "dashboard", "page.go"),
	}
	if diff := cmp.Diff(wantPages, compiled.PageFiles); diff != "" {
		t.Errorf("page registry mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileSlotWithoutDefaultFileGetsRuntimeFallback(t *testing.T) {
	dir := writeApp(t,
		"layout.go",
		"shop/page.go",
		"shop/@promo/",
	)
	appPaths := []string{"/shop/page"}

	compiled, err := newTestCompiler(t, dir, appPaths, ModeBuild, nil).Compile(context.Background(), "/shop/page")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	shop, _ := compiled.Tree.Children.Get("children")
	promo, ok := shop.Children.Get("promo")
	if !ok {
		t.Fatalf("missing promo fallback, keys = %v", shop.Children.Keys())
	}
	if promo.Segment != DefaultSegment {
		t.Errorf("promo segment = %q", promo.Segment)
	}
	ref := promo.Files["default"]
	if ref.LogicalPath != RuntimeParallelDefault || ref.PhysicalPath != "" {
		t.Errorf("promo default = %+v, want runtime fallback", ref)
	}
}

func TestCompileRootLayoutAndGlobalError(t *testing.T) {
	dir := writeApp(t,
		"layout.go",
		"global-error.go",
		"page.go",
	)
	appPaths := []string{"/page"}

	compiled, err := newTestCompiler(t, dir, appPaths, ModeBuild, nil).Compile(context.Background(), "/page")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if compiled.RootLayout != filepath.Join(dir, "layout.go") {
		t.Errorf("RootLayout = %q", compiled.RootLayout)
	}
	if compiled.GlobalError != filepath.Join(dir, "global-error.go") {
		t.Errorf("GlobalError = %q", compiled.GlobalError)
	}
}

func TestCompileRootLayoutIsLayoutNearestThePage(t *testing.T) {
	dir := writeApp(t,
		"layout.go",
		"blog/layout.go",
		"blog/page.go",
	)
	appPaths := []string{"/blog/page"}

	compiled, err := newTestCompiler(t, dir, appPaths, ModeBuild, nil).Compile(context.Background(), "/blog/page")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	// Subtrees complete before their enclosing level inspects layout
	// state, so the layout closest to the page claims root-layout
	// tracking; the outer layout stays an ordinary nested layout.
	if compiled.RootLayout != filepath.Join(dir, "blog", "layout.go") {
		t.Errorf("RootLayout = %q", compiled.RootLayout)
	}
}

func TestCompileMissingRootLayoutOneShot(t *testing.T) {
	dir := writeApp(t, "page.go")
	appPaths := []string{"/page"}

	_, err := newTestCompiler(t, dir, appPaths, ModeBuild, nil).Compile(context.Background(), "/page")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !stErrors.HasCode(err, stErrors.CodeMissingRootLayout) {
		t.Errorf("error = %v, want missing-root-layout code", err)
	}
}

func TestCompileMissingRootLayoutInteractiveAutoCreates(t *testing.T) {
	dir := writeApp(t, "page.go")
	appPaths := []string{"/page"}

	var hookCalls int
	ensure := func(ctx context.Context, appDir, route string) (bool, string, error) {
		hookCalls++
		target := filepath.Join(appDir, "layout.go")
		if err := os.WriteFile(target, []byte("package app\n"), 0644); err != nil {
			return false, target, err
		}
		return true, target, nil
	}

	compiled, err := newTestCompiler(t, dir, appPaths, ModeDev, ensure).Compile(context.Background(), "/page")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if hookCalls != 1 {
		t.Errorf("hook calls = %d, want 1", hookCalls)
	}
	if compiled.RootLayout != filepath.Join(dir, "layout.go") {
		t.Errorf("RootLayout = %q", compiled.RootLayout)
	}
}

func TestCompileMissingRootLayoutInteractiveHookDeclines(t *testing.T) {
	dir := writeApp(t, "page.go")
	appPaths := []string{"/page"}

	ensure := func(ctx context.Context, appDir, route string) (bool, string, error) {
		return false, filepath.Join(appDir, "layout.go"), nil
	}

	_, err := newTestCompiler(t, dir, appPaths, ModeDev, ensure).Compile(context.Background(), "/page")
	if !stErrors.HasCode(err, stErrors.CodeMissingRootLayout) {
		t.Errorf("error = %v, want missing-root-layout code", err)
	}
}

func TestCompileHandlerRoute(t *testing.T) {
	dir := writeApp(t, "api/users/route.go")
	appPaths := []string{"/api/users/route"}

	compiled, err := newTestCompiler(t, dir, appPaths, ModeBuild, nil).Compile(context.Background(), "/api/users/route")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if compiled.Tree != nil {
		t.Error("handler route built a tree")
	}
	if compiled.Pathname != "/api/users" {
		t.Errorf("Pathname = %q", compiled.Pathname)
	}
	if compiled.Handler == nil || compiled.Handler.PhysicalPath != filepath.Join(dir, "api", "users", "route.go") {
		t.Errorf("Handler = %+v", compiled.Handler)
	}
}

func TestCompileHandlerRouteMissingFile(t *testing.T) {
	dir := writeApp(t, "page.go")

	_, err := newTestCompiler(t, dir, []string{"/api/users/route"}, ModeBuild, nil).Compile(context.Background(), "/api/users/route")
	if !stErrors.HasCode(err, stErrors.CodeMissingHandler) {
		t.Errorf("error = %v, want missing-handler code", err)
	}
}

// failingResolver returns a fatal error for one logical path and delegates
// everything else.
type failingResolver struct {
	resolver.Resolver
	failOn string
}

func (r *failingResolver) Resolve(ctx context.Context, logical string) (string, error) {
	if logical == r.failOn {
		return "", fmt.Errorf("resolve %s: permission denied", logical)
	}
	return r.Resolver.Resolve(ctx, logical)
}

func TestCompileFatalResolverErrorAborts(t *testing.T) {
	dir := writeApp(t,
		"layout.go",
		"blog/page.go",
	)
	appPaths := []string{"/blog/page"}

	c := NewCompiler(Options{
		Resolver: &failingResolver{
			Resolver: resolver.NewFSResolver(dir, []string{".go"}),
			failOn:   "blog/page",
		},
		AppPaths: appPaths,
		AppDir:   dir,
		Mode:     ModeBuild,
	})

	_, err := c.Compile(context.Background(), "/blog/page")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, resolver.ErrNotFound) {
		t.Errorf("fatal error misclassified as not-found: %v", err)
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("error = %v, want propagated resolver failure", err)
	}
}

// staticMetadata is a canned MetadataSource.
type staticMetadata struct {
	entries FileSet
}

func (s *staticMetadata) Collect(ctx context.Context, segmentPath string, isRoot bool) (FileSet, error) {
	if segmentPath != "" {
		return nil, nil
	}
	return s.entries, nil
}

func TestCompileMetadataAttachesWithConventionalFiles(t *testing.T) {
	dir := writeApp(t,
		"layout.go",
		"page.go",
	)
	appPaths := []string{"/page"}

	c := NewCompiler(Options{
		Resolver: resolver.NewFSResolver(dir, []string{".go"}),
		Metadata: &staticMetadata{entries: FileSet{
			"metadata:icon": {LogicalPath: "icon", PhysicalPath: filepath.Join(dir, "icon.svg")},
		}},
		AppPaths: appPaths,
		AppDir:   dir,
		Mode:     ModeBuild,
	})

	compiled, err := c.Compile(context.Background(), "/page")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if _, ok := compiled.Tree.Files["metadata:icon"]; !ok {
		t.Errorf("metadata export missing from root files: %+v", compiled.Tree.Files)
	}
}
