package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/strata-dev/strata/internal/config"
	stErrors "github.com/strata-dev/strata/internal/errors"
	"github.com/strata-dev/strata/pkg/apptree"
	"github.com/strata-dev/strata/pkg/metadata"
	"github.com/strata-dev/strata/pkg/resolver"
)

// exitFn terminates the process on a missing root layout. One-shot builds
// treat that as a hard stop for the whole tool, not a per-route error;
// tests stub this out.
var exitFn = os.Exit

// Options configures the builder.
type Options struct {
	// Target overrides the configured build target.
	Target string

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Routes is the number of compiled routes.
	Routes int

	// ManifestPath is the path of the written route manifest.
	ManifestPath string

	// Fingerprint is a stable hash of everything the build depended on.
	Fingerprint string
}

// manifestFile is the on-disk shape of the route manifest.
type manifestFile struct {
	Fingerprint string                   `json:"fingerprint"`
	Routes      []*apptree.RouteManifest `json:"routes"`
}

// Builder performs one-shot compilations of the whole app directory.
type Builder struct {
	cfg     *config.Config
	log     *zap.Logger
	options Options
}

// New creates a builder.
func New(cfg *config.Config, log *zap.Logger, options Options) *Builder {
	if options.Target == "" {
		options.Target = cfg.Build.Target
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{cfg: cfg, log: log, options: options}
}

// Build scans the app directory, compiles every route, and writes the
// generated route modules plus the route manifest.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	b.progress("Scanning app directory...")
	scanner := apptree.NewScanner(b.cfg.AppPath(), b.cfg.Extensions)
	appPaths, err := scanner.Scan()
	if err != nil {
		return nil, err
	}
	if len(appPaths) == 0 {
		return nil, stErrors.Newf(stErrors.CategoryBuild, "no routes found under %s", b.cfg.AppPath()).
			WithSuggestion("create a page file, e.g. " + filepath.Join(b.cfg.App, "page"+b.cfg.Extensions[0]))
	}
	if err := apptree.ValidateAppPaths(appPaths); err != nil {
		return nil, err
	}
	b.log.Info("scanned app directory",
		zap.String("dir", b.cfg.AppPath()),
		zap.Int("routes", len(appPaths)))

	deps := resolver.NewDepTracker()
	res := resolver.NewFSResolver(b.cfg.AppPath(), b.cfg.Extensions, resolver.WithDepTracker(deps))
	compiler := apptree.NewCompiler(apptree.Options{
		Resolver:     res,
		Metadata:     metadata.NewStaticFiles(b.cfg.AppPath(), deps),
		AppPaths:     appPaths,
		AppDir:       b.cfg.AppPath(),
		Mode:         apptree.ModeBuild,
		OutputTarget: b.options.Target,
	})

	routesDir := filepath.Join(b.cfg.OutputPath(), "routes")
	if err := os.MkdirAll(routesDir, 0755); err != nil {
		return nil, stErrors.New(stErrors.CodeBuildOutput).WithPath(routesDir).Wrap(err)
	}

	b.progress("Compiling routes...")
	manifests := make([]*apptree.RouteManifest, 0, len(appPaths))
	for _, route := range appPaths {
		compiled, err := compiler.Compile(ctx, route)
		if err != nil {
			if stErrors.HasCode(err, stErrors.CodeMissingRootLayout) {
				b.failMissingRootLayout(route, err)
				return nil, err
			}
			return nil, err
		}

		code, err := apptree.NewGenerator(compiled, "routes").Generate()
		if err != nil {
			return nil, err
		}
		out := filepath.Join(routesDir, routeFileName(route))
		if err := os.WriteFile(out, code, 0644); err != nil {
			return nil, stErrors.New(stErrors.CodeBuildOutput).WithPath(out).Wrap(err)
		}

		manifests = append(manifests, compiled.Manifest())
		b.log.Debug("compiled route",
			zap.String("route", route),
			zap.String("pathname", compiled.Pathname))
	}

	b.progress("Writing manifest...")
	fingerprint := fmt.Sprintf("%016x", deps.Fingerprint())
	manifestPath := filepath.Join(b.cfg.OutputPath(), "manifest.json")
	if err := b.writeManifest(manifestPath, manifestFile{
		Fingerprint: fingerprint,
		Routes:      manifests,
	}); err != nil {
		return nil, err
	}

	if b.options.Target == "static-export" && b.cfg.Deploy.Bucket != "" {
		b.progress("Uploading static export...")
		if err := b.deploy(ctx); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Duration:     time.Since(start),
		Routes:       len(manifests),
		ManifestPath: manifestPath,
		Fingerprint:  fingerprint,
	}
	b.log.Info("build finished",
		zap.Int("routes", result.Routes),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// failMissingRootLayout prints the diagnostic and terminates the process.
// This bypasses normal error propagation on purpose: a route without a
// root layout means the whole app is unservable.
func (b *Builder) failMissingRootLayout(route string, err error) {
	if se, ok := err.(*stErrors.StrataError); ok {
		fmt.Fprint(os.Stderr, se.WithPath(route).Format())
	} else {
		fmt.Fprintf(os.Stderr, "error: route %s has no root layout\n", route)
	}
	exitFn(1)
}

func (b *Builder) writeManifest(path string, m manifestFile) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return stErrors.New(stErrors.CodeBuildOutput).WithPath(path).Wrap(err)
	}
	return nil
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// routeFileName derives the generated module's file name from a route:
// "/blog/@sidebar/page" becomes "blog_sidebar_page_gen.go".
func routeFileName(route string) string {
	name := strings.Trim(route, "/")
	name = strings.NewReplacer("/", "_", "@", "", "-", "_", ".", "_").Replace(name)
	if name == "" {
		name = "root"
	}
	return name + "_gen.go"
}
