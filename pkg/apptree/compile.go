package apptree

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	stErrors "github.com/strata-dev/strata/internal/errors"
	"github.com/strata-dev/strata/pkg/resolver"
)

// Mode selects the compiler's missing-root-layout policy.
type Mode int

const (
	// ModeBuild is the one-shot mode: a route with no root layout is a
	// hard failure.
	ModeBuild Mode = iota

	// ModeDev is the interactive mode: a missing root layout is handed to
	// the auto-creation hook and the compilation retried once.
	ModeDev
)

func (m Mode) String() string {
	if m == ModeDev {
		return "dev"
	}
	return "build"
}

// EnsureRootLayoutFunc creates a root layout for a route that has none.
// It reports whether a layout was created and the path it wrote (or
// attempted to write).
type EnsureRootLayoutFunc func(ctx context.Context, appDir, route string) (created bool, attempted string, err error)

// CacheInvalidator is implemented by resolvers whose cached lookups must
// be dropped after out-of-band file creation.
type CacheInvalidator interface {
	Invalidate()
}

var (
	compileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strata",
		Subsystem: "compiler",
		Name:      "compilations_total",
		Help:      "Route compilations by mode and status.",
	}, []string{"mode", "status"})

	compileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "strata",
		Subsystem: "compiler",
		Name:      "compilation_duration_seconds",
		Help:      "Route compilation latency.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Options configures a Compiler.
type Options struct {
	// Resolver resolves logical app paths. Required.
	Resolver resolver.Resolver

	// Metadata supplies static metadata exports. Optional.
	Metadata MetadataSource

	// AppPaths is the ordered list of every leaf route path in the app.
	AppPaths []string

	// AppDir is the physical app directory, used by the root-layout
	// auto-creation hook and error diagnostics.
	AppDir string

	// Mode selects one-shot or interactive behavior.
	Mode Mode

	// OutputTarget is an optional build-target mode string recorded in
	// emitted route metadata (e.g. "static-export").
	OutputTarget string

	// EnsureRootLayout is the interactive-mode auto-creation hook.
	EnsureRootLayout EnsureRootLayoutFunc
}

// Compiler compiles individual routes into declarative trees. A Compiler
// is safe for sequential reuse across routes; every compilation builds its
// state fresh.
type Compiler struct {
	opts Options
}

// NewCompiler creates a compiler for one app.
func NewCompiler(opts Options) *Compiler {
	return &Compiler{opts: opts}
}

// CompiledRoute is the transient output of one compilation.
type CompiledRoute struct {
	// Route is the leaf route path this compilation was invoked for.
	Route string

	// Pathname is the normalized URL path (slots and markers stripped).
	Pathname string

	// Tree is the compiled route tree. Nil in route-handler mode.
	Tree *Node

	// PageFiles lists every resolved page file in discovery order.
	PageFiles []string

	// RootLayout is the physical path of the route's root layout.
	RootLayout string

	// GlobalError is the physical path of the global-error file sitting
	// next to the root layout, or "" when none exists.
	GlobalError string

	// Handler references the handler source file in route-handler mode.
	Handler *ModuleRef

	// OutputTarget echoes the build-target mode for emitted metadata.
	OutputTarget string
}

// IsHandlerRoute reports whether a leaf route path names a route handler
// rather than a page.
func IsHandlerRoute(route string) bool {
	return route == "/"+routeFile || strings.HasSuffix(route, "/"+routeFile)
}

// Compile compiles one route. Page routes get a full tree walk; handler
// routes resolve their single source file and skip the tree entirely.
func (c *Compiler) Compile(ctx context.Context, route string) (compiled *CompiledRoute, err error) {
	start := time.Now()
	tracer := otel.Tracer("strata/apptree")
	ctx, span := tracer.Start(ctx, "apptree.compile",
		trace.WithAttributes(
			attribute.String("strata.route", route),
			attribute.String("strata.mode", c.opts.Mode.String()),
		))
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		compileTotal.WithLabelValues(c.opts.Mode.String(), status).Inc()
		compileDuration.Observe(time.Since(start).Seconds())
		span.End()
	}()

	if IsHandlerRoute(route) {
		return c.compileHandlerRoute(ctx, route)
	}
	return c.compilePageRoute(ctx, route)
}

// compileHandlerRoute emits the lightweight wrapper description for an
// API-style route. The handler file was selected by the scanner, so its
// absence is an invariant violation, not a soft miss.
func (c *Compiler) compileHandlerRoute(ctx context.Context, route string) (*CompiledRoute, error) {
	logical := strings.TrimPrefix(route, "/")
	physical, err := c.opts.Resolver.Resolve(ctx, logical)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			return nil, stErrors.New(stErrors.CodeMissingHandler).
				WithDetail("route " + route + " names handler file " + logical + ", but it does not resolve")
		}
		return nil, err
	}

	return &CompiledRoute{
		Route:        route,
		Pathname:     NormalizePathname(route),
		Handler:      &ModuleRef{LogicalPath: logical, PhysicalPath: physical},
		OutputTarget: c.opts.OutputTarget,
	}, nil
}

// routeAppPaths selects the leaf paths participating in one page's
// compilation: every page path serving the same URL pathname. Parallel
// slot siblings normalize to the same pathname and join the walk;
// unrelated branches would fight over the children slot and are left out.
func (c *Compiler) routeAppPaths(route string) []string {
	pathname := NormalizePathname(route)
	var matched []string
	for _, p := range c.opts.AppPaths {
		if !IsHandlerRoute(p) && NormalizePathname(p) == pathname {
			matched = append(matched, p)
		}
	}
	if len(matched) == 0 {
		matched = []string{route}
	}
	return matched
}

// compilePageRoute runs the tree builder from the synthetic root and
// unwraps its single children slot, which is the true top of the route.
func (c *Compiler) compilePageRoute(ctx context.Context, route string) (*CompiledRoute, error) {
	builder := &treeBuilder{
		res:      c.opts.Resolver,
		meta:     c.opts.Metadata,
		appPaths: c.routeAppPaths(route),
	}

	subtree, err := builder.build(ctx, nil, true)
	if err != nil {
		return nil, err
	}

	if builder.rootLayout == "" {
		subtree, builder, err = c.recoverRootLayout(ctx, route)
		if err != nil {
			return nil, err
		}
	}

	root, ok := subtree.Get(childrenSlot)
	if !ok {
		// The synthetic root always seeds a children slot; reaching here
		// means the builder itself is broken.
		return nil, stErrors.Newf(stErrors.CategoryCompile, "route %s: compiled tree has no children slot", route)
	}

	return &CompiledRoute{
		Route:        route,
		Pathname:     NormalizePathname(route),
		Tree:         root,
		PageFiles:    builder.pageFiles,
		RootLayout:   builder.rootLayout,
		GlobalError:  builder.globalError,
		OutputTarget: c.opts.OutputTarget,
	}, nil
}

// recoverRootLayout applies the missing-root-layout policy. One-shot mode
// fails outright; interactive mode asks the auto-creation hook for a
// layout and rebuilds once.
func (c *Compiler) recoverRootLayout(ctx context.Context, route string) (*SlotMap, *treeBuilder, error) {
	missing := stErrors.New(stErrors.CodeMissingRootLayout).
		WithDetail("route " + route + " has no layout anywhere above it").
		WithSuggestion("create a root layout file in " + path.Join(c.opts.AppDir, layoutFile+".go"))

	if c.opts.Mode != ModeDev || c.opts.EnsureRootLayout == nil {
		return nil, nil, missing
	}

	created, attempted, err := c.opts.EnsureRootLayout(ctx, c.opts.AppDir, route)
	if err != nil {
		return nil, nil, err
	}
	if !created {
		if attempted != "" {
			missing = missing.WithDetail("auto-creation attempted " + attempted + " and produced no layout")
		}
		return nil, nil, missing
	}

	if inv, ok := c.opts.Resolver.(CacheInvalidator); ok {
		inv.Invalidate()
	}

	builder := &treeBuilder{
		res:      c.opts.Resolver,
		meta:     c.opts.Metadata,
		appPaths: c.routeAppPaths(route),
	}
	subtree, err := builder.build(ctx, nil, true)
	if err != nil {
		return nil, nil, err
	}
	if builder.rootLayout == "" {
		return nil, nil, missing
	}
	return subtree, builder, nil
}
