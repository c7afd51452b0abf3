// Package resolver maps logical app-directory paths to physical files.
//
// A logical path is relative to the app directory root and carries no
// extension ("dashboard/layout", "blog/@sidebar/page"). The resolver probes
// the configured extension list and reports the first match. Lookups are
// recorded in a DepTracker so callers can rebuild when a dependency changes,
// or when a previously missing file appears.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrNotFound reports that a logical path has no backing file or directory.
// It is the only non-fatal resolver failure: callers are expected to check
// for it with errors.Is and treat everything else as fatal.
var ErrNotFound = errors.New("not found")

// Resolver resolves logical app-directory paths.
type Resolver interface {
	// Resolve maps a logical path to the physical file backing it.
	// Returns an error wrapping ErrNotFound when no candidate exists.
	Resolve(ctx context.Context, logical string) (string, error)

	// ResolveDir maps a logical path straight onto the filesystem layout
	// and reports the physical directory, bypassing extension probing.
	// Slot directories are looked up this way since they are not modules.
	ResolveDir(ctx context.Context, logical string) (string, error)
}

// cache metrics are shared by all resolvers in the process.
var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "strata",
		Subsystem: "resolver",
		Name:      "cache_hits_total",
		Help:      "Number of resolutions served from the LRU cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "strata",
		Subsystem: "resolver",
		Name:      "cache_misses_total",
		Help:      "Number of resolutions that probed the filesystem.",
	})
)

// defaultCacheSize bounds the per-resolver LRU cache.
const defaultCacheSize = 2048

type cacheEntry struct {
	physical string
	found    bool
}

// FSResolver resolves logical paths against a physical app directory.
type FSResolver struct {
	root  string
	exts  []string
	deps  *DepTracker
	cache *lru.Cache[string, cacheEntry]
}

// Option configures an FSResolver.
type Option func(*FSResolver)

// WithDepTracker attaches a dependency tracker. Without one, lookups are
// still resolved but no dependency bookkeeping happens.
func WithDepTracker(t *DepTracker) Option {
	return func(r *FSResolver) {
		r.deps = t
	}
}

// WithCacheSize overrides the LRU cache size.
func WithCacheSize(n int) Option {
	return func(r *FSResolver) {
		cache, err := lru.New[string, cacheEntry](n)
		if err == nil {
			r.cache = cache
		}
	}
}

// NewFSResolver creates a resolver rooted at the physical app directory.
// exts is the ordered list of recognized file extensions (e.g. ".go").
func NewFSResolver(root string, exts []string, opts ...Option) *FSResolver {
	cache, _ := lru.New[string, cacheEntry](defaultCacheSize)
	r := &FSResolver{
		root:  root,
		exts:  exts,
		cache: cache,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve implements Resolver.
func (r *FSResolver) Resolve(ctx context.Context, logical string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if entry, ok := r.cache.Get(logical); ok {
		cacheHits.Inc()
		r.record(logical, entry)
		if !entry.found {
			return "", fmt.Errorf("%s: %w", logical, ErrNotFound)
		}
		return entry.physical, nil
	}
	cacheMisses.Inc()

	for _, ext := range r.exts {
		candidate := filepath.Join(r.root, filepath.FromSlash(logical)+ext)
		info, err := os.Stat(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("resolve %s: %w", logical, err)
		}
		if info.IsDir() {
			continue
		}
		entry := cacheEntry{physical: candidate, found: true}
		r.cache.Add(logical, entry)
		r.record(logical, entry)
		return candidate, nil
	}

	entry := cacheEntry{}
	r.cache.Add(logical, entry)
	r.record(logical, entry)
	return "", fmt.Errorf("%s: %w", logical, ErrNotFound)
}

// ResolveDir implements Resolver.
func (r *FSResolver) ResolveDir(ctx context.Context, logical string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	candidate := filepath.Join(r.root, filepath.FromSlash(logical))
	info, err := os.Stat(candidate)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", logical, ErrNotFound)
		}
		return "", fmt.Errorf("resolve dir %s: %w", logical, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: %w", logical, ErrNotFound)
	}
	return candidate, nil
}

// ReadDir lists the immediate entries of a resolved logical directory.
func (r *FSResolver) ReadDir(ctx context.Context, logical string) ([]fs.DirEntry, error) {
	dir, err := r.ResolveDir(ctx, logical)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", logical, err)
	}
	return entries, nil
}

// Invalidate drops all cached resolutions. Used after files are created
// out-of-band (e.g. root layout auto-creation) so a retry sees them.
func (r *FSResolver) Invalidate() {
	r.cache.Purge()
}

// Root returns the physical app directory root.
func (r *FSResolver) Root() string {
	return r.root
}

// record reflects a resolution into the dependency tracker. Successful
// lookups become build dependencies; misses record every probed candidate
// so that creating the file later triggers a rebuild.
func (r *FSResolver) record(logical string, entry cacheEntry) {
	if r.deps == nil {
		return
	}
	if entry.found {
		r.deps.AddDep(entry.physical)
		return
	}
	for _, ext := range r.exts {
		r.deps.AddMissing(filepath.Join(r.root, filepath.FromSlash(logical)+ext))
	}
}
