package resolver

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DepTracker records the files one compilation depends on. Deps are files
// that were resolved; missing deps are candidate paths that were probed and
// absent. Both sets are append-only for the lifetime of a compilation.
type DepTracker struct {
	mu      sync.Mutex
	deps    map[string]struct{}
	missing map[string]struct{}
}

// NewDepTracker creates an empty tracker.
func NewDepTracker() *DepTracker {
	return &DepTracker{
		deps:    make(map[string]struct{}),
		missing: make(map[string]struct{}),
	}
}

// AddDep records a resolved file dependency.
func (t *DepTracker) AddDep(path string) {
	t.mu.Lock()
	t.deps[path] = struct{}{}
	t.mu.Unlock()
}

// AddMissing records a probed-but-absent candidate path.
func (t *DepTracker) AddMissing(path string) {
	t.mu.Lock()
	t.missing[path] = struct{}{}
	t.mu.Unlock()
}

// Deps returns the resolved dependencies in sorted order.
func (t *DepTracker) Deps() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sortedKeys(t.deps)
}

// Missing returns the missing-dependency candidates in sorted order.
func (t *DepTracker) Missing() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sortedKeys(t.missing)
}

// Affects reports whether a change to path should invalidate the
// compilation this tracker belongs to.
func (t *DepTracker) Affects(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.deps[path]; ok {
		return true
	}
	_, ok := t.missing[path]
	return ok
}

// Fingerprint returns a stable hash of both dependency sets.
func (t *DepTracker) Fingerprint() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := xxhash.New()
	for _, p := range sortedKeys(t.deps) {
		h.WriteString("+")
		h.WriteString(p)
	}
	for _, p := range sortedKeys(t.missing) {
		h.WriteString("-")
		h.WriteString(p)
	}
	return h.Sum64()
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
