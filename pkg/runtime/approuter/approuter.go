// Package approuter is the registration point for generated route modules.
// Each generated file calls RegisterJSON from an init function; the serving
// runtime reads the accumulated manifests back out through Routes or Lookup.
package approuter

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/strata-dev/strata/pkg/apptree"
)

var (
	mu     sync.RWMutex
	routes = make(map[string]*apptree.RouteManifest)
)

// RegisterJSON decodes a generated route manifest and adds it to the
// registry. It panics on malformed input: generated manifests are produced
// by the compiler, so a decode failure is a build corruption, not a
// runtime condition.
func RegisterJSON(raw string) {
	var m apptree.RouteManifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		panic(fmt.Sprintf("approuter: invalid route manifest: %v", err))
	}

	mu.Lock()
	defer mu.Unlock()
	routes[m.Route] = &m
}

// Lookup returns the manifest registered for a route path, or nil.
func Lookup(route string) *apptree.RouteManifest {
	mu.RLock()
	defer mu.RUnlock()
	return routes[route]
}

// LookupPathname returns the first manifest whose URL pathname matches.
func LookupPathname(pathname string) *apptree.RouteManifest {
	mu.RLock()
	defer mu.RUnlock()
	for _, m := range routes {
		if m.Pathname == pathname {
			return m
		}
	}
	return nil
}

// Routes returns all registered manifests sorted by route path.
func Routes() []*apptree.RouteManifest {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]*apptree.RouteManifest, 0, len(routes))
	for _, m := range routes {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}

// Reset clears the registry. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	routes = make(map[string]*apptree.RouteManifest)
}
