package apptree

import (
	"fmt"
	"strings"

	stErrors "github.com/strata-dev/strata/internal/errors"
)

// ValidateAppPaths checks a leaf route path list for conflicts before
// compilation. The matcher itself is deliberately permissive (last write
// wins per slot key); the validator is where two routes claiming the same
// slot at the same depth become a reportable error instead of a silent
// overwrite.
func ValidateAppPaths(appPaths []string) error {
	type claim struct {
		route string
	}

	seen := make(map[string]claim)
	var conflicts []string

	for _, route := range appPaths {
		segments := strings.Split(strings.Trim(route, "/"), "/")
		if len(segments) == 0 {
			continue
		}

		// Identify the slot this route's terminal marker lands in: the
		// parent segment path plus the slot key, mirroring the matcher's
		// is-page classification.
		marker := segments[len(segments)-1]
		if marker != pageFile && marker != routeFile {
			continue
		}
		parent := segments[:len(segments)-1]

		slot := childrenSlot
		if n := len(parent); n > 0 && isSlotDir(parent[n-1]) {
			slot = parent[n-1]
			parent = parent[:n-1]
		}

		// A duplicate key means two routes (or two files with different
		// extensions producing the same route) claim one slot.
		key := strings.Join(parent, "/") + "\x00" + slot + "\x00" + marker
		if prev, ok := seen[key]; ok {
			conflicts = append(conflicts, fmt.Sprintf("%s and %s", prev.route, route))
			continue
		}
		seen[key] = claim{route: route}
	}

	if len(conflicts) > 0 {
		return stErrors.New(stErrors.CodeAmbiguousRoutes).
			WithDetail("conflicting leaf routes: " + strings.Join(conflicts, "; "))
	}
	return nil
}
