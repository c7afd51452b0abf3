package apptree

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/strata-dev/strata/pkg/resolver"
)

// adjacentSlotNames lists the slot identifiers physically present under a
// segment directory: the implicit children slot plus every @-prefixed
// subdirectory. A segment with no directory has no adjacent slots.
//
// This feeds fallback injection: a slot directory can exist on disk
// without any leaf route path reaching it in the current compilation, and
// it still has to render something.
func (b *treeBuilder) adjacentSlotNames(ctx context.Context, segmentPath string) ([]string, error) {
	dir, err := b.res.ResolveDir(ctx, logicalPath(segmentPath))
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	slots := []string{childrenSlot}
	for _, entry := range entries {
		if entry.IsDir() && isSlotDir(entry.Name()) {
			slots = append(slots, entry.Name())
		}
	}
	return slots, nil
}
