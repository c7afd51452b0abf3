package apptree

import (
	"context"
	"errors"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/strata-dev/strata/pkg/resolver"
)

// MetadataSource supplies static metadata export entries (icons, robots,
// opengraph images) for one segment directory. Implementations swallow
// their own per-kind misses; a returned error is fatal unless it wraps
// resolver.ErrNotFound.
type MetadataSource interface {
	Collect(ctx context.Context, segmentPath string, isRoot bool) (FileSet, error)
}

// treeBuilder carries the state shared across one compilation's recursive
// walk. It is created fresh per compiled route and discarded afterwards;
// root layout and global error are first-write-wins, the page registry is
// append-only.
type treeBuilder struct {
	res      resolver.Resolver
	meta     MetadataSource
	appPaths []string

	pageFiles   []string
	rootLayout  string
	globalError string
}

// build constructs the subtree for one nesting level and returns the
// ordered mapping of slot key to node. Only the top-level call passes
// isRoot: the synthetic root level always has a single implicit children
// slot with an empty continuation, so the true route top ends up one level
// below it.
func (b *treeBuilder) build(ctx context.Context, segments []string, isRoot bool) (*SlotMap, error) {
	segmentPath := joinSegments(segments)

	var slots *slotList
	if isRoot {
		slots = newSlotList()
		slots.set(childrenSlot, pathContinuation(nil))
	} else {
		slots = matchParallelRoutes(b.appPaths, segmentPath)
	}

	meta, err := b.collectMetadata(ctx, segmentPath, isRoot)
	if err != nil {
		return nil, err
	}

	subtree := NewSlotMap()
	for _, entry := range slots.entries {
		if entry.cont.IsPage() {
			node, err := b.buildPageNode(ctx, segmentPath, entry.key, meta)
			if err != nil {
				return nil, err
			}
			subtree.Set(NormalizeSlotKey(entry.key), node)
			continue
		}

		subSegments := append([]string(nil), segments...)
		if entry.key != childrenSlot {
			subSegments = append(subSegments, entry.key)
		}
		if first := entry.cont.First(); first != "" && first != pageFile {
			subSegments = append(subSegments, first)
		}

		// The child subtree must be complete before this level inspects
		// layout state: a layout deeper in the children slot would
		// otherwise race the one resolved here for root-layout tracking.
		child, err := b.build(ctx, subSegments, false)
		if err != nil {
			return nil, err
		}

		subSegmentPath := joinSegments(subSegments)
		files, err := b.resolveSegmentFiles(ctx, subSegmentPath)
		if err != nil {
			return nil, err
		}

		if layout, ok := files[layoutFile]; ok && b.rootLayout == "" {
			b.rootLayout = layout.PhysicalPath
			if err := b.resolveGlobalError(ctx, subSegmentPath); err != nil {
				return nil, err
			}
		}

		// Metadata exports attach only where a conventional file exists,
		// so empty placeholder segments don't advertise metadata.
		if len(files) > 0 {
			for k, v := range meta {
				files[k] = v
			}
		}

		subtree.Set(NormalizeSlotKey(entry.key), &Node{
			Segment:  entry.cont.First(),
			Children: child,
			Files:    files,
		})
	}

	// Fallback injection runs after every declared slot has fully
	// recursed: it must see the complete set of satisfied keys.
	if err := b.injectDefaults(ctx, segmentPath, subtree); err != nil {
		return nil, err
	}

	return subtree, nil
}

// buildPageNode emits the terminal node for a slot whose continuation is
// the page marker. The page file may legitimately be absent (mid-edit in
// dev); the node is still emitted and only resolved pages enter the
// registry.
func (b *treeBuilder) buildPageNode(ctx context.Context, segmentPath, slotKey string, meta FileSet) (*Node, error) {
	logical := logicalPath(segmentPath)
	if slotKey != childrenSlot {
		logical = path.Join(logical, slotKey)
	}
	logical = path.Join(logical, pageFile)

	files := make(FileSet)
	physical, err := b.res.Resolve(ctx, logical)
	switch {
	case errors.Is(err, resolver.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		b.pageFiles = append(b.pageFiles, physical)
		files[pageFile] = ModuleRef{LogicalPath: logical, PhysicalPath: physical}
	}

	for k, v := range meta {
		files[k] = v
	}

	return &Node{Segment: PageSegment, Children: NewSlotMap(), Files: files}, nil
}

// resolveSegmentFiles resolves the conventional files of one segment
// directory. The lookups are independent, so they run concurrently; only
// which kinds resolved matters.
func (b *treeBuilder) resolveSegmentFiles(ctx context.Context, segmentPath string) (FileSet, error) {
	refs := make([]*ModuleRef, len(segmentFileKinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range segmentFileKinds {
		i, kind := i, kind
		logical := path.Join(logicalPath(segmentPath), kind)
		g.Go(func() error {
			physical, err := b.res.Resolve(gctx, logical)
			if errors.Is(err, resolver.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			refs[i] = &ModuleRef{LogicalPath: logical, PhysicalPath: physical}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make(FileSet)
	for i, kind := range segmentFileKinds {
		if refs[i] != nil {
			files[kind] = *refs[i]
		}
	}
	return files, nil
}

// resolveGlobalError locates the global-error file next to the root
// layout. Absence is recorded as-is; the orchestrator substitutes the
// runtime's generic boundary.
func (b *treeBuilder) resolveGlobalError(ctx context.Context, segmentPath string) error {
	logical := path.Join(logicalPath(segmentPath), globalErrorFile)
	physical, err := b.res.Resolve(ctx, logical)
	if errors.Is(err, resolver.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	b.globalError = physical
	return nil
}

// collectMetadata gathers metadata exports for the current segment. A
// not-found from the source is swallowed; anything else is fatal.
func (b *treeBuilder) collectMetadata(ctx context.Context, segmentPath string, isRoot bool) (FileSet, error) {
	if b.meta == nil {
		return nil, nil
	}
	meta, err := b.meta.Collect(ctx, logicalPath(segmentPath), isRoot)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return meta, nil
}

// injectDefaults appends a fallback node for every physically present slot
// not already satisfied at this level. Slots present on disk but absent
// from the leaf route paths still render something: the slot's default
// file if it has one, the runtime's generic fallback otherwise.
func (b *treeBuilder) injectDefaults(ctx context.Context, segmentPath string, subtree *SlotMap) error {
	adjacent, err := b.adjacentSlotNames(ctx, segmentPath)
	if err != nil {
		return err
	}

	for _, raw := range adjacent {
		key := NormalizeSlotKey(raw)
		if subtree.Has(key) {
			continue
		}

		logical := logicalPath(segmentPath)
		if raw != childrenSlot {
			logical = path.Join(logical, raw)
		}
		logical = path.Join(logical, defaultFile)

		ref := defaultFallbackRef
		physical, err := b.res.Resolve(ctx, logical)
		switch {
		case errors.Is(err, resolver.ErrNotFound):
		case err != nil:
			return err
		default:
			ref = ModuleRef{LogicalPath: logical, PhysicalPath: physical}
		}

		subtree.Set(key, &Node{
			Segment:  DefaultSegment,
			Children: NewSlotMap(),
			Files:    FileSet{defaultFile: ref},
		})
	}
	return nil
}

// joinSegments renders the accumulated components as a slash-prefixed
// segment path; the root is the empty string.
func joinSegments(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	return "/" + strings.Join(segments, "/")
}

// logicalPath converts a segment path to the resolver's app-relative
// namespace.
func logicalPath(segmentPath string) string {
	return strings.TrimPrefix(segmentPath, "/")
}
