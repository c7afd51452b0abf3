// Package apptree compiles a file-convention app directory into a
// declarative route tree.
//
// An app directory composes UI from conventional files: every segment
// directory may carry a layout, template, error, loading and not-found
// file; a terminal directory carries a page file; directories prefixed
// with "@" declare parallel slots that render alongside the ordinary
// children of the same segment; a default file is the fallback rendered
// for a slot with no active route match.
//
// The compiler walks one route at a time and emits a serializable tree of
// (segment, child-slots, files) nodes plus a registry of every page file
// the route touches. It never loads or renders anything: files appear in
// the tree as deferred module references for a separate runtime to
// materialize.
package apptree

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

const (
	// PageSegment tags a terminal page node in the emitted tree.
	PageSegment = "__PAGE__"

	// DefaultSegment tags an injected fallback node for a parallel slot
	// with no route match in the current compilation.
	DefaultSegment = "__DEFAULT__"

	// childrenSlot is the implicit, unnamed slot every level carries.
	childrenSlot = "children"

	// slotMarker prefixes parallel slot directory names (app/@modal).
	slotMarker = "@"
)

// Conventional file names recognized inside the app directory.
const (
	pageFile        = "page"
	routeFile       = "route"
	layoutFile      = "layout"
	templateFile    = "template"
	errorFile       = "error"
	loadingFile     = "loading"
	notFoundFile    = "not-found"
	defaultFile     = "default"
	globalErrorFile = "global-error"
)

// segmentFileKinds are the conventional files resolved for every
// non-terminal segment. Resolution runs concurrently; inspection order is
// fixed and layout comes first because the first layout observed anywhere
// in the walk becomes the route's root layout.
var segmentFileKinds = []string{layoutFile, templateFile, errorFile, loadingFile, notFoundFile}

// Import paths of the runtime modules the emitted tree refers to. The
// compiler only names them; it never imports or implements them.
const (
	RuntimeRouterModule     = "github.com/strata-dev/strata/pkg/runtime/approuter"
	RuntimeLayoutModule     = "github.com/strata-dev/strata/pkg/runtime/layouts"
	RuntimeErrorBoundary    = "github.com/strata-dev/strata/pkg/runtime/boundary"
	RuntimeRequestStorage   = "github.com/strata-dev/strata/pkg/runtime/reqstore"
	RuntimeResponseStorage  = "github.com/strata-dev/strata/pkg/runtime/resstore"
	RuntimeHandlerAdapter   = "github.com/strata-dev/strata/pkg/runtime/handler"
	RuntimeParallelDefault  = "github.com/strata-dev/strata/pkg/runtime/paralleldefault"
	RuntimeGlobalErrorStub  = "github.com/strata-dev/strata/pkg/runtime/globalerror"
)

// ModuleRef describes a deferred module load: the logical path the runtime
// should import, and the physical file backing it. Built-in runtime
// fallbacks carry an empty physical path.
type ModuleRef struct {
	LogicalPath  string `json:"logical"`
	PhysicalPath string `json:"physical,omitempty"`
}

// defaultFallbackRef points a slot with no default file at the runtime's
// built-in parallel slot fallback.
var defaultFallbackRef = ModuleRef{LogicalPath: RuntimeParallelDefault}

// FileSet maps a conventional file kind, or a metadata export key, to the
// module reference that provides it.
type FileSet map[string]ModuleRef

// fileSetOrder fixes the serialization order of conventional kinds;
// metadata keys follow in sorted order.
var fileSetOrder = []string{layoutFile, templateFile, errorFile, loadingFile, notFoundFile, pageFile, defaultFile}

// MarshalJSON serializes the set with conventional kinds first, in their
// canonical order, so emitted trees are byte-stable.
func (s FileSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string) error {
		ref, ok := s[key]
		if !ok {
			return nil
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(ref)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}
	for _, kind := range fileSetOrder {
		if err := write(kind); err != nil {
			return nil, err
		}
	}
	var rest []string
	for key := range s {
		if !isConventionalKind(key) {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if err := write(key); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func isConventionalKind(key string) bool {
	for _, kind := range fileSetOrder {
		if key == kind {
			return true
		}
	}
	return false
}

// Node is one level of the compiled route tree. Terminal nodes (pages and
// injected defaults) carry an empty slot map.
type Node struct {
	// Segment is the path component this node represents, PageSegment for
	// a terminal page, or DefaultSegment for an injected fallback. The
	// synthetic route root has an empty segment.
	Segment string

	// Children maps slot keys to nested subtrees in emission order. Every
	// non-terminal node has at least the "children" key.
	Children *SlotMap

	// Files are the conventional files and metadata exports attached to
	// this node.
	Files FileSet
}

// MarshalJSON serializes the node as the [segment, children, files] tuple
// the runtime consumes.
func (n *Node) MarshalJSON() ([]byte, error) {
	files := n.Files
	if files == nil {
		files = FileSet{}
	}
	children := n.Children
	if children == nil {
		children = NewSlotMap()
	}
	return json.Marshal([]any{n.Segment, children, files})
}

// UnmarshalJSON decodes the tuple form back into a node.
func (n *Node) UnmarshalJSON(data []byte) error {
	var tuple [3]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if err := json.Unmarshal(tuple[0], &n.Segment); err != nil {
		return err
	}
	n.Children = NewSlotMap()
	if len(tuple[1]) > 0 {
		if err := json.Unmarshal(tuple[1], n.Children); err != nil {
			return err
		}
	}
	n.Files = FileSet{}
	if len(tuple[2]) > 0 {
		if err := json.Unmarshal(tuple[2], &n.Files); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeSlotKey strips the parallel slot marker from a raw slot
// identifier. Normalization is idempotent; "children" passes through.
func NormalizeSlotKey(key string) string {
	return strings.TrimPrefix(key, slotMarker)
}

// isSlotDir reports whether a path component declares a parallel slot.
func isSlotDir(name string) bool {
	return strings.HasPrefix(name, slotMarker)
}

// continuationKind discriminates Continuation variants.
type continuationKind int

const (
	contPath continuationKind = iota
	contLiteral
	contPage
)

// Continuation describes what remains of a leaf route path below a slot at
// one nesting level: a single literal component, a multi-component path, or
// the marker that the slot terminates in a page.
type Continuation struct {
	kind     continuationKind
	segments []string
}

func literalContinuation(segment string) Continuation {
	return Continuation{kind: contLiteral, segments: []string{segment}}
}

func pathContinuation(segments []string) Continuation {
	return Continuation{kind: contPath, segments: segments}
}

func pageContinuation() Continuation {
	return Continuation{kind: contPage}
}

// IsPage reports whether the slot terminates in a page at this level.
func (c Continuation) IsPage() bool {
	return c.kind == contPage
}

// First returns the next path component, or "" for an empty continuation.
func (c Continuation) First() string {
	if len(c.segments) == 0 {
		return ""
	}
	return c.segments[0]
}

func (c Continuation) String() string {
	if c.kind == contPage {
		return PageSegment
	}
	return strings.Join(c.segments, "/")
}
