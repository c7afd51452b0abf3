package apptree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// RuntimeRefs names the runtime modules a compiled route hands control to.
// The compiler fills them with fixed import paths; it never touches the
// packages themselves.
type RuntimeRefs struct {
	Router          string `json:"router,omitempty"`
	Layouts         string `json:"layouts,omitempty"`
	ErrorBoundary   string `json:"errorBoundary,omitempty"`
	GlobalError     string `json:"globalError,omitempty"`
	RequestStorage  string `json:"requestStorage,omitempty"`
	ResponseStorage string `json:"responseStorage,omitempty"`
	HandlerAdapter  string `json:"handlerAdapter,omitempty"`
}

// RouteManifest is the serializable form of a compiled route: the tree (or
// handler reference), the page registry, and the runtime modules the
// emitted module wires together.
type RouteManifest struct {
	Route        string      `json:"route"`
	Pathname     string      `json:"pathname"`
	Kind         string      `json:"kind"`
	Tree         *Node       `json:"tree,omitempty"`
	PageFiles    []string    `json:"pageFiles,omitempty"`
	RootLayout   string      `json:"rootLayout,omitempty"`
	GlobalError  string      `json:"globalError,omitempty"`
	Handler      *ModuleRef  `json:"handler,omitempty"`
	OutputTarget string      `json:"outputTarget,omitempty"`
	Runtime      RuntimeRefs `json:"runtime"`
}

// Manifest renders the compiled route into its manifest form.
func (r *CompiledRoute) Manifest() *RouteManifest {
	m := &RouteManifest{
		Route:        r.Route,
		Pathname:     r.Pathname,
		OutputTarget: r.OutputTarget,
	}

	if r.Handler != nil {
		m.Kind = "handler"
		m.Handler = r.Handler
		m.Runtime = RuntimeRefs{
			HandlerAdapter:  RuntimeHandlerAdapter,
			RequestStorage:  RuntimeRequestStorage,
			ResponseStorage: RuntimeResponseStorage,
		}
		return m
	}

	m.Kind = "page"
	m.Tree = r.Tree
	m.PageFiles = r.PageFiles
	m.RootLayout = r.RootLayout
	m.GlobalError = r.GlobalError
	m.Runtime = RuntimeRefs{
		Router:          RuntimeRouterModule,
		Layouts:         RuntimeLayoutModule,
		ErrorBoundary:   RuntimeErrorBoundary,
		GlobalError:     RuntimeGlobalErrorStub,
		RequestStorage:  RuntimeRequestStorage,
		ResponseStorage: RuntimeResponseStorage,
	}
	if r.GlobalError != "" {
		m.Runtime.GlobalError = r.GlobalError
	}
	return m
}

// Generator renders a compiled route as a Go source module that registers
// the route manifest with the runtime router at init time.
type Generator struct {
	compiled *CompiledRoute
	pkg      string
}

// NewGenerator creates a generator. pkg is the package name of the emitted
// file.
func NewGenerator(compiled *CompiledRoute, pkg string) *Generator {
	return &Generator{compiled: compiled, pkg: pkg}
}

// Generate emits the route module. The output is deterministic: compiling
// the same app twice produces identical bytes.
func (g *Generator) Generate() ([]byte, error) {
	manifest, err := json.MarshalIndent(g.compiled.Manifest(), "", "\t")
	if err != nil {
		return nil, err
	}

	ident := identFromRoute(g.compiled.Route)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by strata. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "// Route %s (%s)\n", g.compiled.Route, g.compiled.Pathname)
	fmt.Fprintf(&buf, "package %s\n\n", g.pkg)
	fmt.Fprintf(&buf, "import approuter %q\n\n", RuntimeRouterModule)
	fmt.Fprintf(&buf, "func init() {\n")
	fmt.Fprintf(&buf, "\tapprouter.RegisterJSON(manifest%s)\n", ident)
	fmt.Fprintf(&buf, "}\n\n")
	fmt.Fprintf(&buf, "const manifest%s = %s\n", ident, backquote(manifest))
	return buf.Bytes(), nil
}

// identFromRoute derives a Go identifier suffix from a route path:
// "/blog/@sidebar/page" becomes "BlogSidebarPage".
func identFromRoute(route string) string {
	var sb strings.Builder
	upper := true
	for _, r := range route {
		switch {
		case r == '/' || r == '@' || r == '-' || r == '.':
			upper = true
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if upper {
				sb.WriteRune(unicode.ToUpper(r))
				upper = false
			} else {
				sb.WriteRune(r)
			}
		}
	}
	if sb.Len() == 0 {
		return "Root"
	}
	return sb.String()
}

// backquote renders raw bytes as a Go raw string literal, falling back to
// an interpreted literal if the content contains a backquote.
func backquote(b []byte) string {
	s := string(b)
	if strings.Contains(s, "`") {
		return fmt.Sprintf("%q", s)
	}
	return "`" + s + "`"
}
