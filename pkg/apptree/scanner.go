package apptree

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Scanner collects the leaf route paths of an app directory.
type Scanner struct {
	appDir string
	exts   []string
}

// NewScanner creates a scanner for the physical app directory. exts is the
// recognized extension list (e.g. ".go").
func NewScanner(appDir string, exts []string) *Scanner {
	return &Scanner{appDir: appDir, exts: exts}
}

// Scan walks the app directory and returns every leaf route path: one
// "/…/page" entry per page file and one "/…/route" entry per handler
// file, slash-normalized and in lexical walk order. The order is preserved
// through compilation, where it drives slot discovery order.
func (s *Scanner) Scan() ([]string, error) {
	var routes []string

	err := filepath.WalkDir(s.appDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		if strings.HasSuffix(name, "_test.go") {
			return nil
		}

		base, ok := s.trimExt(name)
		if !ok || (base != pageFile && base != routeFile) {
			return nil
		}

		rel, err := filepath.Rel(s.appDir, p)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", p, err)
		}
		dir := filepath.ToSlash(filepath.Dir(rel))
		if dir == "." {
			dir = ""
		}

		route := "/" + base
		if dir != "" {
			route = "/" + dir + "/" + base
		}
		routes = append(routes, route)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return routes, nil
}

// trimExt strips a recognized extension, reporting whether one matched.
func (s *Scanner) trimExt(name string) (string, bool) {
	for _, ext := range s.exts {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return name[:len(name)-len(ext)], true
		}
	}
	return "", false
}
