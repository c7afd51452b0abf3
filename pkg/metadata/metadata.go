// Package metadata discovers static metadata files colocated with route
// segments: icons, social-card images, robots and sitemap files. Matches
// are rendered as "metadata:" export entries in a node's file set; the
// runtime turns them into the corresponding head tags and well-known
// routes.
package metadata

import (
	"context"
	"errors"
	"path"

	"github.com/strata-dev/strata/pkg/apptree"
	"github.com/strata-dev/strata/pkg/resolver"
)

// ExportKeyPrefix marks metadata entries in a node's file set.
const ExportKeyPrefix = "metadata:"

// convention declares one recognized metadata file kind. Root-only kinds
// (robots, sitemap, favicon, manifest) are meaningless below the app root
// and are skipped there.
type convention struct {
	name     string
	exts     []string
	rootOnly bool
}

var conventions = []convention{
	{name: "favicon", exts: []string{".ico"}, rootOnly: true},
	{name: "icon", exts: []string{".ico", ".svg", ".png", ".jpg", ".jpeg"}},
	{name: "apple-icon", exts: []string{".png", ".jpg", ".jpeg"}},
	{name: "opengraph-image", exts: []string{".png", ".jpg", ".jpeg", ".gif"}},
	{name: "twitter-image", exts: []string{".png", ".jpg", ".jpeg", ".gif"}},
	{name: "robots", exts: []string{".txt"}, rootOnly: true},
	{name: "sitemap", exts: []string{".xml"}, rootOnly: true},
	{name: "manifest", exts: []string{".json", ".webmanifest"}, rootOnly: true},
}

// StaticFiles discovers metadata files under an app directory. It
// implements apptree.MetadataSource.
type StaticFiles struct {
	resolvers map[string]resolver.Resolver
}

// NewStaticFiles creates a discoverer rooted at the physical app
// directory. Lookups share the given tracker so metadata files count as
// build dependencies like any conventional file.
func NewStaticFiles(root string, deps *resolver.DepTracker) *StaticFiles {
	resolvers := make(map[string]resolver.Resolver, len(conventions))
	for _, c := range conventions {
		var opts []resolver.Option
		if deps != nil {
			opts = append(opts, resolver.WithDepTracker(deps))
		}
		resolvers[c.name] = resolver.NewFSResolver(root, c.exts, opts...)
	}
	return &StaticFiles{resolvers: resolvers}
}

// Collect implements apptree.MetadataSource. Per-kind misses are
// swallowed; any other resolver failure propagates.
func (s *StaticFiles) Collect(ctx context.Context, segmentPath string, isRoot bool) (apptree.FileSet, error) {
	var files apptree.FileSet

	for _, c := range conventions {
		if c.rootOnly && !isRoot {
			continue
		}
		logical := path.Join(segmentPath, c.name)
		physical, err := s.resolvers[c.name].Resolve(ctx, logical)
		if errors.Is(err, resolver.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if files == nil {
			files = make(apptree.FileSet)
		}
		files[ExportKeyPrefix+c.name] = apptree.ModuleRef{LogicalPath: logical, PhysicalPath: physical}
	}

	return files, nil
}
