package apptree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatchParallelRoutes(t *testing.T) {
	tests := []struct {
		name        string
		appPaths    []string
		segmentPath string
		wantKeys    []string
		wantConts   []string
	}{
		{
			name:        "root page",
			appPaths:    []string{"/page"},
			segmentPath: "",
			wantKeys:    []string{"children"},
			wantConts:   []string{PageSegment},
		},
		{
			name:        "nested path continues through children",
			appPaths:    []string{"/blog/post/page"},
			segmentPath: "",
			wantKeys:    []string{"children"},
			wantConts:   []string{"blog"},
		},
		{
			name:        "slot page at this level",
			appPaths:    []string{"/dashboard/@stats/page"},
			segmentPath: "/dashboard",
			wantKeys:    []string{"@stats"},
			wantConts:   []string{PageSegment},
		},
		{
			name:        "slot continues deeper",
			appPaths:    []string{"/dashboard/@stats/activity/page"},
			segmentPath: "/dashboard",
			wantKeys:    []string{"@stats"},
			wantConts:   []string{"activity/page"},
		},
		{
			name: "slots ordered by first appearance",
			appPaths: []string{
				"/dashboard/@stats/page",
				"/dashboard/page",
				"/dashboard/@activity/page",
			},
			segmentPath: "/dashboard",
			wantKeys:    []string{"@stats", "children", "@activity"},
			wantConts:   []string{PageSegment, PageSegment, PageSegment},
		},
		{
			name: "later match overwrites continuation in place",
			appPaths: []string{
				"/docs/guide/page",
				"/docs/page",
			},
			segmentPath: "",
			wantKeys:    []string{"children"},
			wantConts:   []string{"docs"},
		},
		{
			name:        "descendants of a different branch are ignored",
			appPaths:    []string{"/blog/page", "/shop/page"},
			segmentPath: "/blog",
			wantKeys:    []string{"children"},
			wantConts:   []string{PageSegment},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := matchParallelRoutes(tt.appPaths, tt.segmentPath)

			var keys, conts []string
			for _, e := range slots.entries {
				keys = append(keys, e.key)
				conts = append(conts, e.cont.String())
			}

			if diff := cmp.Diff(tt.wantKeys, keys); diff != "" {
				t.Errorf("slot keys mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantConts, conts); diff != "" {
				t.Errorf("continuations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchParallelRoutesLastWriteKeepsPosition(t *testing.T) {
	appPaths := []string{
		"/shop/@cart/summary/page",
		"/shop/@promo/page",
		"/shop/@cart/page",
	}

	slots := matchParallelRoutes(appPaths, "/shop")

	wantKeys := []string{"@cart", "@promo"}
	var keys []string
	for _, e := range slots.entries {
		keys = append(keys, e.key)
	}
	if diff := cmp.Diff(wantKeys, keys); diff != "" {
		t.Fatalf("slot keys mismatch (-want +got):\n%s", diff)
	}

	// The later /shop/@cart/page match replaced the continuation but kept
	// @cart in first position.
	if !slots.entries[0].cont.IsPage() {
		t.Errorf("@cart continuation = %q, want page marker", slots.entries[0].cont.String())
	}
}
