package apptree

import "strings"

// NormalizePathname converts a leaf route path into the URL path the
// runtime serves it at. Parallel slot segments are composition points, not
// URL components, so they are dropped, as is the trailing page or route
// marker.
//
//	/page                  -> /
//	/blog/post/page        -> /blog/post
//	/dashboard/@stats/page -> /dashboard
//	/api/users/route       -> /api/users
func NormalizePathname(route string) string {
	segments := strings.Split(strings.Trim(route, "/"), "/")

	var kept []string
	for i, seg := range segments {
		if seg == "" || isSlotDir(seg) {
			continue
		}
		if i == len(segments)-1 && (seg == pageFile || seg == routeFile) {
			continue
		}
		kept = append(kept, seg)
	}

	if len(kept) == 0 {
		return "/"
	}
	return "/" + strings.Join(kept, "/")
}
