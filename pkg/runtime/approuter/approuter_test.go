package approuter

import (
	"testing"
)

func TestRegisterAndLookup(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	RegisterJSON(`{"route":"/blog/page","pathname":"/blog","kind":"page","runtime":{},` +
		`"tree":["",{"children":["blog",{"children":["__PAGE__",{},{"page":{"logical":"blog/page"}}]},{}]},{}]}`)
	RegisterJSON(`{"route":"/api/users/route","pathname":"/api/users","kind":"handler","runtime":{}}`)

	m := Lookup("/blog/page")
	if m == nil || m.Pathname != "/blog" {
		t.Fatalf("Lookup = %+v", m)
	}
	blog, ok := m.Tree.Children.Get("children")
	if !ok || blog.Segment != "blog" {
		t.Fatalf("decoded tree = %+v, %v", blog, ok)
	}
	if Lookup("/nope") != nil {
		t.Error("Lookup of unregistered route succeeded")
	}

	if m := LookupPathname("/api/users"); m == nil || m.Kind != "handler" {
		t.Errorf("LookupPathname = %+v", m)
	}

	routes := Routes()
	if len(routes) != 2 {
		t.Fatalf("Routes len = %d", len(routes))
	}
	if routes[0].Route != "/api/users/route" || routes[1].Route != "/blog/page" {
		t.Errorf("routes not sorted: %s, %s", routes[0].Route, routes[1].Route)
	}
}

func TestRegisterJSONInvalidPanics(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	defer func() {
		if recover() == nil {
			t.Error("malformed manifest did not panic")
		}
	}()
	RegisterJSON(`{`)
}
