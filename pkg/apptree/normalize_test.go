package apptree

import "testing"

func TestNormalizePathname(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/page", "/"},
		{"/route", "/"},
		{"/blog/page", "/blog"},
		{"/blog/post/page", "/blog/post"},
		{"/dashboard/@stats/page", "/dashboard"},
		{"/dashboard/@stats/activity/page", "/dashboard/activity"},
		{"/@modal/page", "/"},
		{"/api/users/route", "/api/users"},
		{"/docs/page/page", "/docs/page"},
	}

	for _, tt := range tests {
		if got := NormalizePathname(tt.route); got != tt.want {
			t.Errorf("NormalizePathname(%q) = %q, want %q", tt.route, got, tt.want)
		}
	}
}

func TestNormalizeSlotKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"@modal", "modal"},
		{"modal", "modal"},
		{"children", "children"},
		{"@children", "children"},
	}

	for _, tt := range tests {
		if got := NormalizeSlotKey(tt.key); got != tt.want {
			t.Errorf("NormalizeSlotKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
		// Normalization must be idempotent.
		if got := NormalizeSlotKey(NormalizeSlotKey(tt.key)); got != tt.want {
			t.Errorf("NormalizeSlotKey twice on %q = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestIsHandlerRoute(t *testing.T) {
	tests := []struct {
		route string
		want  bool
	}{
		{"/route", true},
		{"/api/users/route", true},
		{"/page", false},
		{"/blog/page", false},
		{"/enroute/page", false},
	}

	for _, tt := range tests {
		if got := IsHandlerRoute(tt.route); got != tt.want {
			t.Errorf("IsHandlerRoute(%q) = %v, want %v", tt.route, got, tt.want)
		}
	}
}
