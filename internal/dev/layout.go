package dev

import (
	"context"
	"os"
	"path/filepath"
)

// rootLayoutStub is the layout written when a route has none. It renders
// children unchanged so the app works immediately; the developer is
// expected to replace it.
const rootLayoutStub = `package app

import "github.com/strata-dev/strata/pkg/runtime/layouts"

// Layout is the root layout. It was generated because no layout existed
// anywhere above a compiled route; edit it freely.
func Layout(children layouts.Slot) layouts.Result {
	return layouts.PassThrough(children)
}
`

// EnsureRootLayout creates a minimal root layout in the app directory if
// none exists. It reports whether a file was created and the path it
// targeted either way, so callers can name it in diagnostics.
func EnsureRootLayout(ctx context.Context, appDir, route string) (bool, string, error) {
	if err := ctx.Err(); err != nil {
		return false, "", err
	}

	target := filepath.Join(appDir, "layout.go")
	if _, err := os.Stat(target); err == nil {
		// A layout file exists but did not resolve; leave it alone and
		// let the compiler report the route as broken.
		return false, target, nil
	} else if !os.IsNotExist(err) {
		return false, target, err
	}

	if err := os.MkdirAll(appDir, 0755); err != nil {
		return false, target, err
	}
	if err := os.WriteFile(target, []byte(rootLayoutStub), 0644); err != nil {
		return false, target, err
	}
	return true, target, nil
}
