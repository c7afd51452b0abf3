// Package layouts defines the contract between generated route trees and
// user layout functions.
package layouts

// Slot is the rendered content a layout wraps. The children slot is always
// present; parallel slots appear under their normalized names.
type Slot struct {
	// Name is the slot name ("children", "sidebar", ...).
	Name string

	// Content is the rendered output of the slot's subtree.
	Content []byte
}

// Result is what a layout function returns.
type Result struct {
	Content []byte
}

// PassThrough returns the slot content unchanged. It is the body of
// auto-created root layouts.
func PassThrough(children Slot) Result {
	return Result{Content: children.Content}
}
