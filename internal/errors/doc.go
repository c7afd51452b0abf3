// Package errors provides structured, actionable error messages for Strata.
//
// Each error carries a stable code (e.g., "E102") registered with a
// category, a default message and a documentation link. Call sites refine
// the template with the route or file involved, extra detail and a fix
// suggestion:
//
//	return errors.New(errors.CodeMissingRootLayout).
//		WithPath(route).
//		WithSuggestion("create app/layout.go")
//
// Codes are part of the CLI's contract: scripts match on them, so they
// never change meaning once released.
package errors
