package errors

// Stable codes referenced from other packages.
const (
	CodeConfigNotFound    = "E001"
	CodeConfigInvalid     = "E002"
	CodeResolutionFailure = "E101"
	CodeMissingRootLayout = "E102"
	CodeMissingHandler    = "E103"
	CodeAmbiguousRoutes   = "E104"
	CodeBuildOutput       = "E201"
	CodeDeployUpload      = "E202"
	CodeDevServer         = "E301"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E001-E099)
	// ============================================

	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No strata.json was found in this directory or any parent directory.",
		DocURL:   "https://strata.dev/docs/errors/E001",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "strata.json could not be parsed or contains invalid values.",
		DocURL:   "https://strata.dev/docs/errors/E002",
	},

	// ============================================
	// Compile Errors (E101-E199)
	// ============================================

	CodeResolutionFailure: {
		Category: CategoryCompile,
		Message:  "Path resolution failed",
		Detail:   "A conventional file lookup failed for a reason other than the file being absent.",
		DocURL:   "https://strata.dev/docs/errors/E101",
	},
	CodeMissingRootLayout: {
		Category: CategoryCompile,
		Message:  "Route has no root layout",
		Detail:   "Every page route needs a layout somewhere above it; the outermost one becomes the route's root layout.",
		DocURL:   "https://strata.dev/docs/errors/E102",
	},
	CodeMissingHandler: {
		Category: CategoryCompile,
		Message:  "Route handler file does not resolve",
		Detail:   "The route was classified as a handler route, but its handler source file is gone.",
		DocURL:   "https://strata.dev/docs/errors/E103",
	},
	CodeAmbiguousRoutes: {
		Category: CategoryCompile,
		Message:  "Ambiguous routes",
		Detail:   "Two leaf route paths claim the same slot at the same depth.",
		DocURL:   "https://strata.dev/docs/errors/E104",
	},

	// ============================================
	// Build Errors (E201-E299)
	// ============================================

	CodeBuildOutput: {
		Category: CategoryBuild,
		Message:  "Could not write build output",
		DocURL:   "https://strata.dev/docs/errors/E201",
	},
	CodeDeployUpload: {
		Category: CategoryBuild,
		Message:  "Static export upload failed",
		DocURL:   "https://strata.dev/docs/errors/E202",
	},

	// ============================================
	// Dev Errors (E301-E399)
	// ============================================

	CodeDevServer: {
		Category: CategoryDev,
		Message:  "Development server error",
		DocURL:   "https://strata.dev/docs/errors/E301",
	},
}
