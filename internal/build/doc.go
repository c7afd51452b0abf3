// Package build drives one-shot compilations: scan the app directory,
// compile every route through pkg/apptree, write the generated route
// modules and the route manifest, and optionally upload a static export.
//
// A route with no root layout stops the whole build with a non-zero exit
// rather than a per-route diagnostic: an app without a root layout cannot
// be served at all.
package build
