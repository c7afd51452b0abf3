// Package config loads and validates strata.json, the project
// configuration file. A missing file is distinct from an invalid one:
// commands that can run with defaults fall back to config.Default, while
// commands that need a project root treat a missing file as an error.
package config
