package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌┬┐┬─┐┌─┐┌┬┐┌─┐
  └─┐ │ ├┬┘├─┤ │ ├─┤
  └─┘ ┴ ┴└─┴ ┴ ┴ ┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "strata",
		Short: "The file-convention route compiler",
		Long: `Strata compiles a file-convention app directory into route trees.

Directories become nested segments, @-prefixed directories become
parallel slots, and conventional files (layout, page, error, loading,
not-found, default) attach behavior at each level. Features include:

  • Nested layouts with parallel slots
  • Handler routes alongside page routes
  • Generated route manifests for the runtime router
  • Hot-reload development server
  • Static export with S3 deploy`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		buildCmd(),
		devCmd(),
		genCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Strata ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
