package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strata-dev/strata/internal/build"
	"github.com/strata-dev/strata/internal/config"
)

func buildCmd() *cobra.Command {
	var (
		output  string
		target  string
		clean   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile all routes for production",
		Long: `Compile every route in the app directory for production.

This command:
  • Scans the app directory for page and handler routes
  • Compiles each route into a loader tree
  • Writes generated route modules and manifest.json
  • Uploads a static export to S3 (if configured)

Examples:
  strata build
  strata build --output=dist
  strata build --target=static-export`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(output, target, clean, verbose)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from strata.json)")
	cmd.Flags().StringVar(&target, "target", "", "Output target (e.g. static-export)")
	cmd.Flags().BoolVar(&clean, "clean", false, "Clean output directory before build")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runBuild(output, target string, clean, verbose bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if output != "" {
		cfg.Build.Output = output
	}
	if target != "" {
		cfg.Build.Target = target
	}

	fmt.Println("  Compiling routes...")
	fmt.Println()

	if clean {
		info("Cleaning output directory...")
		if err := os.RemoveAll(cfg.OutputPath()); err != nil {
			return err
		}
	}

	builder := build.New(cfg, newLogger(verbose), build.Options{
		Target: cfg.Build.Target,
		OnProgress: func(step string) {
			info(step)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	result, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	success("Compiled %d routes in %s", result.Routes, result.Duration.Round(1000000))
	fmt.Println()
	fmt.Println("  Output:")
	fmt.Printf("    %s/\n", cfg.Build.Output)
	fmt.Printf("    ├── routes/         # Generated route modules\n")
	fmt.Printf("    └── manifest.json   # Fingerprint %s\n", result.Fingerprint)
	fmt.Println()

	return nil
}

// newLogger builds the CLI logger. Progress goes through info/success;
// zap carries the structured detail, so it stays quiet unless asked.
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
