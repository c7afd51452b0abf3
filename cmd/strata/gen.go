package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strata-dev/strata/internal/build"
	"github.com/strata-dev/strata/internal/config"
	"github.com/strata-dev/strata/pkg/apptree"
	"github.com/strata-dev/strata/pkg/metadata"
	"github.com/strata-dev/strata/pkg/resolver"
)

func genCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen <type>",
		Short: "Generate code",
		Long: `Generate route modules or inspect compiled route trees.

Types:
  routes      Regenerate route modules and manifest.json
  tree        Print the compiled loader tree for one route

Examples:
  strata gen routes                   # Regenerate all route modules
  strata gen tree /blog/page          # Print the tree for one route`,
	}

	cmd.AddCommand(
		genRoutesCmd(),
		genTreeCmd(),
	)

	return cmd
}

func genRoutesCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Regenerate route modules from the app directory",
		Long: `Scan the app directory and regenerate the route modules.

The output is deterministic - running it multiple times produces
identical output unless the routes change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenRoutes(verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runGenRoutes(verbose bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	// Route generation is a build without the deploy step.
	cfg.Deploy.Bucket = ""

	builder := build.New(cfg, newLogger(verbose), build.Options{
		OnProgress: func(step string) {
			info(step)
		},
	})

	result, err := builder.Build(context.Background())
	if err != nil {
		return err
	}

	success("Generated %d route modules", result.Routes)
	return nil
}

func genTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <route>",
		Short: "Print the compiled loader tree for a route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenTree(args[0])
		},
	}

	return cmd
}

func runGenTree(route string) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	scanner := apptree.NewScanner(cfg.AppPath(), cfg.Extensions)
	appPaths, err := scanner.Scan()
	if err != nil {
		return err
	}
	if err := apptree.ValidateAppPaths(appPaths); err != nil {
		return err
	}

	deps := resolver.NewDepTracker()
	res := resolver.NewFSResolver(cfg.AppPath(), cfg.Extensions, resolver.WithDepTracker(deps))
	compiler := apptree.NewCompiler(apptree.Options{
		Resolver:     res,
		Metadata:     metadata.NewStaticFiles(cfg.AppPath(), deps),
		AppPaths:     appPaths,
		AppDir:       cfg.AppPath(),
		Mode:         apptree.ModeBuild,
		OutputTarget: cfg.Build.Target,
	})

	compiled, err := compiler.Compile(context.Background(), route)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(compiled.Manifest()); err != nil {
		return err
	}

	fmt.Println()
	info("Pathname: %s", compiled.Pathname)
	return nil
}
