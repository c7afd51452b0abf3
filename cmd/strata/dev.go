package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/strata-dev/strata/internal/config"
	"github.com/strata-dev/strata/internal/dev"
)

func devCmd() *cobra.Command {
	var (
		port    int
		host    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server with hot reload.

The dev server watches the app directory, recompiles route trees on
change, and notifies connected browsers over WebSocket.

Features:
  • Recompile on file change, scoped by dependency tracking
  • Error overlay in browser
  • Auto-created root layout when none exists
  • Route manifests at /_strata/manifest.json

Examples:
  strata dev
  strata dev --port=8080
  strata dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host, verbose)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from strata.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from strata.json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runDev(port int, host string, verbose bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}

	printBanner()
	fmt.Println("  dev")
	fmt.Println()

	log := newLogger(verbose)
	reload := dev.NewReloadServer()
	session := dev.NewSession(cfg, log, reload)
	server := dev.NewServer(cfg, log, session, reload)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
	}()

	if err := session.Recompile(ctx); err != nil {
		// First compile may fail (broken route, half-typed file); the
		// server still starts so the overlay can show the error.
		warn("initial compile failed: %s", err)
	} else {
		success("Compiled %d routes", len(session.Manifests()))
	}

	watchPaths := append([]string{cfg.AppPath()}, cfg.Dev.Watch...)
	watcher, err := dev.NewWatcher(dev.WatcherConfig{
		Paths:  watchPaths,
		Ignore: cfg.Dev.Ignore,
	}, log)
	if err != nil {
		return err
	}
	defer watcher.Close()

	watcher.OnChange(func(changes []dev.Change) {
		session.HandleChanges(ctx, changes)
	})
	if err := watcher.Start(ctx); err != nil {
		return err
	}

	info("Listening on http://%s", server.Addr())
	fmt.Println()

	return server.Start(ctx)
}
