package dev

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/strata-dev/strata/internal/config"
	stErrors "github.com/strata-dev/strata/internal/errors"
	"github.com/strata-dev/strata/pkg/apptree"
	"github.com/strata-dev/strata/pkg/metadata"
	"github.com/strata-dev/strata/pkg/resolver"
)

// Session is one interactive compile loop: it keeps the latest compiled
// manifests, recompiles when watched files change, and pushes the result
// to connected reload clients.
type Session struct {
	cfg    *config.Config
	log    *zap.Logger
	reload *ReloadServer

	mu        sync.RWMutex
	manifests []*apptree.RouteManifest
	deps      *resolver.DepTracker
	lastErr   string
}

// NewSession creates a session. The reload server may be nil for headless
// use (tests).
func NewSession(cfg *config.Config, log *zap.Logger, reload *ReloadServer) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{cfg: cfg, log: log, reload: reload}
}

// Manifests returns the latest compiled route manifests.
func (s *Session) Manifests() []*apptree.RouteManifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifests
}

// LastError returns the last compile error message, or "".
func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Recompile compiles every route in interactive mode and swaps in the
// result. Unlike one-shot builds, a missing root layout goes through
// auto-creation, and failures keep the previous manifests so the dev
// server stays usable.
func (s *Session) Recompile(ctx context.Context) error {
	scanner := apptree.NewScanner(s.cfg.AppPath(), s.cfg.Extensions)
	appPaths, err := scanner.Scan()
	if err != nil {
		return s.fail(err)
	}
	if err := apptree.ValidateAppPaths(appPaths); err != nil {
		return s.fail(err)
	}

	deps := resolver.NewDepTracker()
	res := resolver.NewFSResolver(s.cfg.AppPath(), s.cfg.Extensions, resolver.WithDepTracker(deps))
	compiler := apptree.NewCompiler(apptree.Options{
		Resolver:         res,
		Metadata:         metadata.NewStaticFiles(s.cfg.AppPath(), deps),
		AppPaths:         appPaths,
		AppDir:           s.cfg.AppPath(),
		Mode:             apptree.ModeDev,
		OutputTarget:     s.cfg.Build.Target,
		EnsureRootLayout: EnsureRootLayout,
	})

	manifests := make([]*apptree.RouteManifest, 0, len(appPaths))
	for _, route := range appPaths {
		compiled, err := compiler.Compile(ctx, route)
		if err != nil {
			return s.fail(err)
		}
		manifests = append(manifests, compiled.Manifest())
	}

	s.mu.Lock()
	s.manifests = manifests
	s.deps = deps
	s.lastErr = ""
	s.mu.Unlock()

	s.log.Info("recompiled", zap.Int("routes", len(manifests)))
	if s.reload != nil {
		s.reload.ClearError()
		s.reload.NotifyRecompiled("*")
	}
	return nil
}

// HandleChanges recompiles if any change touches a known dependency, a
// recorded missing dependency, or the app directory itself (new files are
// not in either set).
func (s *Session) HandleChanges(ctx context.Context, changes []Change) {
	s.mu.RLock()
	deps := s.deps
	s.mu.RUnlock()

	relevant := deps == nil
	for _, c := range changes {
		if relevant {
			break
		}
		if deps.Affects(c.Path) || within(s.cfg.AppPath(), c.Path) {
			relevant = true
		}
	}
	if !relevant {
		return
	}

	if err := s.Recompile(ctx); err != nil {
		s.log.Warn("recompile failed", zap.Error(err))
	}
}

func (s *Session) fail(err error) error {
	msg := err.Error()
	if se, ok := err.(*stErrors.StrataError); ok {
		msg = se.Format()
	}

	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()

	if s.reload != nil {
		s.reload.NotifyError(msg)
	}
	return err
}
