package dev

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/strata-dev/strata/internal/config"
)

// Server is the development HTTP server. It exposes the compiled route
// manifests, the reload WebSocket, and Prometheus metrics.
type Server struct {
	cfg     *config.Config
	log     *zap.Logger
	session *Session
	reload  *ReloadServer
	httpSrv *http.Server
}

// NewServer creates a dev server around an existing session and reload hub.
func NewServer(cfg *config.Config, log *zap.Logger, session *Session, reload *ReloadServer) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{cfg: cfg, log: log, session: session, reload: reload}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/_strata/manifest.json", s.handleManifest)
	r.Get("/_strata/status", s.handleStatus)
	r.Get("/_strata/reload", reload.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Dev.Host, cfg.Dev.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpSrv.Addr
}

// Start serves until the context is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.log.Info("dev server listening", zap.String("addr", s.httpSrv.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.session.Manifests()); err != nil {
		s.log.Warn("manifest encode failed", zap.Error(err))
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := struct {
		Routes  int    `json:"routes"`
		Clients int    `json:"clients"`
		Error   string `json:"error,omitempty"`
	}{
		Routes:  len(s.session.Manifests()),
		Clients: s.reload.ClientCount(),
		Error:   s.session.LastError(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
