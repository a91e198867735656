// Package diag runs the terminal's diagnostics listener: Prometheus metrics
// and a liveness probe, bound to localhost by default. The POS itself makes
// outbound calls only; this is the one thing it serves.
package diag

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dukaanlabs/dukaan/pkg/logger"
	"github.com/dukaanlabs/dukaan/pkg/metrics"
)

// Server is the diagnostics HTTP listener.
type Server struct {
	srv *http.Server
}

// New builds the listener on addr (e.g. "127.0.0.1:9101").
func New(addr string) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/metrics", metrics.Handler())

	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start serves in the background. Listen failures are logged, not fatal;
// the POS keeps selling without diagnostics.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("diagnostics listener stopped", "addr", s.srv.Addr, "error", err)
		}
	}()
	logger.Info("diagnostics listening", "addr", s.srv.Addr)
}

// Stop shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
