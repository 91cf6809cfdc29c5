// Package server wires the HTTP routes and runs the listener.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/vakuf-map/internal/core/config"
	"github.com/mohammed-shakir/vakuf-map/internal/core/health"
	middleware "github.com/mohammed-shakir/vakuf-map/internal/core/middleware"
	"github.com/mohammed-shakir/vakuf-map/internal/core/router"
)

// Records is the loaded record set as seen by the probes and the API.
type Records interface {
	Ready() bool
	Count() int
}

type Deps struct {
	Sessions router.Sessions
	Records  Records
	// probed by /readyz; failures are reported, not fatal
	Pingers map[string]health.Pinger
	// served on the API listener when set
	Metrics http.Handler
	// path for Metrics
	MetricsPath string
}

// NewHandler builds the root handler.
func NewHandler(cfg config.Config, logger *slog.Logger, d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(d.Records, d.Pingers))
	if d.Metrics != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, d.Metrics)
	}
	router.Mount(r, logger, cfg, d.Sessions, d.Records)
	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, d Deps) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(cfg, logger, d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
