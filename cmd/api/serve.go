package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/JK-25/condor-car-tracker-2025.io/internal/config"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/handler"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/ledger"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/middleware"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/repo"
	"github.com/JK-25/condor-car-tracker-2025.io/internal/service"
)

// serve runs the HTTP server until SIGINT/SIGTERM or ctx is cancelled.
func serve(ctx context.Context, cmd *cli.Command) error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// --- Logger -----------------------------------------------------------
	logger := newLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	// --- Fleet ------------------------------------------------------------
	var opts []ledger.Option
	if cfg.RequireRegisteredVehicle {
		opts = append(opts, ledger.WithRegisteredVehiclesOnly())
	}
	fleet := service.NewFleet(
		ledger.New(opts...),
		repo.NewTripMirror(),
		repo.NewSettingsStore(cfg.SettingsFile, logger),
		logger,
	)

	var provider service.PathProvider = service.NoPrompt{}
	if cmd.Bool("prompt") {
		provider = newStdinPrompt(os.Stdin, os.Stdout)
	}
	if err := fleet.Bootstrap(ctx, provider, cfg.DefaultStoragePath); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newRouter(cfg, fleet, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown: wait for an OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	g.Go(func() error {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(stop)

		select {
		case sig := <-stop:
			logger.Info("received shutdown signal", "signal", sig.String())
		case <-gCtx.Done():
		}

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newRouter builds the full middleware stack around the API routes.
//
// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer →
// CORS → MaxBodySize. RequestID generates a unique trace ID per request.
// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP.
// SlogLogger writes one structured JSON log line per request.
// Recoverer catches panics and returns HTTP 500 instead of crashing.
func newRouter(cfg config.Config, fleet handler.FleetServicer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Mount("/", handler.Handler(handler.NewServer(fleet, logger)))
	return r
}
