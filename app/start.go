package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 15 * time.Second

// Start serves the HTTP API and runs the modules until ctx is cancelled,
// then shuts everything down.
func (a *App) Start(ctx context.Context) error {
	logger := a.Observability.Logger

	srv := &http.Server{
		Addr:              a.Config.HTTP.Address,
		Handler:           a.HTTP,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "Starting HTTP server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- a.Run(runCtx) }()

	var err error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err = <-serveErr:
		if err != nil {
			err = fmt.Errorf("http server: %w", err)
		}
	case err = <-runErr:
	}
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("Server forced to shutdown", slog.String("error", shutdownErr.Error()))
	}
	if closeErr := a.Close(); closeErr != nil {
		logger.Error("Error closing application", slog.String("error", closeErr.Error()))
	}
	if obsErr := a.Observability.Shutdown(shutdownCtx); obsErr != nil {
		logger.Error("Error flushing telemetry", slog.String("error", obsErr.Error()))
	}

	logger.Info("Application shut down")
	return err
}
