package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/shashiranjanraj/radio/config"
	"github.com/shashiranjanraj/radio/pkg/logger"
)

// New builds the http.Server for handler with the configured timeouts.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

// Start listens on the configured port and serves until ctx is cancelled,
// then drains in-flight requests for up to ShutdownTimeout.
func Start(ctx context.Context, cfg config.Config, handler http.Handler) error {
	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
	}
	return Serve(ctx, ln, cfg, handler)
}

// Serve is Start on an existing listener.
func Serve(ctx context.Context, ln net.Listener, cfg config.Config, handler http.Handler) error {
	srv := New(cfg, handler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("radio listening", "addr", ln.Addr().String(), "env", cfg.AppEnv)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
