// Package server runs the catalog HTTP server until its context ends.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/livraria-escolar/catalog/config"
	"github.com/livraria-escolar/catalog/pkg/logger"
)

// Run serves handler on cfg.Addr(). When ctx is cancelled the server stops
// accepting connections and waits up to cfg.ShutdownTimeout for in-flight
// requests.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return err
	}
	return Serve(ctx, cfg, ln, handler)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, cfg *config.Config, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		// Request contexts keep ctx values but outlive its cancellation so
		// Shutdown can drain them.
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", ln.Addr().String(), "env", cfg.AppEnv)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		timeout := cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		logger.Info("http server shutting down", "timeout", timeout.String())
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
