// Package http contiene el servidor y su ciclo de vida.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/trackshare/trackauth/internal/observability/logger"
)

// Start levanta el servidor y bloquea hasta error o shutdown.
func Start(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// StartWithShutdown levanta el servidor y lo apaga ordenadamente cuando
// ctx se cancela. Las conexiones en vuelo tienen hasta grace para
// terminar.
func StartWithShutdown(ctx context.Context, addr string, handler http.Handler, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.L().Info("shutting down http server", logger.Component("server"))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// ListenAndServe ya retornó ErrServerClosed; drenarlo.
		<-errCh
		return nil
	}
}
