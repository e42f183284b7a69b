// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/maintinsight/maintinsight/internal/contract"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server serves CSV uploads against the shared model.
// Each request runs its own batch; the model is shared read-only.
type Server struct {
	cfg      *contract.Config
	provider contract.ModelProvider
	mgr      contract.CacheManager
}

// New creates a Server. mgr may be nil to disable caching and run tracking.
func New(cfg *contract.Config, provider contract.ModelProvider, mgr contract.CacheManager) *Server {
	return &Server{cfg: cfg, provider: provider, mgr: mgr}
}

// ListenAndServe serves on cfg.ServeAddr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.ServeAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		contract.LogInfo("Listening on %s", s.cfg.ServeAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	contract.LogInfo("Shutting down server on %s", s.cfg.ServeAddr)
	return httpServer.Shutdown(shutdownCtx)
}
