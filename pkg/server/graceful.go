// Package server runs the monitoring endpoint of a pregel process:
// Prometheus metrics, liveness and readiness over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-pregel/pkg/health"
	"github.com/dd0wney/cluso-pregel/pkg/logging"
)

// DefaultShutdownTimeout bounds the drain of in-flight scrapes
const DefaultShutdownTimeout = 5 * time.Second

// NewMonitorHandler routes /metrics, /healthz and /readyz
func NewMonitorHandler(registry *prometheus.Registry, checker *health.Checker) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.Handle("GET /healthz", checker.LivenessHandler())
	mux.Handle("GET /readyz", checker.ReadinessHandler())
	return mux
}

// GracefulServer wraps an HTTP server that drains on shutdown
type GracefulServer struct {
	server       *http.Server
	logger       logging.Logger
	listener     net.Listener
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// NewGracefulServer creates a server for addr. Use ":0" for a random port.
func NewGracefulServer(addr string, handler http.Handler, logger logging.Logger) *GracefulServer {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &GracefulServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		logger:     logger.With(logging.Component("monitor")),
		shutdownCh: make(chan struct{}),
	}
}

// Listen binds the address without serving
func (gs *GracefulServer) Listen() error {
	if gs.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", gs.server.Addr, err)
	}
	gs.listener = ln
	return nil
}

// Addr returns the bound address, or the configured one before Listen
func (gs *GracefulServer) Addr() string {
	if gs.listener != nil {
		return gs.listener.Addr().String()
	}
	return gs.server.Addr
}

// Serve serves until ctx is done, then shuts down gracefully
func (gs *GracefulServer) Serve(ctx context.Context) error {
	if err := gs.Listen(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		gs.logger.Info("monitor server listening", logging.String("addr", gs.Addr()))
		if err := gs.server.Serve(gs.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		return gs.Shutdown(DefaultShutdownTimeout)
	}
}

// Shutdown stops accepting connections and waits up to timeout for
// in-flight requests. Later calls are no-ops.
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	var err error
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if shutdownErr := gs.server.Shutdown(ctx); shutdownErr != nil {
			err = shutdownErr
			gs.logger.Error("monitor server shutdown failed", logging.Error(shutdownErr))
			return
		}
		gs.logger.Info("monitor server stopped")
	})
	return err
}

// IsShuttingDown returns true if shutdown has been initiated
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}
