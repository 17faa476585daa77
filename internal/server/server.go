/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mustafasahin0/devicestats/internal/collector"
	"github.com/mustafasahin0/devicestats/internal/config"
	"github.com/mustafasahin0/devicestats/pkg/metrics"
	"github.com/mustafasahin0/devicestats/pkg/version"
)

// Snapshotter produces a fresh host snapshot per call.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*metrics.Snapshot, error)
}

// Server serves host snapshots over HTTP.
type Server struct {
	snapshots Snapshotter
	config    config.ServerConfig
	limiter   *rate.Limiter
	logger    *slog.Logger
	router    *mux.Router
}

// NewServer creates a new server and sets up its routes.
func NewServer(cfg config.ServerConfig, snapshots Snapshotter, logger *slog.Logger) *Server {
	s := &Server{
		snapshots: snapshots,
		config:    cfg,
		logger:    logger,
		router:    mux.NewRouter(),
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Recovery sits inside metrics so a recovered 500 is still counted.
	s.router.Use(requestIDMiddleware)
	s.router.Use(metricsMiddleware)
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(corsMiddleware)
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	if s.limiter != nil {
		api.Use(s.rateLimitMiddleware)
	}
	api.HandleFunc("/stats", s.handleGetStats).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/version", s.handleGetVersion).Methods(http.MethodGet, http.MethodOptions)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("HTTP server listening", "address", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// handleGetStats returns a freshly assembled snapshot.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Snapshot(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, collector.ErrHostUnavailable):
			s.logger.Error("Host metrics unavailable", "request_id", requestIDFrom(r.Context()))
			s.writeError(w, r, "Host metrics unavailable", http.StatusServiceUnavailable)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			s.logger.Debug("Snapshot request abandoned", "error", err)
			s.writeError(w, r, "Snapshot collection cancelled", http.StatusServiceUnavailable)
		default:
			s.logger.Error("Failed to collect snapshot", "error", err)
			s.writeError(w, r, "Failed to collect snapshot", http.StatusInternalServerError)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, snap)
}

// handleGetVersion returns version information from the version package.
func (s *Server) handleGetVersion(w http.ResponseWriter, _ *http.Request) {
	versionInfo := map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.Date,
	}
	s.writeJSON(w, http.StatusOK, versionInfo)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// setNoCache marks a response as a live reading that must not be cached.
func setNoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	setNoCache(w)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to write JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, message string, status int) {
	s.writeJSON(w, status, map[string]any{
		"error":     message,
		"requestId": requestIDFrom(r.Context()),
		"timestamp": time.Now().UTC(),
	})
}
