// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

// Package status serves the daemon's observation endpoints: liveness,
// readiness, Prometheus metrics, and a JSON status summary.
package status

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/palaver-net/palaver/internal/config"
	"github.com/palaver-net/palaver/internal/logging"
)

// Snapshot is the /status payload.
type Snapshot struct {
	SessionState string    `json:"session_state"`
	Username     string    `json:"username,omitempty"`
	FeedPosts    int       `json:"feed_posts"`
	Dialogs      int       `json:"dialogs"`
	UnreadTotal  int       `json:"unread_total"`
	StartedAt    time.Time `json:"started_at"`
}

// SnapshotFunc produces the current Snapshot. Readiness is derived from
// it: the daemon is ready once the session state is known.
type SnapshotFunc func() Snapshot

// Server is the status HTTP server.
type Server struct {
	server   *http.Server
	snapshot SnapshotFunc
}

// NewServer builds the status server on cfg's host/port.
func NewServer(cfg *config.StatusConfig, snapshot SnapshotFunc) *Server {
	s := &Server{snapshot: snapshot}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router, for httptest.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run serves until Shutdown or a listener error.
func (s *Server) Run(ctx context.Context) error {
	logging.Info().Str("addr", s.server.Addr).Msg("Status server listening")
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	w.Header().Set("Content-Type", "application/json")
	// Still checking stored credentials: not ready yet.
	if snap.SessionState == "initializing" {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"initializing"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		logging.Err(err).Msg("Failed to encode status snapshot")
	}
}
