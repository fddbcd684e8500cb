// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package httpdebug is the optional introspection server: /metrics
// (prometheus) and /debug/status (JSON scheduler/registry snapshot).
// Started only when ISOFUZZ_METRICS_ADDR is set; never required for core
// operation and never calls into the scheduler's blocking path.
package httpdebug

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/KamiliArsyad/libisofuzz/internal/metrics"
	"github.com/KamiliArsyad/libisofuzz/internal/registry"
	"github.com/KamiliArsyad/libisofuzz/internal/scheduler"
)

// Status is the /debug/status JSON payload.
type Status struct {
	EpochState  string `json:"epoch_state"`
	QueueDepth  int    `json:"queue_depth"`
	LiveTxns    int    `json:"live_transactions"`
}

// Server is the optional debug HTTP server.
type Server struct {
	httpServer *http.Server
}

// New builds (but does not start) a debug server bound to addr.
func New(addr string, collector *metrics.Collector, sched *scheduler.Scheduler, reg *registry.Registry) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))
	r.Get("/debug/status", func(w http.ResponseWriter, _ *http.Request) {
		status := Status{
			EpochState: sched.State().String(),
			QueueDepth: sched.QueueDepth(),
			LiveTxns:   reg.Len(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(status)
	})

	return &Server{httpServer: &http.Server{Addr: addr, Handler: r}}
}

// Start runs the server in a background goroutine. Bind failures are
// logged, not returned: the debug server is diagnostics, not core
// functionality (spec §7's "trace degradation over host-process failure"
// philosophy applies here too).
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", s.httpServer.Addr).Msg("libisofuzz debug server stopped")
		}
	}()
}

// Stop gracefully shuts the server down with a short deadline.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.httpServer.Shutdown(ctx)
}
