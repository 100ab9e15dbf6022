// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package control

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/vodplayer/internal/playback/ports"
)

// Server wires the control API around the session registry.
type Server struct {
	Backend        ports.Backend
	Entitlements   ports.Entitlements
	AdProviderFor  func(titleID string) ports.AdProvider
	Engines        ports.EngineFactory
	HeartbeatEvery time.Duration

	// TickEvery sets the headless content clock resolution; zero picks
	// the driver default.
	TickEvery time.Duration

	RateLimitRPM int

	registry *Registry
}

// Router builds the chi router with the canonical middleware stack:
// recoverer, request ID, request log, rate limit.
func (s *Server) Router() http.Handler {
	if s.registry == nil {
		s.registry = NewRegistry()
	}
	r := chi.NewRouter()
	r.Use(recoverer)
	r.Use(requestID)
	r.Use(requestLog)
	if s.RateLimitRPM > 0 {
		r.Use(httprate.Limit(
			s.RateLimitRPM,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				writeError(w, http.StatusTooManyRequests, "rate_limit_exceeded")
			}),
		))
	}

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/", s.handleListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/stats", s.handleStats)
			r.Post("/controls", s.handleControls)
		})
	})
	return r
}

// Shutdown tears down every live session.
func (s *Server) Shutdown(ctx context.Context) {
	if s.registry != nil {
		s.registry.CloseAll(ctx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": len(s.registry.List()),
	})
}
