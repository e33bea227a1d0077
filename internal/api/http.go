// SPDX-License-Identifier: MIT

// Package api provides the HTTP server for the rescue mission daemon.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/NEPXiss/rescue-mission/internal/api/middleware"
	"github.com/NEPXiss/rescue-mission/internal/cache"
	"github.com/NEPXiss/rescue-mission/internal/health"
	"github.com/NEPXiss/rescue-mission/internal/history"
)

// Options configure the API server surface.
type Options struct {
	// APIToken guards mutating endpoints; empty disables auth.
	APIToken string
	// RateLimitPerMinute caps requests per client IP; 0 disables.
	RateLimitPerMinute int
	// TracingEnabled wraps the router in OTel HTTP instrumentation.
	TracingEnabled bool
	// CacheTTL bounds status cache staleness.
	CacheTTL time.Duration
}

// Server exposes mission management over HTTP.
type Server struct {
	missions *Manager
	cache    cache.Cache
	cacheTTL time.Duration
	history  *history.Archive
	healthMg *health.Manager
	apiToken string
	opts     Options
}

// NewServer wires the API server. history may be nil.
func NewServer(missions *Manager, statusCache cache.Cache, archive *history.Archive, healthMg *health.Manager, opts Options) *Server {
	if statusCache == nil {
		statusCache = cache.NewNoOpCache()
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 2 * time.Second
	}
	return &Server{
		missions: missions,
		cache:    statusCache,
		cacheTTL: cacheTTL,
		history:  archive,
		healthMg: healthMg,
		apiToken: opts.APIToken,
		opts:     opts,
	}
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(s.opts.RateLimitPerMinute))

	r.Get("/healthz", s.healthMg.ServeHealth)
	r.Get("/readyz", s.healthMg.ServeReady)

	r.Route("/api", func(r chi.Router) {
		r.Route("/missions", func(r chi.Router) {
			r.With(s.tokenMiddleware).Post("/", s.handleCreateMission)
			r.Get("/", s.handleListMissions)

			r.Route("/{missionID}", func(r chi.Router) {
				r.Get("/", s.handleGetMission)
				r.With(s.tokenMiddleware).Post("/advance", s.handleAdvanceMission)
				r.With(s.tokenMiddleware).Post("/run", s.handleRunMission)
				r.Get("/report", s.handleMissionReport)
				r.Get("/frames/{seq}", s.handleMissionFrame)
				r.Get("/map.png", s.handleMissionMapPNG)
				r.Get("/animation.gif", s.handleMissionAnimation)
				r.With(s.tokenMiddleware).Delete("/", s.handleDeleteMission)
			})
		})

		r.Get("/history", s.handleHistory)
		r.Get("/history/stats", s.handleHistoryStats)
		r.Get("/cache/stats", s.handleCacheStats)
	})

	var handler http.Handler = r
	if s.opts.TracingEnabled {
		handler = otelhttp.NewHandler(handler, "rescue-api")
	}
	return handler
}

func (s *Server) tokenMiddleware(next http.Handler) http.Handler {
	return s.requireToken(next)
}
