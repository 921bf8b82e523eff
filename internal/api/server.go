// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/serenity/internal/identity/access"
	"github.com/taibuivan/serenity/internal/identity/auth"
	"github.com/taibuivan/serenity/internal/platform/config"
	"github.com/taibuivan/serenity/internal/platform/constants"
	"github.com/taibuivan/serenity/internal/platform/metrics"
	"github.com/taibuivan/serenity/internal/platform/middleware"
	"github.com/taibuivan/serenity/internal/progression"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles login, logout, the current identity and provisioning.
	Auth *auth.Handler

	// Access handles permission grants between staff members.
	Access *access.Handler

	// Progression records activities and reports streaks and badges.
	Progression *progression.Handler
}

// Dependencies are the cross-cutting collaborators the route guards need.
type Dependencies struct {
	Sessions    middleware.SessionResolver
	Permissions middleware.PermissionChecker

	// Metrics may be nil, in which case /metrics is not served.
	Metrics *metrics.Metrics
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. ctx bounds the background rate limiter cleanup.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, deps Dependencies, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Measure(deps.Metrics))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.CORS(cfg, cfg.ExtraOrigins))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health endpoints for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	authenticate := middleware.Authenticate(deps.Sessions)
	loginLimiter := middleware.NewRateLimiter(context, constants.LoginRateLimitRPS, constants.LoginRateLimitBurst)

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes(authenticate, loginLimiter.Handler))
		api.Mount("/admin", h.Auth.AdminRoutes(authenticate, deps.Permissions))

		api.With(
			authenticate,
			middleware.RequireAuth,
			middleware.RequirePermission(deps.Permissions, access.PermissionsGrant),
		).Mount("/admin/permissions", h.Access.Routes())

		api.Mount("/", h.Progression.Routes(authenticate, deps.Permissions))
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the root router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
