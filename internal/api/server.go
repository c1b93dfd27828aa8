// Copyright (c) 2026 Mangaden. All rights reserved.
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

	"github.com/taibuivan/mangaden/internal/chapter"
	"github.com/taibuivan/mangaden/internal/follow"
	"github.com/taibuivan/mangaden/internal/manga"
	"github.com/taibuivan/mangaden/internal/platform/config"
	"github.com/taibuivan/mangaden/internal/platform/constants"
	"github.com/taibuivan/mangaden/internal/platform/middleware"
	"github.com/taibuivan/mangaden/internal/reference"
	"github.com/taibuivan/mangaden/internal/users/auth"
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
//
// # Usage
//
// New domains add a field here. No other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler. Always returns 200 if the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. Returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles account and session routes (register, login, profile).
	Auth *auth.Handler

	// Manga handles the catalogue and discovery surface.
	Manga *manga.Handler

	// Chapter handles chapter reading, uploads, and moderation.
	Chapter *chapter.Handler

	// Follow handles reading-list subscriptions.
	Follow *follow.Handler

	// Reference manages the author and genre taxonomies.
	Reference *reference.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Static Assets
	// Chapter page images served straight off the local storage disk.
	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StorageBaseDir)))
	r.Get("/static/*", fileServer.ServeHTTP)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes(middleware.AuthRateLimit(context)))

		api.Mount("/manga", h.Manga.Routes())
		api.Route("/manga/{slug}", func(sub chi.Router) {
			sub.Mount("/chapters", h.Chapter.MangaRoutes())
			sub.Mount("/follow", h.Follow.ToggleRoutes())
		})

		api.Mount("/chapters", h.Chapter.ModerationRoutes())
		api.Mount("/users/me/follows", h.Follow.ListRoutes())

		api.Mount("/authors", h.Reference.Routes(reference.KindAuthor))
		api.Mount("/genres", h.Reference.Routes(reference.KindGenre))
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

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
