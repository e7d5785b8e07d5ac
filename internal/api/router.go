// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

// Package api provides the HTTP API server.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Jailtonfonseca/dockyard/internal/api/handlers"
	"github.com/Jailtonfonseca/dockyard/internal/api/middleware"
)

// RouterConfig contains configuration for setting up routes.
type RouterConfig struct {
	// CORSConfig is the CORS configuration.
	CORSConfig middleware.CORSConfig

	// RequestTimeout is the timeout for API requests.
	RequestTimeout time.Duration

	// InstallTimeout bounds template routes. Installs block on image
	// pulls, so this must cover the deploy pull timeout.
	InstallTimeout time.Duration

	// Logger for request logging.
	Logger middleware.RequestLogger
}

// DefaultRouterConfig returns a default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CORSConfig:     middleware.DefaultCORSConfig(),
		RequestTimeout: 60 * time.Second,
		InstallTimeout: 15 * time.Minute,
	}
}

// Handlers contains all API handlers. Nil fields skip their routes.
type Handlers struct {
	System   *handlers.SystemHandler
	Template *handlers.TemplateHandler
	Source   *handlers.SourceHandler
}

// NewRouter creates a chi router with all routes configured.
func NewRouter(config RouterConfig, h *Handlers) chi.Router {
	r := chi.NewRouter()

	// Request ID first so every later stage can correlate.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	if config.Logger != nil {
		r.Use(middleware.SimpleLogging(config.Logger))
	}

	r.Use(middleware.Recovery(middleware.RecoveryConfig{
		Logger:     config.Logger,
		PrintStack: true,
	}))

	r.Use(middleware.CORS(config.CORSConfig))

	// Health endpoints stay outside /api/v1 and outside the request
	// timeout so probes answer even when the API is saturated.
	if h.System != nil {
		r.Get("/health", h.System.Health)
		r.Get("/healthz", h.System.Liveness)
		r.Get("/ready", h.System.Readiness)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(config.RequestTimeout))

			if h.System != nil {
				r.Get("/system/version", h.System.Version)
			}
			if h.Source != nil {
				r.Mount("/sources", h.Source.Routes())
			}
		})

		// Template routes get a wider timeout: installs wait on image
		// pulls, which run for minutes on slow links.
		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(config.InstallTimeout))

			if h.Template != nil {
				r.Mount("/templates", h.Template.Routes())
			}
		})
	})

	return r
}
