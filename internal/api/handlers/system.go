// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package handlers

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

// SystemHandler handles health and version endpoints.
type SystemHandler struct {
	BaseHandler
	version        string
	commit         string
	startedAt      time.Time
	mu             sync.RWMutex
	healthCheckers map[string]HealthChecker
}

// HealthChecker checks the health of one component.
type HealthChecker func(ctx context.Context) *HealthStatus

// NewSystemHandler creates a new system handler.
func NewSystemHandler(version, commit string, log *logger.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler:    NewBaseHandler(log),
		version:        version,
		commit:         commit,
		startedAt:      time.Now(),
		healthCheckers: make(map[string]HealthChecker),
	}
}

// RegisterHealthChecker registers a health checker for a component.
func (h *SystemHandler) RegisterHealthChecker(name string, checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.healthCheckers[name] = checker
}

// ============================================================================
// Response types
// ============================================================================

// HealthResponse is the health check response.
type HealthResponse struct {
	Status     string                   `json:"status"`
	Version    string                   `json:"version"`
	Uptime     int64                    `json:"uptime_seconds"`
	Components map[string]*HealthStatus `json:"components,omitempty"`
}

// HealthStatus is the health of one component.
type HealthStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Latency   int64  `json:"latency_ms,omitempty"`
	CheckedAt string `json:"checked_at,omitempty"`
}

// VersionResponse is the version response.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
}

// ============================================================================
// Handlers
// ============================================================================

// Health handles GET /health
// Runs all registered checkers and reports per-component status.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := &HealthResponse{
		Status:     "healthy",
		Version:    h.version,
		Uptime:     int64(time.Since(h.startedAt).Seconds()),
		Components: h.runCheckers(r.Context(), 5*time.Second),
	}

	for _, status := range resp.Components {
		if status.Status == "unhealthy" {
			resp.Status = "unhealthy"
		}
	}

	code := http.StatusOK
	if resp.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	h.JSON(w, code, resp)
}

// Liveness handles GET /healthz
func (h *SystemHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	h.OK(w, map[string]string{"status": "alive"})
}

// Readiness handles GET /ready
// Any unhealthy component means not ready.
func (h *SystemHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	components := h.runCheckers(r.Context(), 3*time.Second)

	status := "ready"
	for name, cs := range components {
		if cs.Status == "unhealthy" {
			status = "not_ready"
			h.logger.Warn("readiness check failed", "component", name, "message", cs.Message)
		}
	}

	resp := map[string]any{"status": status, "components": components}
	if status == "ready" {
		h.OK(w, resp)
	} else {
		h.JSON(w, http.StatusServiceUnavailable, resp)
	}
}

// Version handles GET /api/v1/system/version
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	h.OK(w, VersionResponse{
		Version:   h.version,
		Commit:    h.commit,
		GoVersion: runtime.Version(),
	})
}

// runCheckers runs all registered checkers in parallel under a timeout.
func (h *SystemHandler) runCheckers(ctx context.Context, timeout time.Duration) map[string]*HealthStatus {
	h.mu.RLock()
	checkers := make(map[string]HealthChecker, len(h.healthCheckers))
	for name, checker := range h.healthCheckers {
		checkers[name] = checker
	}
	h.mu.RUnlock()

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out := make(map[string]*HealthStatus, len(checkers))

	var wg sync.WaitGroup
	var mu sync.Mutex
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()

			start := time.Now()
			status := checker(checkCtx)
			if status == nil {
				status = &HealthStatus{Status: "unknown"}
			}
			status.Latency = time.Since(start).Milliseconds()
			status.CheckedAt = time.Now().UTC().Format(time.RFC3339)

			mu.Lock()
			out[name] = status
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	return out
}

// DockerHealthChecker creates a health checker from a daemon ping.
func DockerHealthChecker(pingFn func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) *HealthStatus {
		start := time.Now()
		err := pingFn(ctx)
		latency := time.Since(start).Milliseconds()

		if err != nil {
			return &HealthStatus{
				Status:  "unhealthy",
				Message: err.Error(),
				Latency: latency,
			}
		}
		return &HealthStatus{
			Status:  "healthy",
			Latency: latency,
		}
	}
}

// CatalogHealthChecker reports whether the template cache has been
// populated. An empty cache is degraded, not unhealthy: the service can
// still serve and refresh.
func CatalogHealthChecker(populated func() bool) HealthChecker {
	return func(_ context.Context) *HealthStatus {
		if populated() {
			return &HealthStatus{Status: "healthy"}
		}
		return &HealthStatus{
			Status:  "degraded",
			Message: "template catalog not yet populated",
		}
	}
}
