// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

func TestHealth_NoCheckers(t *testing.T) {
	h := NewSystemHandler("1.0.0", "abc123", logger.Nop())

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Status != "healthy" || resp.Version != "1.0.0" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHealth_UnhealthyComponent(t *testing.T) {
	h := NewSystemHandler("1.0.0", "", logger.Nop())
	h.RegisterHealthChecker("docker", DockerHealthChecker(func(ctx context.Context) error {
		return fmt.Errorf("connection refused")
	}))

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("status = %q", resp.Status)
	}
	if cs := resp.Components["docker"]; cs == nil || cs.Message != "connection refused" {
		t.Errorf("docker component = %+v", cs)
	}
}

func TestLiveness(t *testing.T) {
	h := NewSystemHandler("1.0.0", "", logger.Nop())

	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestReadiness(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		h := NewSystemHandler("1.0.0", "", logger.Nop())
		h.RegisterHealthChecker("docker", DockerHealthChecker(func(ctx context.Context) error {
			return nil
		}))

		w := httptest.NewRecorder()
		h.Readiness(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("not ready", func(t *testing.T) {
		h := NewSystemHandler("1.0.0", "", logger.Nop())
		h.RegisterHealthChecker("docker", DockerHealthChecker(func(ctx context.Context) error {
			return fmt.Errorf("daemon down")
		}))

		w := httptest.NewRecorder()
		h.Readiness(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", w.Code)
		}
	})
}

func TestCatalogHealthChecker(t *testing.T) {
	if st := CatalogHealthChecker(func() bool { return true })(context.Background()); st.Status != "healthy" {
		t.Errorf("populated cache status = %q", st.Status)
	}
	if st := CatalogHealthChecker(func() bool { return false })(context.Background()); st.Status != "degraded" {
		t.Errorf("empty cache status = %q", st.Status)
	}
}

func TestVersion(t *testing.T) {
	h := NewSystemHandler("1.2.3", "deadbeef", logger.Nop())

	w := httptest.NewRecorder()
	h.Version(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	var resp VersionResponse
	decodeData(t, w.Body.Bytes(), &resp)
	if resp.Version != "1.2.3" || resp.Commit != "deadbeef" {
		t.Errorf("response = %+v", resp)
	}
	if resp.GoVersion == "" {
		t.Error("go_version should be set")
	}
}
