// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/Jailtonfonseca/dockyard/internal/pkg/errors"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, NotFound("template"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Success {
		t.Error("success should be false")
	}
	if body.Error.Code != CodeNotFound {
		t.Errorf("code = %q, want %q", body.Error.Code, CodeNotFound)
	}
	if body.Error.Message != "template not found" {
		t.Errorf("message = %q", body.Error.Message)
	}
}

func TestWriteErrorWithRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	WriteErrorWithRequestID(w, Internal("boom"), "req-123")

	var body errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Error.RequestID != "req-123" {
		t.Errorf("RequestID = %q, want req-123", body.Error.RequestID)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err    *APIError
		status int
		code   ErrorCode
	}{
		{BadRequest("x"), http.StatusBadRequest, CodeBadRequest},
		{ValidationFailed("x", nil), http.StatusBadRequest, CodeValidationFailed},
		{MissingField("name"), http.StatusBadRequest, CodeValidationFailed},
		{NotFound("x"), http.StatusNotFound, CodeNotFound},
		{Conflict("x"), http.StatusConflict, CodeConflict},
		{NotInstallable("x"), http.StatusBadRequest, CodeNotInstallable},
		{Internal("x"), http.StatusInternalServerError, CodeInternal},
		{ServiceUnavailable("x"), http.StatusServiceUnavailable, CodeServiceUnavailable},
		{Timeout("x"), http.StatusGatewayTimeout, CodeTimeout},
		{DockerError("x"), http.StatusInternalServerError, CodeDockerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if tt.err.Status != tt.status {
				t.Errorf("Status = %d, want %d", tt.err.Status, tt.status)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
		})
	}
}

func TestFromAppError(t *testing.T) {
	appErr := apperrors.NewWithStatus(apperrors.CodeImageNotFound, "image not found: nope", 404).
		WithDetail("ref", "nope:latest")

	apiErr := FromAppError(appErr)
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", apiErr.Status)
	}
	if apiErr.Code != CodeImageNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, CodeImageNotFound)
	}
	if apiErr.Message != "image not found: nope" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details == nil {
		t.Error("Details should carry through")
	}
}

func TestFromAppError_ZeroStatus(t *testing.T) {
	apiErr := FromAppError(&apperrors.AppError{Code: apperrors.CodeInternal, Message: "x"})
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", apiErr.Status)
	}
}

func TestFromError(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		err := apperrors.NewConflictError("container exists")
		apiErr := FromError(err)
		if apiErr.Code != CodeConflict || apiErr.Status != http.StatusConflict {
			t.Errorf("got %d/%s", apiErr.Status, apiErr.Code)
		}
		if apiErr.Message != "container exists" {
			t.Errorf("Message = %q, service message must pass through", apiErr.Message)
		}
	})

	t.Run("api error passthrough", func(t *testing.T) {
		orig := Timeout("too slow")
		if got := FromError(orig); got != orig {
			t.Error("APIError should pass through unchanged")
		}
	})

	t.Run("plain error hides detail", func(t *testing.T) {
		apiErr := FromError(fmt.Errorf("pq: connection refused"))
		if apiErr.Code != CodeInternal {
			t.Errorf("Code = %q, want %q", apiErr.Code, CodeInternal)
		}
		if apiErr.Message == "pq: connection refused" {
			t.Error("internal error text must not leak to clients")
		}
	})

	t.Run("nil", func(t *testing.T) {
		if apiErr := FromError(nil); apiErr.Code != CodeInternal {
			t.Errorf("Code = %q", apiErr.Code)
		}
	})
}

func TestTranslateCode(t *testing.T) {
	tests := []struct {
		in   string
		want ErrorCode
	}{
		{apperrors.CodeNotFound, CodeNotFound},
		{apperrors.CodeContainerNotFound, CodeNotFound},
		{apperrors.CodeConflict, CodeConflict},
		{apperrors.CodeValidationFailed, CodeValidationFailed},
		{apperrors.CodeTimeout, CodeTimeout},
		{apperrors.CodeDockerConnection, CodeDockerConnection},
		{apperrors.CodeImagePullFailed, CodeDockerError},
		{apperrors.CodeImageNotFound, CodeImageNotFound},
		{"SOMETHING_ELSE", CodeInternal},
	}

	for _, tt := range tests {
		if got := translateCode(tt.in); got != tt.want {
			t.Errorf("translateCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
