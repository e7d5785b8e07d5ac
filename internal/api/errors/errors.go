// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

// Package errors provides API error types and helpers for translating
// service errors into HTTP responses.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/Jailtonfonseca/dockyard/internal/pkg/errors"
)

// ErrorCode represents a machine-readable API error code.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
	CodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeTimeout            ErrorCode = "TIMEOUT"
	CodeDockerError        ErrorCode = "DOCKER_ERROR"
	CodeDockerConnection   ErrorCode = "DOCKER_CONNECTION"
	CodeImageNotFound      ErrorCode = "IMAGE_NOT_FOUND"
	CodeNotInstallable     ErrorCode = "NOT_INSTALLABLE"
)

// APIError represents an error returned by the API.
type APIError struct {
	Status    int       `json:"-"`
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// errorResponse is the JSON envelope for error responses.
type errorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// WriteError writes an API error as a JSON response.
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)
	_ = json.NewEncoder(w).Encode(errorResponse{Success: false, Error: err})
}

// WriteErrorWithRequestID writes an API error with a request ID attached.
func WriteErrorWithRequestID(w http.ResponseWriter, err *APIError, requestID string) {
	err.RequestID = requestID
	WriteError(w, err)
}

// NewError creates a new APIError.
func NewError(status int, code ErrorCode, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// NewErrorWithDetails creates a new APIError with details.
func NewErrorWithDetails(status int, code ErrorCode, message string, details any) *APIError {
	return &APIError{Status: status, Code: code, Message: message, Details: details}
}

// ============================================================================
// Constructors
// ============================================================================

// BadRequest creates a 400 error.
func BadRequest(message string) *APIError {
	return NewError(http.StatusBadRequest, CodeBadRequest, message)
}

// ValidationFailed creates a 400 error with per-field details.
func ValidationFailed(message string, details any) *APIError {
	return NewErrorWithDetails(http.StatusBadRequest, CodeValidationFailed, message, details)
}

// MissingField creates a 400 error for a missing required field.
func MissingField(field string) *APIError {
	return NewErrorWithDetails(http.StatusBadRequest, CodeValidationFailed,
		fmt.Sprintf("missing required field: %s", field),
		map[string]string{"field": field})
}

// NotFound creates a 404 error.
func NotFound(resource string) *APIError {
	return NewError(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// Conflict creates a 409 error.
func Conflict(message string) *APIError {
	return NewError(http.StatusConflict, CodeConflict, message)
}

// NotInstallable creates a 400 error for templates that cannot be deployed.
func NotInstallable(message string) *APIError {
	return NewError(http.StatusBadRequest, CodeNotInstallable, message)
}

// Internal creates a 500 error.
func Internal(message string) *APIError {
	return NewError(http.StatusInternalServerError, CodeInternal, message)
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(message string) *APIError {
	return NewError(http.StatusServiceUnavailable, CodeServiceUnavailable, message)
}

// Timeout creates a 504 error.
func Timeout(message string) *APIError {
	return NewError(http.StatusGatewayTimeout, CodeTimeout, message)
}

// DockerError creates a 500 error for Docker operation failures.
func DockerError(message string) *APIError {
	return NewError(http.StatusInternalServerError, CodeDockerError, message)
}

// ============================================================================
// Conversion from service errors
// ============================================================================

// FromAppError converts an internal AppError to an APIError, preserving
// the service-layer code and HTTP status.
func FromAppError(err *apperrors.AppError) *APIError {
	if err == nil {
		return Internal("unknown error")
	}

	apiErr := &APIError{
		Status:  err.HTTPStatus,
		Code:    translateCode(err.Code),
		Message: err.Message,
	}
	if apiErr.Status == 0 {
		apiErr.Status = http.StatusInternalServerError
	}
	if len(err.Details) > 0 {
		apiErr.Details = err.Details
	}
	return apiErr
}

// FromError converts any error to an APIError. AppErrors keep their code
// and status; anything else becomes an opaque 500.
func FromError(err error) *APIError {
	if err == nil {
		return Internal("unknown error")
	}
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	if appErr, ok := apperrors.GetAppError(err); ok {
		return FromAppError(appErr)
	}
	// Do not leak internal error text to clients.
	return Internal("an internal error occurred")
}

// translateCode maps service error codes onto API error codes.
func translateCode(code string) ErrorCode {
	switch code {
	case apperrors.CodeNotFound, apperrors.CodeContainerNotFound:
		return CodeNotFound
	case apperrors.CodeConflict:
		return CodeConflict
	case apperrors.CodeBadRequest:
		return CodeBadRequest
	case apperrors.CodeValidationFailed:
		return CodeValidationFailed
	case apperrors.CodeTimeout:
		return CodeTimeout
	case apperrors.CodeUnavailable:
		return CodeServiceUnavailable
	case apperrors.CodeDockerConnection:
		return CodeDockerConnection
	case apperrors.CodeDockerError, apperrors.CodeImagePullFailed:
		return CodeDockerError
	case apperrors.CodeImageNotFound:
		return CodeImageNotFound
	default:
		return CodeInternal
	}
}
