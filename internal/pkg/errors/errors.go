// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

// Package errors provides application error types with machine-readable
// codes and HTTP status mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in API responses.
const (
	CodeInternal         = "INTERNAL"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeTimeout          = "TIMEOUT"
	CodeUnavailable      = "UNAVAILABLE"

	CodeDockerConnection  = "DOCKER_CONNECTION"
	CodeDockerError       = "DOCKER_ERROR"
	CodeImageNotFound     = "IMAGE_NOT_FOUND"
	CodeImagePullFailed   = "IMAGE_PULL_FAILED"
	CodeContainerNotFound = "CONTAINER_NOT_FOUND"
)

// Sentinel errors for common conditions.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal error")
	ErrTimeout            = errors.New("timeout")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// AppError is the application error type. It carries a machine-readable
// code, a human message, an HTTP status for the API layer, optional
// structured details, and an optional wrapped cause.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the given code and message.
// The HTTP status defaults to 500; use NewWithStatus or WithHTTPStatus
// for anything else.
func New(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Newf creates an AppError with a formatted message.
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithStatus creates an AppError with an explicit HTTP status.
func NewWithStatus(code, message string, status int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// Wrap wraps an existing error into an AppError.
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WrapWithStatus wraps an existing error with an explicit HTTP status.
func WrapWithStatus(err error, code, message string, status int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Err:        err,
	}
}

// WithDetails merges the given map into the error's details.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{}, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail adds a single detail entry.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithHTTPStatus overrides the HTTP status.
func (e *AppError) WithHTTPStatus(status int) *AppError {
	e.HTTPStatus = status
	return e
}

// ============================================================================
// Convenience constructors
// ============================================================================

// NotFound creates a 404 error for the named resource.
func NotFound(resource string) *AppError {
	return NewWithStatus(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// AlreadyExists creates a 409 error for the named resource.
func AlreadyExists(resource string) *AppError {
	return NewWithStatus(CodeConflict, fmt.Sprintf("%s already exists", resource), http.StatusConflict)
}

// InvalidInput creates a 400 error with the given message.
func InvalidInput(message string) *AppError {
	return NewWithStatus(CodeBadRequest, message, http.StatusBadRequest)
}

// Internal creates a 500 error with the given message.
func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

// Timeout creates a 504 error with the given message.
func Timeout(message string) *AppError {
	return NewWithStatus(CodeTimeout, message, http.StatusGatewayTimeout)
}

// ValidationFailed creates a 400 error carrying per-field messages.
func ValidationFailed(fields map[string]string) *AppError {
	ae := NewWithStatus(CodeValidationFailed, "validation failed", http.StatusBadRequest)
	for k, v := range fields {
		ae.WithDetail(k, v)
	}
	return ae
}

// ============================================================================
// Typed errors
// ============================================================================

// The typed wrappers embed *AppError. Each declares its own Unwrap
// returning the embedded AppError; the promoted method would unwrap the
// AppError's cause instead, hiding the AppError itself from errors.As.

// NotFoundError is a typed wrapper for missing-resource errors.
type NotFoundError struct{ *AppError }

// Unwrap exposes the embedded AppError to errors.As and errors.Is.
func (e *NotFoundError) Unwrap() error { return e.AppError }

// NewNotFoundError creates a NotFoundError for the named resource.
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{NotFound(resource)}
}

// ConflictError is a typed wrapper for conflict errors.
type ConflictError struct{ *AppError }

// Unwrap exposes the embedded AppError to errors.As and errors.Is.
func (e *ConflictError) Unwrap() error { return e.AppError }

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{NewWithStatus(CodeConflict, message, http.StatusConflict)}
}

// AlreadyExistsError is a typed wrapper for duplicate-resource errors.
type AlreadyExistsError struct{ *AppError }

// Unwrap exposes the embedded AppError to errors.As and errors.Is.
func (e *AlreadyExistsError) Unwrap() error { return e.AppError }

// NewAlreadyExistsError creates an AlreadyExistsError for the named resource.
func NewAlreadyExistsError(resource string) *AlreadyExistsError {
	return &AlreadyExistsError{AlreadyExists(resource)}
}

// ValidationError is a typed wrapper for input validation errors.
type ValidationError struct{ *AppError }

// Unwrap exposes the embedded AppError to errors.As and errors.Is.
func (e *ValidationError) Unwrap() error { return e.AppError }

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{NewWithStatus(CodeValidationFailed, message, http.StatusBadRequest)}
}

// InternalError is a typed wrapper for internal errors.
type InternalError struct{ *AppError }

// Unwrap exposes the embedded AppError to errors.As and errors.Is.
func (e *InternalError) Unwrap() error { return e.AppError }

// NewInternalError creates an InternalError with the given message.
func NewInternalError(message string) *InternalError {
	return &InternalError{Internal(message)}
}

// ============================================================================
// Classification helpers
// ============================================================================

// IsNotFoundError reports whether err is a not-found condition in any of
// its representations (typed, AppError code, or sentinel).
func IsNotFoundError(err error) bool {
	var typed *NotFoundError
	if errors.As(err, &typed) {
		return true
	}
	if ae, ok := GetAppError(err); ok && ae.Code == CodeNotFound {
		return true
	}
	return errors.Is(err, ErrNotFound)
}

// IsConflictError reports whether err is a conflict condition.
func IsConflictError(err error) bool {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return true
	}
	var aee *AlreadyExistsError
	if errors.As(err, &aee) {
		return true
	}
	if ae, ok := GetAppError(err); ok && ae.Code == CodeConflict {
		return true
	}
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrAlreadyExists)
}

// IsValidationError reports whether err is an input validation condition.
func IsValidationError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	if ae, ok := GetAppError(err); ok && (ae.Code == CodeValidationFailed || ae.Code == CodeBadRequest) {
		return true
	}
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidInput)
}

// IsTimeoutError reports whether err is a timeout condition.
func IsTimeoutError(err error) bool {
	if ae, ok := GetAppError(err); ok && ae.Code == CodeTimeout {
		return true
	}
	return errors.Is(err, ErrTimeout)
}

// GetAppError extracts an AppError from anywhere in err's chain.
func GetAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// HTTPStatusCode maps any error to an HTTP status code. AppErrors carry
// their own status; sentinels have fixed mappings; everything else is 500.
func HTTPStatusCode(err error) int {
	if ae, ok := GetAppError(err); ok {
		return ae.HTTPStatus
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Is delegates to errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As delegates to errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
