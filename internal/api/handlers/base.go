// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

// Package handlers provides HTTP handlers for the API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/Jailtonfonseca/dockyard/internal/api/errors"
	"github.com/Jailtonfonseca/dockyard/internal/api/middleware"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

// maxRequestBody bounds request bodies parsed by ParseJSON.
const maxRequestBody = 1 << 20 // 1 MB

// BaseHandler provides common helpers for all handlers.
type BaseHandler struct {
	logger *logger.Logger
}

// NewBaseHandler creates a new base handler.
func NewBaseHandler(log *logger.Logger) BaseHandler {
	if log == nil {
		log = logger.Nop()
	}
	return BaseHandler{logger: log}
}

// successResponse is the JSON envelope for success responses.
type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// JSON writes a JSON response with the given status code.
func (h *BaseHandler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// OK writes a 200 response wrapping data in the success envelope.
func (h *BaseHandler) OK(w http.ResponseWriter, data any) {
	h.JSON(w, http.StatusOK, successResponse{Success: true, Data: data})
}

// Created writes a 201 response wrapping data in the success envelope.
func (h *BaseHandler) Created(w http.ResponseWriter, data any) {
	h.JSON(w, http.StatusCreated, successResponse{Success: true, Data: data})
}

// NoContent writes a 204 response.
func (h *BaseHandler) NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an API error response with the request ID attached.
func (h *BaseHandler) Error(w http.ResponseWriter, r *http.Request, err *apierrors.APIError) {
	apierrors.WriteErrorWithRequestID(w, err, middleware.GetRequestID(r.Context()))
}

// HandleError converts any error to an API error and writes it. Server
// errors are logged with the request ID for correlation.
func (h *BaseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierrors.FromError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"error", err,
			"status", apiErr.Status,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}
	h.Error(w, r, apiErr)
}

// ParseJSON decodes the request body into dst, rejecting unknown fields
// and oversized bodies.
func (h *BaseHandler) ParseJSON(r *http.Request, dst any) *apierrors.APIError {
	if r.Body == nil {
		return apierrors.BadRequest("request body is required")
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return apierrors.BadRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// URLParam returns a chi URL parameter.
func (h *BaseHandler) URLParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

// QueryParam returns a query parameter.
func (h *BaseHandler) QueryParam(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}
