// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/Jailtonfonseca/dockyard/internal/api/errors"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

// SourceStore persists the user-configured template source list.
type SourceStore interface {
	Get() []string
	Save(sources []string) error
}

// SourceHandler handles template source configuration endpoints.
type SourceHandler struct {
	BaseHandler
	store   SourceStore
	catalog Catalog
}

// NewSourceHandler creates a new source handler.
func NewSourceHandler(store SourceStore, cat Catalog, log *logger.Logger) *SourceHandler {
	return &SourceHandler{
		BaseHandler: NewBaseHandler(log),
		store:       store,
		catalog:     cat,
	}
}

// Routes returns the source routes.
func (h *SourceHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Get)
	r.Put("/", h.Update)

	return r
}

// SourcesResponse is the source list response.
type SourcesResponse struct {
	Sources []string `json:"sources"`
}

// UpdateSourcesRequest is the PUT body for replacing the source list.
type UpdateSourcesRequest struct {
	Sources []string `json:"sources"`
}

// UpdateSourcesResponse reports the saved list and the outcome of the
// synchronous refresh that follows the save.
type UpdateSourcesResponse struct {
	Sources   []string `json:"sources"`
	Refreshed bool     `json:"refreshed"`
	Templates int      `json:"templates"`
}

// Get handles GET /api/v1/sources
// Returns the persisted user source list. An empty list means the
// built-in defaults are in effect.
func (h *SourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	sources := h.store.Get()
	if sources == nil {
		sources = []string{}
	}
	h.OK(w, SourcesResponse{Sources: sources})
}

// Update handles PUT /api/v1/sources
// Replaces the source list, then refreshes the catalog synchronously so
// the caller sees the effect of the change.
func (h *SourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSourcesRequest
	if apiErr := h.ParseJSON(r, &req); apiErr != nil {
		h.Error(w, r, apiErr)
		return
	}
	if req.Sources == nil {
		h.Error(w, r, apierrors.MissingField("sources"))
		return
	}

	if err := h.store.Save(req.Sources); err != nil {
		h.HandleError(w, r, err)
		return
	}

	refreshed := h.catalog.Refresh(r.Context())
	snap := h.catalog.List(r.Context())
	h.logger.Info("template sources replaced",
		"sources", len(req.Sources), "refreshed", refreshed, "templates", len(snap.Templates))

	h.OK(w, UpdateSourcesResponse{
		Sources:   req.Sources,
		Refreshed: refreshed,
		Templates: len(snap.Templates),
	})
}
