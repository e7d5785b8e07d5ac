// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/Jailtonfonseca/dockyard/internal/api/errors"
	"github.com/Jailtonfonseca/dockyard/internal/models"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
	"github.com/Jailtonfonseca/dockyard/internal/services/deploy"
	"github.com/Jailtonfonseca/dockyard/internal/templates/catalog"
)

// Catalog is the template cache surface the handler depends on.
type Catalog interface {
	List(ctx context.Context) *catalog.Snapshot
	Lookup(ctx context.Context, id string) (models.Template, bool)
	Refresh(ctx context.Context) bool
}

// Installer deploys a template as a container.
type Installer interface {
	Install(ctx context.Context, tpl models.Template) (*deploy.InstallResult, error)
}

// TemplateHandler handles template catalog endpoints.
type TemplateHandler struct {
	BaseHandler
	catalog   Catalog
	installer Installer
}

// NewTemplateHandler creates a new template handler.
func NewTemplateHandler(cat Catalog, installer Installer, log *logger.Logger) *TemplateHandler {
	return &TemplateHandler{
		BaseHandler: NewBaseHandler(log),
		catalog:     cat,
		installer:   installer,
	}
}

// Routes returns the template routes.
func (h *TemplateHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/refresh", h.Refresh)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/install", h.Install)

	return r
}

// ============================================================================
// Response types
// ============================================================================

// TemplateSummary is the list projection of a template.
type TemplateSummary struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Logo        string              `json:"logo,omitempty"`
	Type        models.TemplateType `json:"type"`
}

// TemplateListResponse is the catalog list response.
type TemplateListResponse struct {
	Templates   []TemplateSummary `json:"templates"`
	RefreshedAt *time.Time        `json:"refreshed_at,omitempty"`
}

// InstallResponse reports an install outcome.
type InstallResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ContainerName string `json:"container_name,omitempty"`
}

// RefreshResponse reports a refresh trigger outcome.
type RefreshResponse struct {
	Refreshed bool `json:"refreshed"`
	Templates int  `json:"templates"`
}

// ============================================================================
// Handlers
// ============================================================================

// List handles GET /api/v1/templates
// Returns the catalog as summaries, triggering a refresh on a cold cache.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.catalog.List(r.Context())

	resp := TemplateListResponse{
		Templates: make([]TemplateSummary, 0, len(snap.Templates)),
	}
	if !snap.RefreshedAt.IsZero() {
		t := snap.RefreshedAt
		resp.RefreshedAt = &t
	}
	for _, tpl := range snap.Templates {
		resp.Templates = append(resp.Templates, TemplateSummary{
			ID:          tpl.ID,
			Title:       tpl.Title,
			Description: tpl.Description,
			Logo:        tpl.Logo,
			Type:        tpl.Type,
		})
	}

	h.OK(w, resp)
}

// Get handles GET /api/v1/templates/{id}
// Returns the full canonical template.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := h.URLParam(r, "id")
	if id == "" {
		h.Error(w, r, apierrors.BadRequest("template id is required"))
		return
	}

	tpl, ok := h.catalog.Lookup(r.Context(), id)
	if !ok {
		h.Error(w, r, apierrors.NotFound("template"))
		return
	}

	h.OK(w, tpl)
}

// Install handles POST /api/v1/templates/{id}/install
// Deploys an installable template as a container.
func (h *TemplateHandler) Install(w http.ResponseWriter, r *http.Request) {
	id := h.URLParam(r, "id")
	if id == "" {
		h.Error(w, r, apierrors.BadRequest("template id is required"))
		return
	}

	tpl, ok := h.catalog.Lookup(r.Context(), id)
	if !ok {
		h.Error(w, r, apierrors.NotFound("template"))
		return
	}
	if !tpl.Installable() {
		h.Error(w, r, apierrors.NotInstallable("template is informational and cannot be installed"))
		return
	}

	res, err := h.installer.Install(r.Context(), tpl)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, InstallResponse{
		Success:       true,
		Message:       res.Message,
		ContainerName: res.ContainerName,
	})
}

// Refresh handles POST /api/v1/templates/refresh
// Triggers a synchronous catalog refresh. When another refresh is
// already in flight the call reports refreshed=false without waiting.
func (h *TemplateHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshed := h.catalog.Refresh(r.Context())
	snap := h.catalog.List(r.Context())

	h.OK(w, RefreshResponse{
		Refreshed: refreshed,
		Templates: len(snap.Templates),
	})
}
