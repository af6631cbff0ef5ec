package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prismtech.dev/internal/models"
	"prismtech.dev/internal/services"
)

// ProjectHandler handles project-related endpoints
type ProjectHandler struct {
	*CollectionHandler[models.Project, *models.Project]
}

// NewProjectHandler creates a new ProjectHandler. Projects can be
// featured and moved between statuses in bulk.
func NewProjectHandler(ps *services.ProjectStore, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{NewCollectionHandler(ps, logger, "featured", "status")}
}

// Mount registers the collection routes plus /projects/options
func (h *ProjectHandler) Mount(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/"+h.store.Name(), func(r chi.Router) {
		r.Get("/options", h.Options)
		h.Routes(r)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			h.WriteRoutes(r)
		})
	})
}

// Options handles GET /api/projects/options
func (h *ProjectHandler) Options(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{
		"categories": models.ProjectCategories,
		"statuses":   models.ProjectStatuses,
	})
}
