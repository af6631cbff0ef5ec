package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prismtech.dev/internal/services"
)

// AdminHandler serves the dashboard
type AdminHandler struct {
	dashboard *services.DashboardService
	logger    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(ds *services.DashboardService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{dashboard: ds, logger: logger}
}

// Mount registers /admin; every route requires auth
func (h *AdminHandler) Mount(r chi.Router, auth func(http.Handler) http.Handler) {
	r.With(auth).Get("/admin/stats", h.Stats)
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.dashboard.Stats(r.Context())
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}
