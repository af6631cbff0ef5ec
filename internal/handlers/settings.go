package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prismtech.dev/internal/models"
	"prismtech.dev/internal/services"
)

// SettingsHandler handles the site settings endpoints
type SettingsHandler struct {
	settings *services.SettingsService
	logger   *zap.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(ss *services.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: ss, logger: logger}
}

// Mount registers /settings
func (h *SettingsHandler) Mount(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Get("/settings", h.Get)
	r.With(auth).Put("/settings", h.Replace)
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// Replace handles PUT /api/settings
func (h *SettingsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var in models.Settings
	if err := decodeJSON(r, &in); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	s, err := h.settings.Replace(r.Context(), in)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}
