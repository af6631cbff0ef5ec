package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prismtech.dev/internal/services"
	"prismtech.dev/internal/validation"
)

// SubscribeHandler handles newsletter signups
type SubscribeHandler struct {
	subscribe *services.SubscribeService
	logger    *zap.Logger
}

// NewSubscribeHandler creates a new SubscribeHandler
func NewSubscribeHandler(ss *services.SubscribeService, logger *zap.Logger) *SubscribeHandler {
	return &SubscribeHandler{subscribe: ss, logger: logger}
}

// Mount registers the public POST /subscribe
func (h *SubscribeHandler) Mount(r chi.Router) {
	r.Post("/subscribe", h.Subscribe)
}

// Subscribe handles POST /api/subscribe
func (h *SubscribeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req services.SubscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.logger, err)
		return
	}

	err := h.subscribe.Subscribe(r.Context(), req)
	var verr *validation.Error
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.As(err, &verr):
		respondErr(w, h.logger, err)
	case errors.Is(err, services.ErrMailNotConfigured):
		respondError(w, http.StatusInternalServerError, "Email not configured")
	default:
		respondError(w, http.StatusInternalServerError, "Failed to subscribe")
	}
}
