package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prismtech.dev/internal/middleware"
	"prismtech.dev/internal/services"
)

// AuthHandler handles login and the first-admin bootstrap
type AuthHandler struct {
	auth   *services.AuthService
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(as *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: as, logger: logger}
}

// Mount registers /auth
func (h *AuthHandler) Mount(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/bootstrap-admin", h.BootstrapAdmin)
		r.With(auth).Get("/me", h.Me)
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds services.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	res, err := h.auth.Login(r.Context(), creds)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	h.logger.Info("admin login", zap.String("user_id", res.User.ID))
	respondJSON(w, http.StatusOK, res)
}

// BootstrapAdmin handles POST /api/auth/bootstrap-admin
func (h *AuthHandler) BootstrapAdmin(w http.ResponseWriter, r *http.Request) {
	var req services.BootstrapRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	res, err := h.auth.BootstrapAdmin(r.Context(), req)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	h.logger.Info("admin bootstrapped", zap.String("user_id", res.User.ID))
	respondJSON(w, http.StatusCreated, res)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":        sess.UserID,
		"email":     sess.Email,
		"role":      sess.Role,
		"expiresAt": sess.ExpiresAt,
	})
}
