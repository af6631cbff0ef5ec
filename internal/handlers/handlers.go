package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"prismtech.dev/internal/config"
	"prismtech.dev/internal/middleware"
	"prismtech.dev/internal/services"
	"prismtech.dev/internal/store"
	"prismtech.dev/internal/validation"
)

// SetupRoutes configures all routes and returns the router
func SetupRoutes(cfg *config.Config, svc *services.Registry, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5, "application/json", "text/csv"))

	auth := middleware.RequireAuth(svc.Auth)

	// Initialize handlers
	serviceHandler := NewCollectionHandler(svc.Content.Services, logger, "featured")
	projects := NewProjectHandler(svc.Content.Projects, logger)
	pricing := NewCollectionHandler(svc.Content.Pricing, logger, "featured")
	team := NewCollectionHandler(svc.Content.Team, logger)
	messages := NewMessageHandler(svc.Messages, logger)
	settings := NewSettingsHandler(svc.Settings, logger)
	authHandler := NewAuthHandler(svc.Auth, logger)
	admin := NewAdminHandler(svc.Dashboard, logger)
	uploads := NewUploadHandler(svc.Uploads, logger)
	subscribe := NewSubscribeHandler(svc.Subscribe, logger)

	health := func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
	r.Get("/health", health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		if rl := cfg.Server.RateLimit; rl.Requests > 0 && rl.Window > 0 {
			r.Use(httprate.LimitByIP(rl.Requests, rl.Window))
		}

		// File uploads carry their own size limit
		uploads.Mount(r, auth)

		r.Group(func(r chi.Router) {
			if cfg.Server.BodyLimit > 0 {
				r.Use(chimw.RequestSize(cfg.Server.BodyLimit))
			}

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, http.StatusOK, map[string]string{"message": "Prism Tech API v1"})
			})
			r.Get("/health", health)

			authHandler.Mount(r, auth)
			serviceHandler.Mount(r, auth)
			projects.Mount(r, auth)
			pricing.Mount(r, auth)
			team.Mount(r, auth)
			messages.Mount(r, auth)
			settings.Mount(r, auth)
			admin.Mount(r, auth)
			subscribe.Mount(r)
		})
	})

	// Uploaded files
	fileServer := http.FileServer(http.Dir(svc.Uploads.Dir()))
	r.Handle(services.UploadPrefix+"*", http.StripPrefix(services.UploadPrefix, cacheFor(24*time.Hour, fileServer)))

	return r
}

func cacheFor(d time.Duration, next http.Handler) http.Handler {
	value := "public, max-age=" + strconv.Itoa(int(d.Seconds()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", value)
		next.ServeHTTP(w, r)
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

type validationResponse struct {
	Error  string                  `json:"error"`
	Errors []validation.FieldError `json:"errors"`
}

// respondErr maps a service error onto a status code. Unexpected errors
// are logged and reported without detail.
func respondErr(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, validationResponse{Error: "Validation failed", Errors: verr.Fields})
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, services.ErrAlreadyInitialized):
		respondError(w, http.StatusConflict, "Admin already initialized")
	default:
		logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads the request body into v. Malformed input is reported
// as a validation error.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return validation.Fail("body", "is too large")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return validation.Fail(typeErr.Field, "has the wrong type")
	case errors.Is(err, io.EOF):
		return validation.Fail("body", "is required")
	default:
		return validation.Fail("body", "must be valid JSON")
	}
}
