package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prismtech.dev/internal/services"
	"prismtech.dev/internal/validation"
)

// multipartOverhead covers form boundaries and headers around the file
const multipartOverhead = 1 << 20

// UploadHandler accepts multipart file uploads
type UploadHandler struct {
	uploads *services.UploadService
	logger  *zap.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(us *services.UploadService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{uploads: us, logger: logger}
}

// Mount registers POST /uploads behind auth
func (h *UploadHandler) Mount(r chi.Router, auth func(http.Handler) http.Handler) {
	r.With(auth).Post("/uploads", h.Upload)
}

// Upload handles POST /api/uploads with a multipart "file" field
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if limit := h.uploads.MaxBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondErr(w, h.logger, validation.Fail("file", "is too large"))
			return
		}
		respondErr(w, h.logger, validation.Fail("file", "is required"))
		return
	}
	defer file.Close()

	up, err := h.uploads.Save(header.Filename, file)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	h.logger.Info("file uploaded", zap.String("filename", up.Filename), zap.Int64("size", up.Size))
	respondJSON(w, http.StatusOK, up)
}
