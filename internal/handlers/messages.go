package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prismtech.dev/internal/models"
	"prismtech.dev/internal/services"
)

// MessageHandler handles the contact inbox
type MessageHandler struct {
	messages *services.MessageService
	logger   *zap.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(ms *services.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messages: ms, logger: logger}
}

// Mount registers /messages. Only the contact form submission is public.
func (h *MessageHandler) Mount(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/messages", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/", h.List)
			r.Get("/export", h.Export)
			r.Put("/bulk/status", h.BulkStatus)
			r.Delete("/bulk", h.BulkDelete)
			r.Put("/{id}/read", h.MarkRead)
		})
	})
}

// Create handles POST /api/messages
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.Message
	if err := decodeJSON(r, &in); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	m, err := h.messages.Create(r.Context(), in)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

// List handles GET /api/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.messages.List(r.Context(), messageQuery(r))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Export handles GET /api/messages/export
func (h *MessageHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.messages.Export(r.Context(), messageQuery(r), &buf); err != nil {
		respondErr(w, h.logger, err)
		return
	}

	name := "messages-" + time.Now().UTC().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// MarkRead handles PUT /api/messages/{id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	m, err := h.messages.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

type bulkStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

// BulkStatus handles PUT /api/messages/bulk/status
func (h *MessageHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	n, err := h.messages.BulkStatus(r.Context(), req.IDs, req.Status)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "modified": n})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDelete handles DELETE /api/messages/bulk
func (h *MessageHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	n, err := h.messages.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": n})
}

func messageQuery(r *http.Request) services.MessageQuery {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	return services.MessageQuery{
		Status:   q.Get("status"),
		Start:    q.Get("start"),
		End:      q.Get("end"),
		Page:     page,
		PageSize: size,
	}
}
