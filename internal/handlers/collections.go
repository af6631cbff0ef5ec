package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"prismtech.dev/internal/collection"
	"prismtech.dev/internal/validation"
)

// CollectionHandler serves one ordered collection
type CollectionHandler[E any, P collection.Entity[E]] struct {
	store      *collection.Store[E, P]
	logger     *zap.Logger
	bulkFields []string
}

// NewCollectionHandler creates a handler for s. Each of bulkFields gets a
// PUT /{field}/bulk endpoint setting that field on many entities.
func NewCollectionHandler[E any, P collection.Entity[E]](s *collection.Store[E, P], logger *zap.Logger, bulkFields ...string) *CollectionHandler[E, P] {
	return &CollectionHandler[E, P]{store: s, logger: logger, bulkFields: bulkFields}
}

// Mount registers the collection routes under /{name}. Writes go
// through auth.
func (h *CollectionHandler[E, P]) Mount(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/"+h.store.Name(), func(r chi.Router) {
		h.Routes(r)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			h.WriteRoutes(r)
		})
	})
}

// Routes registers the public read routes
func (h *CollectionHandler[E, P]) Routes(r chi.Router) {
	r.Get("/", h.List)
	if h.store.Schema().Fields.Featured != nil {
		r.Get("/featured", h.Featured)
	}
	r.Get("/search", h.Search)
	r.Get("/{id}", h.Get)
}

// WriteRoutes registers the mutating routes
func (h *CollectionHandler[E, P]) WriteRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/reorder/bulk", h.Reorder)
	for _, field := range h.bulkFields {
		r.Put("/"+field+"/bulk", h.BulkUpdate(field))
	}
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Put("/{id}/move", h.Move)
}

// List handles GET /api/{collection}
func (h *CollectionHandler[E, P]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(items))
}

// Featured handles GET /api/{collection}/featured
func (h *CollectionHandler[E, P]) Featured(w http.ResponseWriter, r *http.Request) {
	featured := h.store.Schema().Fields.Featured
	items, err := h.store.Filter(r.Context(), featured)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(items))
}

// Search handles GET /api/{collection}/search
func (h *CollectionHandler[E, P]) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	text := q.Get("q")
	if text == "" {
		text = q.Get("search")
	}

	result, err := h.store.Search(r.Context(), collection.Query{
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Featured: collection.ParseFeatured(q.Get("featured")),
		Text:     text,
	}, page)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	result.Items = nonNil(result.Items)
	respondJSON(w, http.StatusOK, result)
}

// Get handles GET /api/{collection}/{id}
func (h *CollectionHandler[E, P]) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Create handles POST /api/{collection}
func (h *CollectionHandler[E, P]) Create(w http.ResponseWriter, r *http.Request) {
	var in E
	if err := decodeJSON(r, &in); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	item, err := h.store.Create(r.Context(), in)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/{collection}/{id}
func (h *CollectionHandler[E, P]) Update(w http.ResponseWriter, r *http.Request) {
	patch := h.store.Schema().NewPatch()
	if err := decodeJSON(r, patch); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	item, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/{collection}/{id}
func (h *CollectionHandler[E, P]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type moveRequest struct {
	Direction int `json:"direction"`
}

// Move handles PUT /api/{collection}/{id}/move and responds with the
// renumbered collection
func (h *CollectionHandler[E, P]) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	items, err := h.store.Move(r.Context(), chi.URLParam(r, "id"), req.Direction)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(items))
}

// Reorder handles PUT /api/{collection}/reorder/bulk
func (h *CollectionHandler[E, P]) Reorder(w http.ResponseWriter, r *http.Request) {
	var positions []collection.Position
	if err := decodeJSON(r, &positions); err != nil {
		respondErr(w, h.logger, err)
		return
	}
	n, err := h.store.Reorder(r.Context(), positions)
	if err != nil {
		respondErr(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "updated": n})
}

// BulkUpdate handles PUT /api/{collection}/{field}/bulk with a body of
// {"ids": [...], "<field>": value}. Other keys are ignored.
func (h *CollectionHandler[E, P]) BulkUpdate(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := decodeJSON(r, &body); err != nil {
			respondErr(w, h.logger, err)
			return
		}

		var ids []string
		if raw, ok := body["ids"]; !ok {
			respondErr(w, h.logger, validation.Fail("ids", "is required"))
			return
		} else if err := json.Unmarshal(raw, &ids); err != nil {
			respondErr(w, h.logger, validation.Fail("ids", "must be a list of ids"))
			return
		}

		value, ok := body[field]
		if !ok || string(value) == "null" {
			respondErr(w, h.logger, validation.Fail(field, "is required"))
			return
		}
		patch := h.store.Schema().NewPatch()
		single, _ := json.Marshal(map[string]json.RawMessage{field: value})
		if err := json.Unmarshal(single, patch); err != nil {
			respondErr(w, h.logger, validation.Fail(field, "has the wrong type"))
			return
		}

		n, err := h.store.BulkUpdate(r.Context(), ids, patch)
		if err != nil {
			respondErr(w, h.logger, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"success": true, "modified": n})
	}
}

// nonNil keeps empty lists encoding as [] rather than null
func nonNil[E any](items []E) []E {
	if items == nil {
		return []E{}
	}
	return items
}
