package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"prismtech.dev/internal/collection"
)

// Collection is a typed view of one ordered collection
type Collection[E any, P collection.Entity[E]] struct {
	c    *Client
	name string
}

// NewCollection returns a client for the collection at /{name}
func NewCollection[E any, P collection.Entity[E]](c *Client, name string) *Collection[E, P] {
	return &Collection[E, P]{c: c, name: name}
}

func (col *Collection[E, P]) path(parts ...string) string {
	p := "/" + col.name
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// List returns the whole collection in presentation order
func (col *Collection[E, P]) List(ctx context.Context) ([]E, error) {
	var out []E
	err := col.c.do(ctx, http.MethodGet, col.path(), nil, nil, nil, &out)
	return out, err
}

// Featured returns the featured entities
func (col *Collection[E, P]) Featured(ctx context.Context) ([]E, error) {
	var out []E
	err := col.c.do(ctx, http.MethodGet, col.path("featured"), nil, nil, nil, &out)
	return out, err
}

// Search returns one filtered page
func (col *Collection[E, P]) Search(ctx context.Context, q collection.Query, page int) (collection.Page[E], error) {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Featured != "" {
		v.Set("featured", string(q.Featured))
	}
	if q.Text != "" {
		v.Set("q", q.Text)
	}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}

	var out collection.Page[E]
	err := col.c.do(ctx, http.MethodGet, col.path("search"), v, nil, nil, &out)
	return out, err
}

// Get returns one entity
func (col *Collection[E, P]) Get(ctx context.Context, id string) (E, error) {
	var out E
	err := col.c.do(ctx, http.MethodGet, col.path(id), nil, nil, nil, &out)
	return out, err
}

// Create stores e and returns it with its id
func (col *Collection[E, P]) Create(ctx context.Context, sess Session, e E) (E, error) {
	var out E
	err := col.c.do(ctx, http.MethodPost, col.path(), nil, &sess, e, &out)
	return out, err
}

// Update applies patch to the entity with id
func (col *Collection[E, P]) Update(ctx context.Context, sess Session, id string, patch collection.Patch[E]) (E, error) {
	var out E
	err := col.c.do(ctx, http.MethodPut, col.path(id), nil, &sess, patch, &out)
	return out, err
}

// Delete removes the entity with id
func (col *Collection[E, P]) Delete(ctx context.Context, sess Session, id string) error {
	return col.c.do(ctx, http.MethodDelete, col.path(id), nil, &sess, nil, nil)
}

// Reorder writes a batch of positions and returns how many landed
func (col *Collection[E, P]) Reorder(ctx context.Context, sess Session, positions []collection.Position) (int, error) {
	var res struct {
		Updated int `json:"updated"`
	}
	err := col.c.do(ctx, http.MethodPut, col.path("reorder", "bulk"), nil, &sess, positions, &res)
	return res.Updated, err
}

// BulkSet sets field to value on every entity in ids and returns how
// many were modified
func (col *Collection[E, P]) BulkSet(ctx context.Context, sess Session, field string, ids []string, value any) (int, error) {
	var res struct {
		Modified int `json:"modified"`
	}
	body := map[string]any{"ids": ids, field: value}
	err := col.c.do(ctx, http.MethodPut, col.path(field, "bulk"), nil, &sess, body, &res)
	return res.Modified, err
}

// Move loads the collection, swaps id one place in direction, and writes
// the resulting sequence back with Reorder. It returns the new sequence;
// a move off either end sends nothing.
func (col *Collection[E, P]) Move(ctx context.Context, sess Session, id string, direction int) ([]E, error) {
	items, err := col.List(ctx)
	if err != nil {
		return nil, err
	}
	moved := collection.Move[E, P](items, id, direction)
	if sameOrder[E, P](items, moved) {
		return items, nil
	}
	if _, err := col.Reorder(ctx, sess, collection.Sequence[E, P](moved)); err != nil {
		return nil, err
	}
	for i := range moved {
		P(&moved[i]).Meta().Order = i
	}
	return moved, nil
}

// MoveOnServer asks the server to move id and renumber the collection
func (col *Collection[E, P]) MoveOnServer(ctx context.Context, sess Session, id string, direction int) ([]E, error) {
	var out []E
	body := map[string]int{"direction": direction}
	err := col.c.do(ctx, http.MethodPut, col.path(id, "move"), nil, &sess, body, &out)
	return out, err
}

func sameOrder[E any, P collection.Entity[E]](a, b []E) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if P(&a[i]).Meta().ID != P(&b[i]).Meta().ID {
			return false
		}
	}
	return true
}
