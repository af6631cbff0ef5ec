// Package collection implements an ordered content collection once for
// every entity type. Entities carry an explicit integer order; lists are
// sorted by that order, then by a per-type secondary key, then by id.
package collection

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"prismtech.dev/internal/models"
	"prismtech.dev/internal/store"
	"prismtech.dev/internal/validation"
)

// Entity is satisfied by pointers to types that embed models.Base
type Entity[E any] interface {
	*E
	Meta() *models.Base
}

// Patch is a typed partial update
type Patch[E any] interface {
	Apply(e *E)
}

// Schema parameterizes a Store for one entity type
type Schema[E any] struct {
	// Name is the storage collection and URL segment
	Name string

	// Compare breaks ties between equal orders. Nil sorts newest first.
	Compare func(a, b *E) int

	// Defaults fills unset fields before a create is validated
	Defaults func(e *E)

	// NewPatch returns an empty patch ready to be decoded into
	NewPatch func() Patch[E]

	// Fields exposes the attributes the search view can filter on
	Fields Fields[E]

	// PageSize is the fixed page size of the search view
	PageSize int
}

// Store persists one collection
type Store[E any, P Entity[E]] struct {
	backend store.Backend
	schema  Schema[E]
	now     func() time.Time
	newID   func() string
}

// New creates a Store for schema on top of backend
func New[E any, P Entity[E]](backend store.Backend, schema Schema[E]) *Store[E, P] {
	if schema.PageSize <= 0 {
		schema.PageSize = 12
	}
	return &Store[E, P]{
		backend: backend,
		schema:  schema,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Schema returns the schema the store was built with
func (s *Store[E, P]) Schema() Schema[E] {
	return s.schema
}

// Name returns the collection name
func (s *Store[E, P]) Name() string {
	return s.schema.Name
}

// List returns the whole collection in presentation order
func (s *Store[E, P]) List(ctx context.Context) ([]E, error) {
	var items []E
	err := s.backend.View(ctx, func(tx store.Tx) error {
		var err error
		items, err = s.load(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Filter returns the entities matching keep, in presentation order
func (s *Store[E, P]) Filter(ctx context.Context, keep func(e *E) bool) ([]E, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// Count returns the number of entities
func (s *Store[E, P]) Count(ctx context.Context) (int, error) {
	var n int
	err := s.backend.View(ctx, func(tx store.Tx) error {
		recs, err := tx.All(s.schema.Name)
		n = len(recs)
		return err
	})
	return n, err
}

// Recent returns up to limit entities, most recently updated first
func (s *Store[E, P]) Recent(ctx context.Context, limit int) ([]E, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(items, func(a, b E) int {
		return P(&b).Meta().UpdatedAt.Compare(P(&a).Meta().UpdatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Get returns one entity
func (s *Store[E, P]) Get(ctx context.Context, id string) (E, error) {
	var e E
	err := s.backend.View(ctx, func(tx store.Tx) error {
		var err error
		e, err = store.GetJSON[E](tx, s.schema.Name, id)
		return err
	})
	return e, err
}

// Create validates e, assigns it an id and timestamps, and stores it.
// Any id or timestamps supplied by the caller are replaced.
func (s *Store[E, P]) Create(ctx context.Context, e E) (E, error) {
	if s.schema.Defaults != nil {
		s.schema.Defaults(&e)
	}
	if err := validation.Struct(&e); err != nil {
		return e, err
	}

	meta := P(&e).Meta()
	meta.ID = s.newID()
	meta.CreatedAt = s.now()
	meta.UpdatedAt = meta.CreatedAt

	err := s.backend.Update(ctx, func(tx store.Tx) error {
		return store.PutJSON(tx, s.schema.Name, meta.ID, &e)
	})
	if err != nil {
		return e, fmt.Errorf("failed to create %s: %w", s.schema.Name, err)
	}
	return e, nil
}

// Update merges patch into the entity with the given id
func (s *Store[E, P]) Update(ctx context.Context, id string, patch Patch[E]) (E, error) {
	var e E
	if err := validation.Struct(patch); err != nil {
		return e, err
	}

	err := s.backend.Update(ctx, func(tx store.Tx) error {
		var err error
		e, err = s.apply(tx, id, patch)
		return err
	})
	return e, err
}

// Delete removes the entity with the given id. The order of other
// entities is left as is.
func (s *Store[E, P]) Delete(ctx context.Context, id string) error {
	return s.backend.Update(ctx, func(tx store.Tx) error {
		return tx.Delete(s.schema.Name, id)
	})
}

// BulkUpdate applies patch to every entity in ids and returns how many
// were written. Unknown ids are skipped; an empty list does nothing.
func (s *Store[E, P]) BulkUpdate(ctx context.Context, ids []string, patch Patch[E]) (int, error) {
	if err := validation.Struct(patch); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var modified int
	err := s.backend.Update(ctx, func(tx store.Tx) error {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true

			_, err := s.apply(tx, id, patch)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			modified++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return modified, nil
}

// apply loads, patches, revalidates and writes one entity inside tx
func (s *Store[E, P]) apply(tx store.Tx, id string, patch Patch[E]) (E, error) {
	e, err := store.GetJSON[E](tx, s.schema.Name, id)
	if err != nil {
		return e, err
	}

	meta := P(&e).Meta()
	keep := *meta
	patch.Apply(&e)
	meta.ID = keep.ID
	meta.CreatedAt = keep.CreatedAt
	meta.UpdatedAt = s.now()

	if err := validation.Struct(&e); err != nil {
		return e, err
	}
	return e, store.PutJSON(tx, s.schema.Name, id, &e)
}

// load reads and sorts the collection inside tx
func (s *Store[E, P]) load(tx store.Tx) ([]E, error) {
	items, err := store.AllJSON[E](tx, s.schema.Name)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(items, s.compare)
	return items, nil
}

func (s *Store[E, P]) compare(a, b E) int {
	ma, mb := P(&a).Meta(), P(&b).Meta()
	if c := cmp.Compare(ma.Order, mb.Order); c != 0 {
		return c
	}
	if s.schema.Compare != nil {
		if c := s.schema.Compare(&a, &b); c != 0 {
			return c
		}
	} else if c := mb.CreatedAt.Compare(ma.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(ma.ID, mb.ID)
}
