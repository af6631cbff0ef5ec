package collection

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"prismtech.dev/internal/store"
	"prismtech.dev/internal/validation"
)

// Position assigns an order to one entity
type Position struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// Move returns a copy of seq with the entity id swapped one place in
// direction (-1 up, +1 down). seq is returned unchanged when the id is
// unknown, direction is not ±1, or the move would leave the sequence.
func Move[E any, P Entity[E]](seq []E, id string, direction int) []E {
	if direction != -1 && direction != 1 {
		return seq
	}
	from := slices.IndexFunc(seq, func(e E) bool { return P(&e).Meta().ID == id })
	if from < 0 {
		return seq
	}
	to := from + direction
	if to < 0 || to >= len(seq) {
		return seq
	}

	out := slices.Clone(seq)
	out[from], out[to] = out[to], out[from]
	return out
}

// Sequence numbers seq from 0 in its current order
func Sequence[E any, P Entity[E]](seq []E) []Position {
	out := make([]Position, len(seq))
	for i := range seq {
		out[i] = Position{ID: P(&seq[i]).Meta().ID, Order: i}
	}
	return out
}

// Reorder writes every position in one transaction: either all of them
// land or none do. Unknown ids are skipped. It returns how many entities
// were written.
func (s *Store[E, P]) Reorder(ctx context.Context, positions []Position) (int, error) {
	for i, p := range positions {
		if p.Order < 0 {
			return 0, validation.Fail(fmt.Sprintf("[%d].order", i), "must be greater than or equal to 0")
		}
		if p.ID == "" {
			return 0, validation.Fail(fmt.Sprintf("[%d].id", i), "is required")
		}
	}
	if len(positions) == 0 {
		return 0, nil
	}

	var updated int
	err := s.backend.Update(ctx, func(tx store.Tx) error {
		for _, p := range positions {
			e, err := store.GetJSON[E](tx, s.schema.Name, p.ID)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			meta := P(&e).Meta()
			meta.Order = p.Order
			meta.UpdatedAt = s.now()
			if err := store.PutJSON(tx, s.schema.Name, p.ID, &e); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reorder %s: %w", s.schema.Name, err)
	}
	return updated, nil
}

// Move shifts one entity a place up or down and renumbers the whole
// collection from 0, returning the new sequence.
func (s *Store[E, P]) Move(ctx context.Context, id string, direction int) ([]E, error) {
	if direction != -1 && direction != 1 {
		return nil, validation.Fail("direction", "must be one of: -1 1")
	}

	var out []E
	err := s.backend.Update(ctx, func(tx store.Tx) error {
		items, err := s.load(tx)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(items, func(e E) bool { return P(&e).Meta().ID == id }) {
			return store.ErrNotFound
		}

		out = Move[E, P](items, id, direction)
		now := s.now()
		for i := range out {
			meta := P(&out[i]).Meta()
			if meta.Order == i {
				continue
			}
			meta.Order = i
			meta.UpdatedAt = now
			if err := store.PutJSON(tx, s.schema.Name, meta.ID, &out[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
