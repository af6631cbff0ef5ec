// Package store provides transactional document storage. Documents are
// JSON blobs addressed by (collection, id); sorting and filtering happen
// in the layers above, so any engine that can run a transaction over
// those keys satisfies Backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("not found")

// Record is one stored document
type Record struct {
	Collection string
	ID         string
	Data       []byte
}

// Tx is a unit of work against a Backend
type Tx interface {
	All(collection string) ([]Record, error)
	Get(collection, id string) (Record, error)
	Put(rec Record) error
	Delete(collection, id string) error
}

// Backend runs read and write transactions. A write transaction either
// commits every Put/Delete issued through it or none of them.
type Backend interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// GetJSON loads and decodes one document
func GetJSON[T any](tx Tx, collection, id string) (T, error) {
	var out T
	rec, err := tx.Get(collection, id)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(rec.Data, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return out, nil
}

// AllJSON loads and decodes every document of a collection
func AllJSON[T any](tx Tx, collection string) ([]T, error) {
	recs, err := tx.All(collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := json.Unmarshal(rec.Data, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, rec.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// PutJSON encodes and stores one document
func PutJSON(tx Tx, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}
	return tx.Put(Record{Collection: collection, ID: id, Data: data})
}

// Open returns the backend named by driver: "sqlite" (file at path) or
// "memory".
func Open(driver, path string) (Backend, error) {
	switch driver {
	case "sqlite", "":
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		m, err := NewMemory()
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", driver)
	}
}
