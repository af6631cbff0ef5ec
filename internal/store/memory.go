package store

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"
)

const documentsTable = "documents"

// Memory is a Backend held in process memory. Contents are lost on exit.
type Memory struct {
	db *memdb.MemDB
}

// NewMemory creates an empty in-memory backend
func NewMemory() (*Memory, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			documentsTable: {
				Name: documentsTable,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:   "id",
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "Collection"},
								&memdb.StringFieldIndex{Field: "ID"},
							},
						},
					},
					"collection": {
						Name:    "collection",
						Indexer: &memdb.StringFieldIndex{Field: "Collection"},
					},
				},
			},
		},
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create memdb: %w", err)
	}
	return &Memory{db: db}, nil
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}

// View runs fn against a read-only snapshot
func (m *Memory) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := m.db.Txn(false)
	defer txn.Abort()
	return fn(&memoryTx{txn: txn})
}

// Update runs fn in a write transaction committed only when fn returns nil
func (m *Memory) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := m.db.Txn(true)
	defer txn.Abort()
	if err := fn(&memoryTx{txn: txn}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

type memoryTx struct {
	txn *memdb.Txn
}

func (t *memoryTx) All(collection string) ([]Record, error) {
	it, err := t.txn.Get(documentsTable, "collection", collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	var out []Record
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, copyRecord(obj.(*Record)))
	}
	return out, nil
}

func (t *memoryTx) Get(collection, id string) (Record, error) {
	obj, err := t.txn.First(documentsTable, "id", collection, id)
	if err != nil {
		return Record{}, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	if obj == nil {
		return Record{}, ErrNotFound
	}
	return copyRecord(obj.(*Record)), nil
}

func (t *memoryTx) Put(rec Record) error {
	stored := copyRecord(&rec)
	if err := t.txn.Insert(documentsTable, &stored); err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", rec.Collection, rec.ID, err)
	}
	return nil
}

func (t *memoryTx) Delete(collection, id string) error {
	obj, err := t.txn.First(documentsTable, "id", collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	if obj == nil {
		return ErrNotFound
	}
	if err := t.txn.Delete(documentsTable, obj); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// memdb hands out shared pointers; callers must never see them.
func copyRecord(r *Record) Record {
	data := make([]byte, len(r.Data))
	copy(data, r.Data)
	return Record{Collection: r.Collection, ID: r.ID, Data: data}
}
