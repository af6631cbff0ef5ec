package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()

	mem, err := NewMemory()
	require.NoError(t, err)

	lite, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lite.Close() })

	return map[string]Backend{"memory": mem, "sqlite": lite}
}

type doc struct {
	Name string `json:"name"`
}

func TestBackends(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("PutGetAll", func(t *testing.T) { testPutGetAll(t, b) })
			t.Run("Delete", func(t *testing.T) { testDelete(t, b) })
			t.Run("Rollback", func(t *testing.T) { testRollback(t, b) })
			t.Run("PanicReleasesWriter", func(t *testing.T) { testPanicReleasesWriter(t, b) })
			t.Run("CollectionsIsolated", func(t *testing.T) { testIsolation(t, b) })
		})
	}
}

func testPutGetAll(t *testing.T, b Backend) {
	ctx := context.Background()
	err := b.Update(ctx, func(tx Tx) error {
		if err := PutJSON(tx, "pga", "a", doc{Name: "alpha"}); err != nil {
			return err
		}
		return PutJSON(tx, "pga", "b", doc{Name: "beta"})
	})
	require.NoError(t, err)

	// overwrite
	require.NoError(t, b.Update(ctx, func(tx Tx) error {
		return PutJSON(tx, "pga", "a", doc{Name: "alpha2"})
	}))

	err = b.View(ctx, func(tx Tx) error {
		got, err := GetJSON[doc](tx, "pga", "a")
		require.NoError(t, err)
		assert.Equal(t, "alpha2", got.Name)

		all, err := AllJSON[doc](tx, "pga")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		_, err = tx.Get("pga", "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func testDelete(t *testing.T, b Backend) {
	ctx := context.Background()
	require.NoError(t, b.Update(ctx, func(tx Tx) error {
		return PutJSON(tx, "del", "x", doc{Name: "x"})
	}))

	require.NoError(t, b.Update(ctx, func(tx Tx) error {
		return tx.Delete("del", "x")
	}))

	err := b.Update(ctx, func(tx Tx) error {
		return tx.Delete("del", "x")
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func testRollback(t *testing.T, b Backend) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := b.Update(ctx, func(tx Tx) error {
		if err := PutJSON(tx, "rb", "a", doc{Name: "a"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, b.View(ctx, func(tx Tx) error {
		recs, err := tx.All("rb")
		require.NoError(t, err)
		assert.Empty(t, recs)
		return nil
	}))
}

func testPanicReleasesWriter(t *testing.T, b Backend) {
	ctx := context.Background()

	func() {
		defer func() { assert.NotNil(t, recover()) }()
		_ = b.Update(ctx, func(tx Tx) error {
			if err := PutJSON(tx, "panic", "a", doc{Name: "a"}); err != nil {
				return err
			}
			panic("boom")
		})
	}()

	done := make(chan error, 1)
	go func() {
		done <- b.Update(ctx, func(tx Tx) error {
			return PutJSON(tx, "panic", "b", doc{Name: "b"})
		})
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Update blocked after a recovered panic")
	}

	require.NoError(t, b.View(ctx, func(tx Tx) error {
		_, err := GetJSON[doc](tx, "panic", "a")
		assert.ErrorIs(t, err, ErrNotFound)
		got, err := GetJSON[doc](tx, "panic", "b")
		require.NoError(t, err)
		assert.Equal(t, "b", got.Name)
		return nil
	}))
}

func testIsolation(t *testing.T, b Backend) {
	ctx := context.Background()
	require.NoError(t, b.Update(ctx, func(tx Tx) error {
		if err := PutJSON(tx, "iso-a", "same", doc{Name: "a"}); err != nil {
			return err
		}
		return PutJSON(tx, "iso-b", "same", doc{Name: "b"})
	}))

	require.NoError(t, b.View(ctx, func(tx Tx) error {
		a, err := GetJSON[doc](tx, "iso-a", "same")
		require.NoError(t, err)
		bb, err := GetJSON[doc](tx, "iso-b", "same")
		require.NoError(t, err)
		assert.Equal(t, "a", a.Name)
		assert.Equal(t, "b", bb.Name)
		return nil
	}))
}

func TestOpen(t *testing.T) {
	b, err := Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b)

	_, err = Open("mongo", "")
	assert.Error(t, err)
}

func TestSQLitePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, func(tx Tx) error {
		return PutJSON(tx, "p", "1", doc{Name: "kept"})
	}))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.View(ctx, func(tx Tx) error {
		got, err := GetJSON[doc](tx, "p", "1")
		require.NoError(t, err)
		assert.Equal(t, "kept", got.Name)
		return nil
	}))
}
