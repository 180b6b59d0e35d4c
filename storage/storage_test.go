package storage_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/lod/storage"
)

func testProvider(t *testing.T, store storage.Provider) {
	t.Helper()
	ctx := context.Background()
	t.Run("put and get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "tiles/0/0", []byte("a")))
		value, err := store.Get(ctx, "tiles/0/0")
		require.NoError(t, err)
		require.Equal(t, []byte("a"), value)
	})
	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "tiles/0/0", []byte("b")))
		value, err := store.Get(ctx, "tiles/0/0")
		require.NoError(t, err)
		require.Equal(t, []byte("b"), value)
	})
	t.Run("get missing object", func(t *testing.T) {
		_, err := store.Get(ctx, "tiles/9/9")
		require.ErrorIs(t, err, storage.ErrObjectNotFound)
	})
	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "tiles/0/0"))
		_, err := store.Get(ctx, "tiles/0/0")
		require.ErrorIs(t, err, storage.ErrObjectNotFound)
	})
}

func TestMemStore(t *testing.T) {
	testProvider(t, storage.NewMemStore())
}

func TestDirectoryStore(t *testing.T) {
	testProvider(t, storage.NewDirectoryStore(t.TempDir()))
}

func TestSQLStore(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	store, err := storage.NewSQLStore(db)
	require.NoError(t, err)
	testProvider(t, store)
}
