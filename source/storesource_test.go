package source_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/lod/source"
	"github.com/wkalt/lod/storage"
	"github.com/wkalt/lod/tile"
)

func packedStore(t *testing.T, maxLevel int) storage.Provider {
	t.Helper()
	store := storage.NewMemStore()
	_, err := source.Pack(context.Background(), store, tile.Elevation, maxLevel, 64)
	require.NoError(t, err)
	return store
}

func TestPack(t *testing.T) {
	ctx := context.Background()
	store := packedStore(t, 2)
	manifest, err := source.ReadManifest(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "elevation", manifest.Type)
	assert.Equal(t, 2, manifest.MaxLevel)
	assert.Equal(t, 1+4+16, manifest.TileCount)

	t.Run("packed tiles decode to generated payloads", func(t *testing.T) {
		id := tile.ID{Level: 2, PatchIdx: 11}
		data, err := store.Get(ctx, source.TileKey(id))
		require.NoError(t, err)
		decoded, err := tile.FromBytes(data)
		require.NoError(t, err)
		assert.Equal(t, id, decoded.TileID())
		assert.Equal(t, source.Generate(tile.Elevation, id, 64), decoded.Data())
	})
}

func TestStoreSource(t *testing.T) {
	ctx := context.Background()
	src, err := source.NewStoreSource(ctx, packedStore(t, 2), source.WithWorkers(2))
	require.NoError(t, err)
	defer src.Close()

	var mtx sync.Mutex
	got := map[tile.ID]*tile.Tile{}
	cb := func(_ source.Source, loaded *tile.Tile) {
		mtx.Lock()
		got[loaded.TileID()] = loaded
		mtx.Unlock()
	}

	wanted := []tile.ID{tile.Root, tile.Root.Child(1), tile.Root.Child(1).Child(2)}
	for _, id := range wanted {
		src.RequestLoad(id, cb)
	}
	require.Eventually(t, func() bool {
		mtx.Lock()
		defer mtx.Unlock()
		return len(got) == len(wanted)
	}, time.Second, time.Millisecond)

	for _, id := range wanted {
		mtx.Lock()
		loaded := got[id]
		mtx.Unlock()
		require.NotNil(t, loaded)
		assert.Equal(t, source.Generate(tile.Elevation, id, 64), loaded.Data())
	}
}

func TestStoreSourceBounds(t *testing.T) {
	ctx := context.Background()
	src, err := source.NewStoreSource(ctx, packedStore(t, 1))
	require.NoError(t, err)
	defer src.Close()

	src.RequestLoad(tile.ID{Level: 2, PatchIdx: 0}, func(_ source.Source, _ *tile.Tile) {
		t.Fatal("callback for a tile beyond the dataset")
	})
	time.Sleep(10 * time.Millisecond)
}

func TestStoreSourceRequiresManifest(t *testing.T) {
	_, err := source.NewStoreSource(context.Background(), storage.NewMemStore())
	require.Error(t, err)
}
