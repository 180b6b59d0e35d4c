package source_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/lod/source"
	"github.com/wkalt/lod/tile"
)

func TestProceduralDeterminism(t *testing.T) {
	src := source.NewProcedural(tile.Elevation, source.WithSynchronousLoads())
	id := tile.ID{Level: 3, PatchIdx: 21}

	var tiles []*tile.Tile
	for i := 0; i < 2; i++ {
		src.RequestLoad(id, func(_ source.Source, loaded *tile.Tile) {
			tiles = append(tiles, loaded)
		})
	}
	require.Len(t, tiles, 2)
	assert.Equal(t, tiles[0].Data(), tiles[1].Data())
	assert.Equal(t, id, tiles[0].TileID())

	t.Run("different ids produce different payloads", func(t *testing.T) {
		var other *tile.Tile
		src.RequestLoad(id.Child(0), func(_ source.Source, loaded *tile.Tile) {
			other = loaded
		})
		require.NotNil(t, other)
		assert.NotEqual(t, tiles[0].Data(), other.Data())
	})
}

func TestProceduralBounds(t *testing.T) {
	src := source.NewProcedural(tile.Imagery,
		source.WithSynchronousLoads(),
		source.WithMaxLevel(2),
	)
	cb := func(_ source.Source, _ *tile.Tile) {
		t.Fatal("callback for an unservable id")
	}
	src.RequestLoad(tile.ID{Level: 3, PatchIdx: 0}, cb)
	src.RequestLoad(tile.ID{Level: 1, PatchIdx: 4}, cb)
}

func TestProceduralAsync(t *testing.T) {
	src := source.NewProcedural(tile.Elevation, source.WithDelay(time.Millisecond))
	var mtx sync.Mutex
	loaded := 0
	for i := 0; i < 4; i++ {
		src.RequestLoad(tile.Root.Child(i), func(_ source.Source, _ *tile.Tile) {
			mtx.Lock()
			loaded++
			mtx.Unlock()
		})
	}
	require.Eventually(t, func() bool {
		mtx.Lock()
		defer mtx.Unlock()
		return loaded == 4
	}, time.Second, time.Millisecond)
	require.NoError(t, src.Close())

	t.Run("no callbacks after close", func(t *testing.T) {
		src.RequestLoad(tile.Root, func(_ source.Source, _ *tile.Tile) {
			t.Fatal("callback after close")
		})
		time.Sleep(5 * time.Millisecond)
	})
}
