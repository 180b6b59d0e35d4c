package tile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/lod/tile"
)

func TestTileRoundTrip(t *testing.T) {
	id := tile.ID{Level: 4, PatchIdx: 113}
	data := []byte("elevation samples for one patch")
	original := tile.New(tile.Elevation, id, data)

	decoded, err := tile.FromBytes(original.ToBytes())
	require.NoError(t, err)
	assert.Equal(t, id, decoded.TileID())
	assert.Equal(t, 4, decoded.Level())
	assert.Equal(t, int64(113), decoded.PatchIdx())
	assert.Equal(t, tile.Elevation, decoded.Type())
	assert.Equal(t, data, decoded.Data())
}

func TestTileDecodeErrors(t *testing.T) {
	t.Run("short record", func(t *testing.T) {
		_, err := tile.FromBytes([]byte{1, 2})
		require.Error(t, err)
	})
	t.Run("unknown version", func(t *testing.T) {
		record := tile.New(tile.Imagery, tile.Root, []byte("x")).ToBytes()
		record[0] = 99
		_, err := tile.FromBytes(record)
		require.Error(t, err)
	})
	t.Run("unknown type tag", func(t *testing.T) {
		record := tile.New(tile.Imagery, tile.Root, []byte("x")).ToBytes()
		record[1] = 99
		_, err := tile.FromBytes(record)
		require.Error(t, err)
	})
	t.Run("inconsistent id", func(t *testing.T) {
		record := tile.New(tile.Imagery, tile.ID{Level: 2, PatchIdx: 15}, []byte("x")).ToBytes()
		record[2] = 1 // patch 15 does not exist on level 1
		_, err := tile.FromBytes(record)
		require.Error(t, err)
	})
}

func TestParseDataType(t *testing.T) {
	typ, err := tile.ParseDataType("imagery")
	require.NoError(t, err)
	assert.Equal(t, tile.Imagery, typ)
	_, err = tile.ParseDataType("volumetric")
	require.Error(t, err)
}
