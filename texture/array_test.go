package texture_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wkalt/lod/texture"
	"github.com/wkalt/lod/tile"
)

func testTile(level int, patch int64) *tile.Tile {
	return tile.New(tile.Imagery, tile.ID{Level: level, PatchIdx: patch}, nil)
}

func TestArrayCapacity(t *testing.T) {
	array := texture.NewArray(2)
	a, b, c := testTile(1, 0), testTile(1, 1), testTile(1, 2)

	assert.True(t, array.AllocateGPU(a))
	assert.True(t, array.AllocateGPU(b))
	assert.False(t, array.AllocateGPU(c), "allocation past capacity is refused")
	assert.Equal(t, 2, array.ResidentCount())
	assert.Equal(t, 1, array.RefusedCount())

	t.Run("re-allocating a resident tile is a no-op", func(t *testing.T) {
		assert.True(t, array.AllocateGPU(a))
		assert.Equal(t, 2, array.ResidentCount())
	})

	t.Run("release frees a slot", func(t *testing.T) {
		array.ReleaseGPU(a)
		assert.Equal(t, 1, array.ResidentCount())
		assert.True(t, array.AllocateGPU(c))
	})
}

func TestArrayUnbounded(t *testing.T) {
	array := texture.NewArray(0)
	for i := int64(0); i < 64; i++ {
		assert.True(t, array.AllocateGPU(testTile(3, i)))
	}
	assert.Equal(t, 64, array.ResidentCount())
	assert.Equal(t, 0, array.RefusedCount())
}
