package tile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wkalt/lod/tile"
)

func TestIDAddressing(t *testing.T) {
	t.Run("children of the root", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			child := tile.Root.Child(i)
			assert.Equal(t, 1, child.Level)
			assert.Equal(t, int64(i), child.PatchIdx)
			assert.Equal(t, i, child.ChildIndex())
			assert.Equal(t, tile.Root, child.Parent())
		}
	})
	t.Run("parent child round trip", func(t *testing.T) {
		id := tile.ID{Level: 5, PatchIdx: 723}
		for i := 0; i < 4; i++ {
			assert.Equal(t, id, id.Child(i).Parent())
			assert.Equal(t, i, id.Child(i).ChildIndex())
		}
	})
	t.Run("string representation", func(t *testing.T) {
		assert.Equal(t, "3/42", tile.ID{Level: 3, PatchIdx: 42}.String())
	})
}

func TestIDValid(t *testing.T) {
	cases := []struct {
		assertion string
		id        tile.ID
		valid     bool
	}{
		{"root is valid", tile.Root, true},
		{"negative level", tile.ID{Level: -1, PatchIdx: 0}, false},
		{"negative patch", tile.ID{Level: 2, PatchIdx: -1}, false},
		{"last patch of level", tile.ID{Level: 2, PatchIdx: 15}, true},
		{"patch beyond level", tile.ID{Level: 2, PatchIdx: 16}, false},
		{"level too deep", tile.ID{Level: 32, PatchIdx: 0}, false},
		{"root with nonzero patch", tile.ID{Level: 0, PatchIdx: 1}, false},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			assert.Equal(t, c.valid, c.id.Valid())
		})
	}
}
