package tile

import (
	"fmt"
)

/*
Tile IDs address one position in the quadtree covering a body's surface. The
root of the tree is level 0, patch 0. Each patch subdivides into four children
on the next level, numbered 4*P+0 through 4*P+3, so a level holds 4^L patches
and any ID can be walked up to the root with integer division alone.
*/

////////////////////////////////////////////////////////////////////////////////

// ID identifies one tile by quadtree level and patch index.
type ID struct {
	Level    int
	PatchIdx int64
}

// Root is the ID of the level-0 tile.
var Root = ID{Level: 0, PatchIdx: 0}

// Parent returns the ID of the patch this tile subdivides. Calling Parent on
// the root returns an invalid ID.
func (id ID) Parent() ID {
	return ID{Level: id.Level - 1, PatchIdx: id.PatchIdx >> 2}
}

// Child returns the ID of the tile in child slot i (0-3) under this one.
func (id ID) Child(i int) ID {
	return ID{Level: id.Level + 1, PatchIdx: id.PatchIdx<<2 + int64(i)}
}

// ChildIndex returns the slot (0-3) this tile occupies under its parent.
func (id ID) ChildIndex() int {
	return int(id.PatchIdx & 3)
}

// Valid reports whether the level and patch index are consistent with the
// subdivision scheme. Levels past 31 exceed any usable subdivision depth and
// the bounds arithmetic, and are rejected.
func (id ID) Valid() bool {
	if id.Level < 0 || id.Level > 31 {
		return false
	}
	return id.PatchIdx >= 0 && id.PatchIdx < 1<<(2*id.Level)
}

// String returns a level/patch representation of the ID.
func (id ID) String() string {
	return fmt.Sprintf("%d/%d", id.Level, id.PatchIdx)
}
