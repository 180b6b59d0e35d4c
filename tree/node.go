package tree

import (
	"github.com/wkalt/lod/tile"
)

/*
Node is one position in a tile quadtree. A node owns its payload and its four
child slots; the parent pointer is a non-owning back-reference maintained
transactionally with child attach/detach, so the parent/child relation is
consistent in both directions after every structural mutation.

Nodes also carry the last frame they were marked used. The visibility tester
marks nodes as it touches them and the tree manager evicts nodes whose age
exceeds a threshold; nothing else reads or writes the field.
*/

////////////////////////////////////////////////////////////////////////////////

// Node is one tree position holding a tile payload and up to four children.
type Node struct {
	tile     *tile.Tile
	children [4]*Node
	parent   *Node
	lastUsed int
}

// NewNode creates a detached node owning the given payload.
func NewNode(t *tile.Tile) *Node {
	return &Node{tile: t}
}

// Tile returns the node's payload without transferring ownership.
func (n *Node) Tile() *tile.Tile {
	return n.tile
}

// SetTile replaces the node's payload, transferring ownership in.
func (n *Node) SetTile(t *tile.Tile) {
	n.tile = t
}

// ReleaseTile detaches the payload and transfers ownership to the caller.
// The node keeps its structural position but must not be queried for tile
// attributes afterwards.
func (n *Node) ReleaseTile() *tile.Tile {
	t := n.tile
	n.tile = nil
	return t
}

// Level returns the payload's quadtree level.
func (n *Node) Level() int {
	return n.tile.Level()
}

// PatchIdx returns the payload's patch index.
func (n *Node) PatchIdx() int64 {
	return n.tile.PatchIdx()
}

// TileID returns the payload's tile ID.
func (n *Node) TileID() tile.ID {
	return n.tile.TileID()
}

// DataType returns the payload's data-type tag.
func (n *Node) DataType() tile.DataType {
	return n.tile.Type()
}

// Child returns the child in slot i, or nil.
func (n *Node) Child(i int) *Node {
	return n.children[i]
}

// SetChild places child in slot i. An existing child in the slot is detached
// first and its parent pointer cleared; the new child's parent pointer is set
// to n. A nil child leaves the slot empty.
func (n *Node) SetChild(i int, child *Node) {
	if old := n.children[i]; old != nil {
		old.parent = nil
	}
	n.children[i] = child
	if child != nil {
		child.parent = n
	}
}

// ReleaseChild detaches and returns the child in slot i, clearing its parent
// pointer. Returns nil if the slot is empty.
func (n *Node) ReleaseChild(i int) *Node {
	child := n.children[i]
	if child != nil {
		child.parent = nil
		n.children[i] = nil
	}
	return child
}

// Parent returns the node's parent, or nil for a root or detached node.
func (n *Node) Parent() *Node {
	return n.parent
}

// MarkUsed records that the node was used in the given frame, resetting its
// age to zero.
func (n *Node) MarkUsed(frame int) {
	n.lastUsed = frame
}

// Age returns the number of frames since the node was last marked used.
func (n *Node) Age(frame int) int {
	return frame - n.lastUsed
}

// IsRefined reports whether all four child slots are occupied, i.e. finer
// detail is resident beneath the node. Refinement is all-or-nothing; a node
// with one to three children is merely partially loaded.
func IsRefined(n *Node) bool {
	return n.children[0] != nil && n.children[1] != nil &&
		n.children[2] != nil && n.children[3] != nil
}
