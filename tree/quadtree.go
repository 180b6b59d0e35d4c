package tree

import (
	"github.com/wkalt/lod/tile"
)

/*
QuadTree is the rooted tree of tile nodes for one body. It is a thin
structural wrapper: all invariants live on Node, the tree only anchors the
root and provides traversal. The root is nil until the level-0 tile has been
merged.
*/

////////////////////////////////////////////////////////////////////////////////

// QuadTree holds the root node of one body's tile tree.
type QuadTree struct {
	root *Node
}

// Root returns the root node, or nil before the first merge.
func (t *QuadTree) Root() *Node {
	return t.root
}

// SetRoot replaces the root. The previous root and everything beneath it is
// dropped; callers that need teardown ordering walk the tree first.
func (t *QuadTree) SetRoot(n *Node) {
	t.root = n
}

// Clear drops the entire tree.
func (t *QuadTree) Clear() {
	t.root = nil
}

// Walk visits every node depth-first, parents before children. The walk
// stops early if visit returns false.
func (t *QuadTree) Walk(visit func(*Node) bool) {
	walk(t.root, visit)
}

func walk(n *Node, visit func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for i := 0; i < 4; i++ {
		if !walk(n.Child(i), visit) {
			return false
		}
	}
	return true
}

// WalkBreadthFirst visits every node level by level. The walk stops early if
// visit returns false.
func (t *QuadTree) WalkBreadthFirst(visit func(*Node) bool) {
	if t.root == nil {
		return
	}
	queue := []*Node{t.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if !visit(n) {
			return
		}
		for i := 0; i < 4; i++ {
			if c := n.Child(i); c != nil {
				queue = append(queue, c)
			}
		}
	}
}

// Lookup walks from the root to the node with the given ID by following
// child slots, returning nil if any hop is missing.
func (t *QuadTree) Lookup(id tile.ID) *Node {
	if !id.Valid() || t.root == nil {
		return nil
	}
	n := t.root
	// Child slots from the root down are the base-4 digits of the patch
	// index, most significant first.
	for shift := 2 * (id.Level - 1); shift >= 0; shift -= 2 {
		n = n.Child(int(id.PatchIdx >> shift & 3))
		if n == nil {
			return nil
		}
	}
	return n
}
