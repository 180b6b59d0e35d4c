package treemgr

import (
	"context"
	"sort"
	"sync"

	"github.com/wkalt/lod/source"
	"github.com/wkalt/lod/texture"
	"github.com/wkalt/lod/tile"
	"github.com/wkalt/lod/tree"
	"github.com/wkalt/lod/util/log"
	"golang.org/x/exp/maps"
)

/*
The tree manager owns one body's tile quadtree and everything required to
keep it populated and bounded: it forwards tile requests to the configured
source, collects asynchronously loaded nodes in a mutex-guarded inbox, merges
them into the tree once per frame, and evicts nodes that have not been used
for a configured number of frames.

Concurrency model: source workers call the load callback from arbitrary
goroutines; the callback touches only the inbox and the pending set, both
guarded by one mutex held just for the append. Everything else - the tree,
the render-data map, the age store, the grace set - belongs to the owning
thread, which calls Request, Update and the accessors once per frame. The
lock is never held across tree mutation.

To find old nodes quickly, a slice of pointers into the render-data map (the
age store) is rebuilt and sorted each prune cycle so the oldest prunable
nodes sit at the tail. A node whose children are still resident is never
prunable; its children go first and it becomes eligible once childless.
*/

////////////////////////////////////////////////////////////////////////////////

// UploadManager is notified when a node's payload becomes resident in the
// tree and should be uploaded, and when it is evicted and should be
// released. The render backend owns actual GPU residency and reports counts.
type UploadManager interface {
	// AllocateGPU schedules upload of the payload. Returns false if the
	// payload was refused for capacity reasons.
	AllocateGPU(t *tile.Tile) bool

	// ReleaseGPU releases the payload's GPU-side resources.
	ReleaseGPU(t *tile.Tile)

	// ResidentCount returns the number of payloads resident on the GPU.
	ResidentCount() int
}

// nodeAge tracks a loaded node that could not yet be merged, and the frame
// it arrived in.
type nodeAge struct {
	node  *tree.Node
	frame int
}

// agedNode is one age-store entry: a resident node and its eviction key as
// of the current prune cycle.
type agedNode struct {
	node *tree.Node
	age  int
}

// TreeManager manages one body's tile quadtree.
type TreeManager struct {
	name        string
	tree        tree.QuadTree
	rdMap       map[tile.ID]*tree.Node
	ageStore    []agedNode
	unmerged    []nodeAge
	src         source.Source
	uploads     UploadManager
	maxNodeAge  int
	gracePeriod int
	frameCount  int
	ctx         context.Context

	mtx     sync.Mutex
	loaded  []*tree.Node
	pending map[tile.ID]struct{}
	srcGen  int
}

// New returns a new TreeManager.
func New(opts ...Option) *TreeManager {
	conf := config{
		name:        "tree",
		maxNodeAge:  10,
		gracePeriod: 5,
	}
	for _, opt := range opts {
		opt(&conf)
	}
	if conf.uploads == nil {
		conf.uploads = texture.NewArray(0)
	}
	return &TreeManager{
		name:        conf.name,
		rdMap:       make(map[tile.ID]*tree.Node),
		src:         conf.source,
		uploads:     conf.uploads,
		maxNodeAge:  conf.maxNodeAge,
		gracePeriod: conf.gracePeriod,
		pending:     make(map[tile.ID]struct{}),
		ctx:         log.AddTags(context.Background(), "tree", conf.name),
	}
}

// Request declares the tiles desired this frame. IDs already pending or
// already resident are skipped, so repeated requests cost one outstanding
// load at most.
func (tm *TreeManager) Request(ids []tile.ID) {
	if tm.src == nil {
		log.Warnf(tm.ctx, "request with no source configured")
		return
	}
	for _, id := range ids {
		if !id.Valid() {
			log.Warnf(tm.ctx, "ignoring request for invalid tile id %s", id)
			continue
		}
		if _, ok := tm.rdMap[id]; ok {
			continue
		}
		tm.mtx.Lock()
		if _, ok := tm.pending[id]; ok {
			tm.mtx.Unlock()
			continue
		}
		tm.pending[id] = struct{}{}
		gen := tm.srcGen
		tm.mtx.Unlock()
		tm.src.RequestLoad(id, func(_ source.Source, t *tile.Tile) {
			tm.onNodeLoaded(gen, t)
		})
	}
}

// onNodeLoaded receives a loaded tile from a source worker. It only appends
// to the inbox and clears the pending entry; the tree is mutated exclusively
// from Update. Tiles from a source that has since been swapped out are
// dropped.
func (tm *TreeManager) onNodeLoaded(gen int, t *tile.Tile) {
	node := tree.NewNode(t)
	tm.mtx.Lock()
	defer tm.mtx.Unlock()
	delete(tm.pending, t.TileID())
	if gen != tm.srcGen {
		log.Debugf(tm.ctx, "dropping tile %s from stale source", t.TileID())
		return
	}
	tm.loaded = append(tm.loaded, node)
}

// Update advances one frame: drain the inbox, merge loaded nodes into the
// tree, prune aged-out nodes, advance the frame counter. Must be called
// exactly once per frame from the owning thread.
func (tm *TreeManager) Update() {
	tm.mtx.Lock()
	batch := tm.loaded
	tm.loaded = nil
	pendingCount := len(tm.pending)
	tm.mtx.Unlock()

	tm.merge(batch)
	tm.prune()
	tm.frameCount++

	residentNodes.WithLabelValues(tm.name).Set(float64(len(tm.rdMap)))
	pendingTiles.WithLabelValues(tm.name).Set(float64(pendingCount))
	unmergedNodes.WithLabelValues(tm.name).Set(float64(len(tm.unmerged)))
}

// merge inserts the batch into the tree in arrival order, then sweeps the
// grace set until no further insertion succeeds, so that a parent merged
// this frame pulls in any of its descendants that arrived earlier.
func (tm *TreeManager) merge(batch []*tree.Node) {
	for _, node := range batch {
		if !tm.insert(node) {
			tm.storeUnmerged(node)
		}
	}
	tm.mergeUnmerged()
}

// insert attaches a loaded node at its tree position. Returns false if the
// parent is not resident, leaving the node for the grace set. A node
// arriving for an already-occupied position replaces the previous node,
// whose subtree is released first.
func (tm *TreeManager) insert(node *tree.Node) bool {
	id := node.TileID()
	if !id.Valid() {
		return false
	}
	if id.Level == 0 {
		if old := tm.tree.Root(); old != nil {
			log.Debugf(tm.ctx, "replacing root on duplicate load")
			tm.tree.SetRoot(nil)
			tm.releaseSubtree(old)
		}
		tm.tree.SetRoot(node)
		tm.adopt(node)
		return true
	}
	parent, ok := tm.rdMap[id.Parent()]
	if !ok {
		return false
	}
	slot := id.ChildIndex()
	if old := parent.ReleaseChild(slot); old != nil {
		log.Debugf(tm.ctx, "replacing tile %s on duplicate load", id)
		tm.releaseSubtree(old)
	}
	parent.SetChild(slot, node)
	tm.adopt(node)
	return true
}

// adopt registers node and any descendants it already carries in the
// render-data map. Freshly loaded nodes arrive childless; the recursion
// covers replacement nodes that were assembled elsewhere.
func (tm *TreeManager) adopt(node *tree.Node) {
	tm.onNodeInserted(node)
	for i := 0; i < 4; i++ {
		if c := node.Child(i); c != nil {
			tm.adopt(c)
		}
	}
}

// onNodeInserted runs for every node that made it into the tree.
func (tm *TreeManager) onNodeInserted(node *tree.Node) {
	tm.rdMap[node.TileID()] = node
	node.MarkUsed(tm.frameCount)
	tm.uploads.AllocateGPU(node.Tile())
	mergedNodesTotal.WithLabelValues(tm.name).Inc()
}

// storeUnmerged moves a node into the grace set, unless it is already there.
func (tm *TreeManager) storeUnmerged(node *tree.Node) {
	for _, u := range tm.unmerged {
		if u.node == node {
			return
		}
	}
	tm.unmerged = append(tm.unmerged, nodeAge{node: node, frame: tm.frameCount})
}

// mergeUnmerged retries the grace set to fixpoint, then expires entries that
// have outlived the grace period without gaining a parent.
func (tm *TreeManager) mergeUnmerged() {
	for progress := true; progress; {
		progress = false
		keep := tm.unmerged[:0]
		for _, u := range tm.unmerged {
			if tm.insert(u.node) {
				progress = true
				continue
			}
			keep = append(keep, u)
		}
		tm.unmerged = keep
	}
	keep := tm.unmerged[:0]
	for _, u := range tm.unmerged {
		if tm.frameCount-u.frame > tm.gracePeriod {
			log.Debugf(tm.ctx, "discarding orphaned tile %s after grace period", u.node.TileID())
			u.node.ReleaseTile()
			discardedNodesTotal.WithLabelValues(tm.name).Inc()
			continue
		}
		keep = append(keep, u)
	}
	tm.unmerged = keep
}

// prune evicts nodes whose age exceeds the threshold. The age store is
// rebuilt from the render-data map once per cycle with eviction keys frozen
// at rebuild time, sorted so the oldest prunable nodes sit at the tail.
// Nodes with resident children key as unprunable; losing their children this
// cycle makes them eligible on the next one, so children always go first.
func (tm *TreeManager) prune() {
	tm.ageStore = tm.ageStore[:0]
	for _, n := range tm.rdMap {
		tm.ageStore = append(tm.ageStore, agedNode{node: n, age: tm.pruneAge(n)})
	}
	sort.Slice(tm.ageStore, func(i, j int) bool {
		return tm.ageStore[i].age < tm.ageStore[j].age
	})
	for len(tm.ageStore) > 0 {
		entry := tm.ageStore[len(tm.ageStore)-1]
		if entry.age <= tm.maxNodeAge {
			break
		}
		tm.ageStore = tm.ageStore[:len(tm.ageStore)-1]
		tm.evict(entry.node)
	}
}

// pruneAge is the eviction sort key: the node's age, or -1 if any child is
// still resident.
func (tm *TreeManager) pruneAge(n *tree.Node) int {
	for i := 0; i < 4; i++ {
		if n.Child(i) != nil {
			return -1
		}
	}
	return n.Age(tm.frameCount)
}

// evict detaches a node from the tree and releases it.
func (tm *TreeManager) evict(node *tree.Node) {
	log.Debugf(tm.ctx, "pruning tile %s at age %d", node.TileID(), node.Age(tm.frameCount))
	if parent := node.Parent(); parent != nil {
		parent.ReleaseChild(node.TileID().ChildIndex())
	} else if tm.tree.Root() == node {
		tm.tree.SetRoot(nil)
	}
	prunedNodesTotal.WithLabelValues(tm.name).Add(float64(tm.releaseSubtree(node)))
}

// releaseSubtree releases a detached node and everything beneath it:
// render-data map entries, GPU resources, payloads. Eviction ordering should
// leave evicted nodes childless, but replacement and clear paths hand whole
// subtrees here. Returns the number of nodes released.
func (tm *TreeManager) releaseSubtree(node *tree.Node) int {
	count := 1
	for i := 0; i < 4; i++ {
		if c := node.ReleaseChild(i); c != nil {
			count += tm.releaseSubtree(c)
		}
	}
	if t := node.ReleaseTile(); t != nil {
		delete(tm.rdMap, t.TileID())
		tm.uploads.ReleaseGPU(t)
	}
	return count
}

// Clear removes all nodes from the tree and resets all bookkeeping,
// including pending requests and the inbox. Loads still in flight deliver
// into the inbox as usual and take the grace-set path on the next update.
func (tm *TreeManager) Clear() {
	if root := tm.tree.Root(); root != nil {
		tm.tree.SetRoot(nil)
		tm.releaseSubtree(root)
	}
	tm.rdMap = make(map[tile.ID]*tree.Node)
	tm.ageStore = tm.ageStore[:0]
	for _, u := range tm.unmerged {
		u.node.ReleaseTile()
	}
	tm.unmerged = nil

	tm.mtx.Lock()
	tm.pending = make(map[tile.ID]struct{})
	tm.loaded = nil
	tm.mtx.Unlock()

	residentNodes.WithLabelValues(tm.name).Set(0)
	pendingTiles.WithLabelValues(tm.name).Set(0)
	unmergedNodes.WithLabelValues(tm.name).Set(0)
}

// Tree returns the managed quadtree for traversal by the renderer. The
// renderer reads between Update calls only.
func (tm *TreeManager) Tree() *tree.QuadTree {
	return &tm.tree
}

// Touch marks a node used this frame, resetting its age. Called by the
// visibility tester for every node it visits.
func (tm *TreeManager) Touch(node *tree.Node) {
	node.MarkUsed(tm.frameCount)
}

// SetSource swaps the tile source. Swapping while requests are outstanding
// requires a prior Clear; tiles still arriving from the previous source are
// dropped.
func (tm *TreeManager) SetSource(src source.Source) {
	tm.mtx.Lock()
	tm.srcGen++
	tm.mtx.Unlock()
	tm.src = src
}

// Source returns the current tile source.
func (tm *TreeManager) Source() source.Source {
	return tm.src
}

// SetName sets the instance name used in logs and metrics.
func (tm *TreeManager) SetName(name string) {
	tm.name = name
	tm.ctx = log.AddTags(context.Background(), "tree", name)
}

// Name returns the instance name.
func (tm *TreeManager) Name() string {
	return tm.name
}

// FrameCount returns the current frame number.
func (tm *TreeManager) FrameCount() int {
	return tm.frameCount
}

// SetFrameCount sets the frame counter.
func (tm *TreeManager) SetFrameCount(frame int) {
	tm.frameCount = frame
}

// NodeCount returns the number of nodes resident in the tree.
func (tm *TreeManager) NodeCount() int {
	return len(tm.rdMap)
}

// NodeCountGPU returns the number of payloads resident on the GPU side.
func (tm *TreeManager) NodeCountGPU() int {
	return tm.uploads.ResidentCount()
}

// PendingCount returns the number of requested tiles not yet loaded.
func (tm *TreeManager) PendingCount() int {
	tm.mtx.Lock()
	defer tm.mtx.Unlock()
	return len(tm.pending)
}

// PendingTiles returns a snapshot of the ids requested but not yet loaded.
// A set that stops shrinking while nothing merges indicates a stalled or
// disconnected source.
func (tm *TreeManager) PendingTiles() []tile.ID {
	tm.mtx.Lock()
	defer tm.mtx.Unlock()
	return maps.Keys(tm.pending)
}

// UnmergedCount returns the number of loaded nodes waiting for a parent.
func (tm *TreeManager) UnmergedCount() int {
	return len(tm.unmerged)
}
