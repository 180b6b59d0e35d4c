package texture

import (
	"context"
	"sync"

	"github.com/wkalt/lod/tile"
	"github.com/wkalt/lod/util/log"
)

/*
Array tracks which tile payloads are resident on the GPU side. The actual
upload and texture layout happen in the render backend; this ledger only
mirrors residency so the streaming core can report counts and so eviction can
release slots. Allocation past capacity is refused and logged, which callers
treat as a signal to tighten the eviction age threshold, never as an error.
*/

////////////////////////////////////////////////////////////////////////////////

// Array is a capacity-bounded residency ledger for tile payloads.
type Array struct {
	mtx      sync.Mutex
	capacity int
	resident map[tile.ID]struct{}
	refused  int
}

// NewArray returns an Array with the given slot capacity. A capacity of zero
// or less means unbounded.
func NewArray(capacity int) *Array {
	return &Array{
		capacity: capacity,
		resident: make(map[tile.ID]struct{}),
	}
}

// AllocateGPU marks the tile's payload resident. Returns false if the array
// is full and the tile was refused.
func (a *Array) AllocateGPU(t *tile.Tile) bool {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if _, ok := a.resident[t.TileID()]; ok {
		return true
	}
	if a.capacity > 0 && len(a.resident) >= a.capacity {
		a.refused++
		log.Warnf(context.Background(), "texture array full, refusing tile %s", t.TileID())
		return false
	}
	a.resident[t.TileID()] = struct{}{}
	return true
}

// ReleaseGPU releases the tile's slot, if it held one.
func (a *Array) ReleaseGPU(t *tile.Tile) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	delete(a.resident, t.TileID())
}

// ResidentCount returns the number of resident payloads.
func (a *Array) ResidentCount() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return len(a.resident)
}

// RefusedCount returns how many allocations have been refused since
// creation. Stagnation here indicates the age threshold is too lax for the
// configured capacity.
func (a *Array) RefusedCount() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return a.refused
}
