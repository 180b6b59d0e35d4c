package treemgr

import (
	"sync"

	"github.com/wkalt/lod/source"
	"github.com/wkalt/lod/tile"
)

/*
Test helpers. The fake source records requests and delivers tiles only when
the test says so, which makes arrival-order scenarios deterministic.
*/

////////////////////////////////////////////////////////////////////////////////

type fakeLoad struct {
	id tile.ID
	cb source.LoadCallback
}

// FakeSource is a manually driven tile source for tests.
type FakeSource struct {
	mtx   sync.Mutex
	typ   tile.DataType
	loads []fakeLoad
}

// NewFakeSource returns a fake source producing tiles of the given type.
func NewFakeSource(typ tile.DataType) *FakeSource {
	return &FakeSource{typ: typ}
}

// RequestLoad records the request without delivering anything.
func (f *FakeSource) RequestLoad(id tile.ID, cb source.LoadCallback) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.loads = append(f.loads, fakeLoad{id: id, cb: cb})
}

// Deliver completes the oldest outstanding request for id, invoking its
// callback on the calling goroutine. Returns false if no request is
// outstanding.
func (f *FakeSource) Deliver(id tile.ID) bool {
	f.mtx.Lock()
	var cb source.LoadCallback
	for i, load := range f.loads {
		if load.id == id {
			cb = load.cb
			f.loads = append(f.loads[:i], f.loads[i+1:]...)
			break
		}
	}
	f.mtx.Unlock()
	if cb == nil {
		return false
	}
	cb(f, tile.New(f.typ, id, []byte("payload")))
	return true
}

// Requested returns the IDs of all outstanding requests.
func (f *FakeSource) Requested() []tile.ID {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	ids := make([]tile.ID, 0, len(f.loads))
	for _, load := range f.loads {
		ids = append(ids, load.id)
	}
	return ids
}

func (f *FakeSource) Close() error {
	return nil
}

func (f *FakeSource) String() string {
	return "fake"
}
