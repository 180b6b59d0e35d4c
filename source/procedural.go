package source

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/wkalt/lod/tile"
	"github.com/wkalt/lod/util/log"
)

/*
Procedural is a source that synthesizes deterministic tile payloads on the
fly. It backs the dataset packer, the simulator's no-dataset mode, and most
tests: the payload for a given (type, id) pair is always the same bytes, so
assertions and packed datasets are reproducible.
*/

////////////////////////////////////////////////////////////////////////////////

// Procedural synthesizes tiles up to a maximum level.
type Procedural struct {
	typ         tile.DataType
	maxLevel    int
	payloadSize int
	delay       time.Duration
	synchronous bool

	mtx    sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// ProceduralOption configures a procedural source.
type ProceduralOption func(*Procedural)

// WithMaxLevel bounds the levels the source will produce. Requests beyond
// the bound are never answered.
func WithMaxLevel(level int) ProceduralOption {
	return func(p *Procedural) {
		p.maxLevel = level
	}
}

// WithPayloadSize sets the size of generated payloads in bytes.
func WithPayloadSize(size int) ProceduralOption {
	return func(p *Procedural) {
		p.payloadSize = size
	}
}

// WithDelay adds an artificial latency to every load, to exercise the
// asynchronous merge paths.
func WithDelay(d time.Duration) ProceduralOption {
	return func(p *Procedural) {
		p.delay = d
	}
}

// WithSynchronousLoads delivers callbacks on the requesting goroutine. Test
// use only; it makes load completion deterministic.
func WithSynchronousLoads() ProceduralOption {
	return func(p *Procedural) {
		p.synchronous = true
	}
}

// NewProcedural returns a procedural source producing tiles of the given
// type.
func NewProcedural(typ tile.DataType, opts ...ProceduralOption) *Procedural {
	p := &Procedural{
		typ:         typ,
		maxLevel:    12,
		payloadSize: 256,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate returns the deterministic payload for the given type and ID.
func Generate(typ tile.DataType, id tile.ID, size int) []byte {
	seed := id.PatchIdx<<10 ^ int64(id.Level)<<4 ^ int64(typ)
	rng := rand.New(rand.NewSource(seed))
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(rng.Intn(256))
	}
	return data
}

// RequestLoad schedules generation of the tile. Invalid or out-of-range IDs
// are dropped without a callback.
func (p *Procedural) RequestLoad(id tile.ID, cb LoadCallback) {
	if !id.Valid() || id.Level > p.maxLevel {
		log.Debugf(context.Background(), "procedural source dropping request for %s", id)
		return
	}
	if p.synchronous {
		cb(p, tile.New(p.typ, id, Generate(p.typ, id, p.payloadSize)))
		return
	}
	p.mtx.Lock()
	if p.closed {
		p.mtx.Unlock()
		return
	}
	p.wg.Add(1)
	p.mtx.Unlock()
	go func() {
		defer p.wg.Done()
		if p.delay > 0 {
			time.Sleep(p.delay)
		}
		p.mtx.Lock()
		closed := p.closed
		p.mtx.Unlock()
		if closed {
			return
		}
		cb(p, tile.New(p.typ, id, Generate(p.typ, id, p.payloadSize)))
	}()
}

// Close stops the source. Pending generations are abandoned.
func (p *Procedural) Close() error {
	p.mtx.Lock()
	p.closed = true
	p.mtx.Unlock()
	p.wg.Wait()
	return nil
}

func (p *Procedural) String() string {
	return "procedural:" + p.typ.String()
}
