package source

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wkalt/lod/storage"
	"github.com/wkalt/lod/tile"
	"github.com/wkalt/lod/util"
	"github.com/wkalt/lod/util/log"
	"golang.org/x/sync/errgroup"
)

/*
StoreSource serves a packed dataset out of a storage provider. Requests fan
out over a bounded pool of worker goroutines that fetch, decode and deliver
tiles; a small LRU keeps recently decoded tiles so that tiles evicted from
the tree and re-requested shortly after do not hit storage again.
*/

////////////////////////////////////////////////////////////////////////////////

type loadRequest struct {
	id tile.ID
	cb LoadCallback
}

// StoreSource loads tiles from a storage provider.
type StoreSource struct {
	store    storage.Provider
	manifest Manifest
	typ      tile.DataType
	cache    *util.LRU[tile.ID, *tile.Tile]

	requests chan loadRequest
	group    *errgroup.Group

	mtx    sync.Mutex
	closed bool
}

// StoreOption configures a store source.
type StoreOption func(*storeConfig)

type storeConfig struct {
	workers   int
	queueSize int
	cacheSize int
}

// WithWorkers sets the worker pool size.
func WithWorkers(n int) StoreOption {
	return func(c *storeConfig) {
		c.workers = n
	}
}

// WithQueueSize sets the request queue depth. Requests beyond the depth are
// dropped rather than blocking the caller.
func WithQueueSize(n int) StoreOption {
	return func(c *storeConfig) {
		c.queueSize = n
	}
}

// WithCacheSize sets the decoded-tile LRU capacity in entries.
func WithCacheSize(n int) StoreOption {
	return func(c *storeConfig) {
		c.cacheSize = n
	}
}

// NewStoreSource returns a source over the given provider. The provider must
// hold a dataset manifest.
func NewStoreSource(ctx context.Context, store storage.Provider, opts ...StoreOption) (*StoreSource, error) {
	conf := storeConfig{
		workers:   4,
		queueSize: 256,
		cacheSize: 1024,
	}
	for _, opt := range opts {
		opt(&conf)
	}
	manifest, err := ReadManifest(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset manifest: %w", err)
	}
	typ, err := manifest.DataType()
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest type: %w", err)
	}
	s := &StoreSource{
		store:    store,
		manifest: manifest,
		typ:      typ,
		cache:    util.NewLRU[tile.ID, *tile.Tile](conf.cacheSize),
		requests: make(chan loadRequest, conf.queueSize),
		group:    &errgroup.Group{},
	}
	for i := 0; i < conf.workers; i++ {
		s.group.Go(func() error {
			s.work(ctx)
			return nil
		})
	}
	return s, nil
}

// Manifest returns the dataset manifest.
func (s *StoreSource) Manifest() Manifest {
	return s.manifest
}

// RequestLoad schedules a load. Requests for IDs outside the dataset, and
// requests arriving when the queue is full, are dropped without a callback.
func (s *StoreSource) RequestLoad(id tile.ID, cb LoadCallback) {
	if !id.Valid() || id.Level > s.manifest.MaxLevel {
		log.Debugf(context.Background(), "store source dropping request for %s", id)
		return
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return
	}
	select {
	case s.requests <- loadRequest{id: id, cb: cb}:
	default:
		log.Warnf(context.Background(), "store source queue full, dropping request for %s", id)
	}
}

func (s *StoreSource) work(ctx context.Context) {
	for req := range s.requests {
		t, err := s.load(ctx, req.id)
		if err != nil {
			log.Warnf(ctx, "failed to load tile %s: %v", req.id, err)
			continue
		}
		req.cb(s, t)
	}
}

func (s *StoreSource) load(ctx context.Context, id tile.ID) (*tile.Tile, error) {
	if t, ok := s.cache.Get(id); ok {
		return t, nil
	}
	data, err := s.store.Get(ctx, TileKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("tile %s not in dataset: %w", id, err)
		}
		return nil, fmt.Errorf("failed to fetch tile %s: %w", id, err)
	}
	t, err := tile.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tile %s: %w", id, err)
	}
	if t.TileID() != id {
		return nil, fmt.Errorf("tile record %s mislabeled as %s", t.TileID(), id)
	}
	if t.Type() != s.typ {
		return nil, fmt.Errorf("tile %s has type %s, dataset is %s", id, t.Type(), s.typ)
	}
	s.cache.Put(id, t)
	return t, nil
}

// Close drains the worker pool. Queued requests are completed first; no
// callback is delivered after Close returns.
func (s *StoreSource) Close() error {
	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		return nil
	}
	s.closed = true
	close(s.requests)
	s.mtx.Unlock()
	if err := s.group.Wait(); err != nil {
		return fmt.Errorf("worker failure: %w", err)
	}
	return nil
}

func (s *StoreSource) String() string {
	return "store:" + s.store.String()
}
