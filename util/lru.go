package util

import (
	"container/list"
	"sync"
)

/*
LRU is a small thread-safe LRU cache, used by the store-backed tile sources
to keep recently decoded tiles around across eviction/re-request cycles.
*/

////////////////////////////////////////////////////////////////////////////////

// LRU is an LRU cache with a fixed entry capacity.
type LRU[K comparable, V any] struct {
	mtx   sync.Mutex
	cap   int
	index map[K]*list.Element
	order *list.List
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRU returns a new LRU cache holding up to capacity entries.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	return &LRU[K, V]{
		cap:   capacity,
		index: make(map[K]*list.Element),
		order: list.New(),
	}
}

// Put adds a key-value pair to the cache, updating the value if the key is
// already present.
func (lru *LRU[K, V]) Put(key K, value V) {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	if elem, ok := lru.index[key]; ok {
		elem.Value.(*lruEntry[K, V]).value = value
		lru.order.MoveToFront(elem)
		return
	}
	lru.index[key] = lru.order.PushFront(&lruEntry[K, V]{key: key, value: value})
	for lru.order.Len() > lru.cap {
		oldest := lru.order.Back()
		lru.order.Remove(oldest)
		delete(lru.index, oldest.Value.(*lruEntry[K, V]).key)
	}
}

// Get returns the value for key and whether it was present.
func (lru *LRU[K, V]) Get(key K) (V, bool) {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	if elem, ok := lru.index[key]; ok {
		lru.order.MoveToFront(elem)
		return elem.Value.(*lruEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Len returns the number of cached entries.
func (lru *LRU[K, V]) Len() int {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	return lru.order.Len()
}

// Reset clears the cache.
func (lru *LRU[K, V]) Reset() {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	lru.index = make(map[K]*list.Element)
	lru.order.Init()
}
