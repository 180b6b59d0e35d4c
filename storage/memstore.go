package storage

import (
	"context"
	"sync"
)

/*
MemStore is an in-memory provider backed by a map. It is only suitable for
tests and small synthetic datasets.
*/

////////////////////////////////////////////////////////////////////////////////

// MemStore is an in-memory store.
type MemStore struct {
	data map[string][]byte
	mtx  *sync.RWMutex
}

// NewMemStore returns a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		data: make(map[string][]byte),
		mtx:  &sync.RWMutex{},
	}
}

// Put stores an object in the store.
func (m *MemStore) Put(_ context.Context, key string, data []byte) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.data[key] = data
	return nil
}

// Get retrieves an object from the store.
func (m *MemStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	data, ok := m.data[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return data, nil
}

// Delete removes an object from the store.
func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemStore) String() string {
	return "memory"
}
