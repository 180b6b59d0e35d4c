package storage

import (
	"context"
	"errors"
)

/*
Storage providers hold tile objects for the store-backed tile sources. Tiles
are small and always read whole, so the interface deals in complete objects
keyed by string.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrObjectNotFound is returned when a requested object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Provider is a key/value object store.
type Provider interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	String() string
}
