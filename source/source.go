package source

import (
	"github.com/wkalt/lod/tile"
)

/*
A Source produces tile payloads asynchronously. RequestLoad is fire and
forget: it never blocks, and for each request the callback is invoked at most
once, from an arbitrary goroutine, when the tile is available. A tile that
cannot be produced results in no callback at all; the requesting side treats
such IDs as permanently pending and clears them on reset. Sources never
deliver a callback after Close returns.
*/

////////////////////////////////////////////////////////////////////////////////

// LoadCallback receives a loaded tile. It may be invoked from any goroutine.
type LoadCallback func(src Source, t *tile.Tile)

// Source asynchronously loads tiles by ID.
type Source interface {
	// RequestLoad schedules a load of the tile with the given ID. Never
	// blocks.
	RequestLoad(id tile.ID, cb LoadCallback)

	// Close stops the source and waits for in-flight loads to settle.
	Close() error

	// String describes the source for logs and debug output.
	String() string
}
