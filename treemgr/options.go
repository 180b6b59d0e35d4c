package treemgr

import (
	"github.com/wkalt/lod/source"
)

type config struct {
	name        string
	source      source.Source
	uploads     UploadManager
	maxNodeAge  int
	gracePeriod int
}

// Option is an option for the tree manager.
type Option func(*config)

// WithName sets the name of the managed tree. The name distinguishes
// instances in logs and metrics.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithSource sets the tile source to load from.
func WithSource(src source.Source) Option {
	return func(c *config) {
		c.source = src
	}
}

// WithUploadManager sets the collaborator notified of payload residency
// changes.
func WithUploadManager(um UploadManager) Option {
	return func(c *config) {
		c.uploads = um
	}
}

// WithMaxNodeAge sets the eviction threshold in frames. A resident node
// whose age exceeds the threshold is pruned. Supplied by the planet
// configuration; tighter values bound GPU residency more aggressively.
func WithMaxNodeAge(frames int) Option {
	return func(c *config) {
		c.maxNodeAge = frames
	}
}

// WithGracePeriod sets how many frames a loaded node may wait for its parent
// before being discarded.
func WithGracePeriod(frames int) Option {
	return func(c *config) {
		c.gracePeriod = frames
	}
}
