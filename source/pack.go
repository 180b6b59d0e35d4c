package source

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wkalt/lod/storage"
	"github.com/wkalt/lod/tile"
	"github.com/wkalt/lod/util/log"
	"golang.org/x/sync/errgroup"
)

/*
Pack builds a complete procedural dataset in a storage provider: every tile
of every level up to maxLevel, plus the manifest. Mostly a tool for demos and
benchmarks, but any provider packed here is servable by StoreSource.
*/

////////////////////////////////////////////////////////////////////////////////

// Pack writes a full dataset of the given type into the provider and returns
// its manifest.
func Pack(
	ctx context.Context,
	store storage.Provider,
	typ tile.DataType,
	maxLevel int,
	payloadSize int,
) (Manifest, error) {
	if maxLevel < 0 || maxLevel > 12 {
		return Manifest{}, fmt.Errorf("unsupported max level %d", maxLevel)
	}
	count := 0
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for level := 0; level <= maxLevel; level++ {
		patches := int64(1) << (2 * level)
		for patch := int64(0); patch < patches; patch++ {
			id := tile.ID{Level: level, PatchIdx: patch}
			count++
			group.Go(func() error {
				t := tile.New(typ, id, Generate(typ, id, payloadSize))
				if err := store.Put(ctx, TileKey(id), t.ToBytes()); err != nil {
					return fmt.Errorf("failed to store tile %s: %w", id, err)
				}
				return nil
			})
		}
		log.Debugf(ctx, "packed level %d (%d tiles)", level, patches)
	}
	if err := group.Wait(); err != nil {
		return Manifest{}, err
	}
	manifest := Manifest{
		DatasetID: uuid.New(),
		Type:      typ.String(),
		MaxLevel:  maxLevel,
		TileCount: count,
	}
	if err := WriteManifest(ctx, store, manifest); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}
