package source

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/wkalt/lod/storage"
	"github.com/wkalt/lod/tile"
)

/*
Every packed dataset carries a manifest object beside its tiles describing
what the dataset holds. Sources read it on startup to validate requests
without touching storage, and the inspect tooling prints it.
*/

////////////////////////////////////////////////////////////////////////////////

// ManifestKey is the storage key of the dataset manifest.
const ManifestKey = "manifest.json"

// TileKey returns the storage key of the tile with the given ID.
func TileKey(id tile.ID) string {
	return fmt.Sprintf("tiles/%d/%d", id.Level, id.PatchIdx)
}

// Manifest describes a packed tile dataset.
type Manifest struct {
	DatasetID uuid.UUID `json:"dataset_id"`
	Type      string    `json:"type"`
	MaxLevel  int       `json:"max_level"`
	TileCount int       `json:"tile_count"`
}

// DataType returns the parsed data-type tag of the dataset.
func (m Manifest) DataType() (tile.DataType, error) {
	return tile.ParseDataType(m.Type)
}

// WriteManifest stores the manifest in the provider.
func WriteManifest(ctx context.Context, store storage.Provider, m Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := store.Put(ctx, ManifestKey, data); err != nil {
		return fmt.Errorf("failed to store manifest: %w", err)
	}
	return nil
}

// ReadManifest loads and parses the manifest from the provider.
func ReadManifest(ctx context.Context, store storage.Provider) (Manifest, error) {
	data, err := store.Get(ctx, ManifestKey)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if _, err := m.DataType(); err != nil {
		return Manifest{}, fmt.Errorf("invalid manifest: %w", err)
	}
	return m, nil
}
