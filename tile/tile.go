package tile

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

/*
Tile is the data payload held by one tree node. The payload bytes are opaque
to the streaming core; only the addressing fields and the data-type tag are
interpreted here. Tiles serialize to a small binary envelope with the data
section zstd-compressed, which is the format used by the packer and the
store-backed sources.
*/

////////////////////////////////////////////////////////////////////////////////

const tileVersion = uint8(1)

// DataType tags the kind of surface data a tile carries.
type DataType uint8

const (
	Elevation DataType = iota + 1
	Imagery
)

func (t DataType) String() string {
	switch t {
	case Elevation:
		return "elevation"
	case Imagery:
		return "imagery"
	default:
		return "unknown"
	}
}

// ParseDataType parses the string representation of a data type.
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "elevation":
		return Elevation, nil
	case "imagery":
		return Imagery, nil
	default:
		return 0, fmt.Errorf("unknown data type %q", s)
	}
}

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Tile is one unit of surface data. Immutable after construction.
type Tile struct {
	id   ID
	typ  DataType
	data []byte
}

// New creates a tile for the given position. The tile takes ownership of
// data.
func New(typ DataType, id ID, data []byte) *Tile {
	return &Tile{id: id, typ: typ, data: data}
}

// TileID returns the tile's position in the quadtree.
func (t *Tile) TileID() ID {
	return t.id
}

// Level returns the tile's quadtree level.
func (t *Tile) Level() int {
	return t.id.Level
}

// PatchIdx returns the tile's patch index within its level.
func (t *Tile) PatchIdx() int64 {
	return t.id.PatchIdx
}

// Type returns the tile's data-type tag.
func (t *Tile) Type() DataType {
	return t.typ
}

// Data returns the tile's payload bytes.
func (t *Tile) Data() []byte {
	return t.data
}

// ToBytes serializes the tile. Layout: version byte, type byte, level byte,
// reserved byte, varint patch index, zstd-compressed data.
func (t *Tile) ToBytes() []byte {
	buf := make([]byte, 4, 4+binary.MaxVarintLen64+len(t.data))
	buf[0] = tileVersion
	buf[1] = uint8(t.typ)
	buf[2] = uint8(t.id.Level)
	buf = binary.AppendVarint(buf, t.id.PatchIdx)
	return zstdEncoder.EncodeAll(t.data, buf)
}

// FromBytes deserializes a tile produced by ToBytes.
func FromBytes(data []byte) (*Tile, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("short tile record: %d bytes", len(data))
	}
	if data[0] != tileVersion {
		return nil, fmt.Errorf("unsupported tile version %d", data[0])
	}
	typ := DataType(data[1])
	if typ != Elevation && typ != Imagery {
		return nil, fmt.Errorf("unknown data type tag %d", data[1])
	}
	patch, n := binary.Varint(data[4:])
	if n <= 0 {
		return nil, fmt.Errorf("malformed patch index")
	}
	id := ID{Level: int(data[2]), PatchIdx: patch}
	if !id.Valid() {
		return nil, fmt.Errorf("invalid tile id %s", id)
	}
	payload, err := zstdDecoder.DecodeAll(data[4+n:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress tile data: %w", err)
	}
	return New(typ, id, payload), nil
}
