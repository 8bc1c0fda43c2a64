package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"deadgrid.app/internal/protocol"
	"deadgrid.app/internal/render"
)

// ChunkKey identifies one streamed chunk. At most one chunk is resident per
// key at a time.
type ChunkKey struct {
	CX int
	CY int
}

// Chunk is one resident 32x32-tile piece of the world: a rendered terrain
// surface plus resource and building representations. All fields are owned
// by the Streamer.
type Chunk struct {
	Key  ChunkKey
	Seed int64

	Terrain [][]int
	digest  string

	surface   render.Surface
	resources map[int64]*Resource
	buildings map[int64]*Building
}

// Resource is one harvestable node representation.
type Resource struct {
	State  protocol.ResourceState
	sprite render.Sprite
}

// Building is one placed structure representation.
type Building struct {
	State     protocol.BuildingState
	sprite    render.Sprite
	healthBar render.Bar
}

// Resources returns the live node states, for UI proximity queries.
func (c *Chunk) Resources() []protocol.ResourceState {
	out := make([]protocol.ResourceState, 0, len(c.resources))
	for _, r := range c.resources {
		out = append(out, r.State)
	}
	return out
}

// Buildings returns the live building states.
func (c *Chunk) Buildings() []protocol.BuildingState {
	out := make([]protocol.BuildingState, 0, len(c.buildings))
	for _, b := range c.buildings {
		out = append(out, b.State)
	}
	return out
}

// TileAt returns the tile type at local tile coordinates, grass outside the
// grid (the server does the same).
func (c *Chunk) TileAt(tx, ty int) int {
	if ty < 0 || ty >= len(c.Terrain) {
		return protocol.TileGrass
	}
	row := c.Terrain[ty]
	if tx < 0 || tx >= len(row) {
		return protocol.TileGrass
	}
	return row[tx]
}

// terrainDigest fingerprints (grid, seed); two chunks with equal digests
// render to identical surfaces, which is what makes the surface a pure
// cache.
func terrainDigest(grid [][]int, seed int64) string {
	h := sha256.New()
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(seed))
	h.Write(tmp[:])
	for _, row := range grid {
		for _, t := range row {
			binary.LittleEndian.PutUint64(tmp[:], uint64(int64(t)))
			h.Write(tmp[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
