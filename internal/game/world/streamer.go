// Package world streams rectangular terrain chunks in and out as the server
// instructs, including buffering of load instructions that arrive before the
// rendering surface exists.
package world

import (
	"fmt"
	"log"

	"deadgrid.app/internal/protocol"
	"deadgrid.app/internal/render"
)

// Readiness of the rendering surface. Load instructions arriving in
// NotReady are buffered; the buffer is drained exactly once on the
// transition to Ready and is invalid afterwards.
type Readiness int

const (
	NotReady Readiness = iota
	Ready
)

// Streamer maintains the sparse set of loaded chunks. Not safe for
// concurrent use; the session loop owns it.
type Streamer struct {
	scene   render.Scene
	terrain render.TerrainRenderer
	log     *log.Logger

	readiness Readiness
	pending   []*protocol.ChunkLoadMsg // FIFO; only valid while NotReady

	chunks   map[ChunkKey]*Chunk
	surfaces *surfaceCache
}

// NewStreamer wires the streamer to its scene and terrain renderer.
// surfaceCacheBytes <= 0 disables surface reuse across unload/load cycles.
func NewStreamer(scene render.Scene, terrain render.TerrainRenderer, logger *log.Logger, surfaceCacheBytes int64) (*Streamer, error) {
	sc, err := newSurfaceCache(surfaceCacheBytes)
	if err != nil {
		return nil, fmt.Errorf("surface cache: %w", err)
	}
	return &Streamer{
		scene:    scene,
		terrain:  terrain,
		log:      logger,
		chunks:   map[ChunkKey]*Chunk{},
		surfaces: sc,
	}, nil
}

// SceneReady transitions NotReady -> Ready and drains the buffered loads in
// arrival order. Calling it again is a no-op.
func (st *Streamer) SceneReady() {
	if st.readiness == Ready {
		return
	}
	st.readiness = Ready
	pending := st.pending
	st.pending = nil
	if len(pending) > 0 && st.log != nil {
		st.log.Printf("scene ready, draining %d buffered chunk loads", len(pending))
	}
	for _, msg := range pending {
		st.load(msg)
	}
}

// Load applies a chunk-load instruction, deferring it if the scene is not
// ready yet. A load for an already resident key is an idempotent no-op.
func (st *Streamer) Load(msg *protocol.ChunkLoadMsg) {
	if st.readiness == NotReady {
		st.pending = append(st.pending, msg)
		return
	}
	st.load(msg)
}

func (st *Streamer) load(msg *protocol.ChunkLoadMsg) {
	key := ChunkKey{CX: msg.ChunkX, CY: msg.ChunkY}
	if _, ok := st.chunks[key]; ok {
		return
	}

	c := &Chunk{
		Key:       key,
		Seed:      msg.Seed,
		Terrain:   msg.Terrain,
		digest:    terrainDigest(msg.Terrain, msg.Seed),
		resources: map[int64]*Resource{},
		buildings: map[int64]*Building{},
	}

	surface, ok := st.surfaces.take(c.digest)
	if !ok {
		surface = st.terrain.RenderTerrain(msg.Terrain, msg.Seed)
	}
	surface.SetPosition(float64(key.CX*protocol.ChunkSize), float64(key.CY*protocol.ChunkSize))
	c.surface = surface

	for _, rs := range msg.Resources {
		sp := st.scene.NewSprite("resource_" + rs.Kind)
		sp.SetPosition(rs.X, rs.Y)
		if !rs.Available {
			sp.SetAlpha(0.3)
		}
		c.resources[rs.ID] = &Resource{State: rs, sprite: sp}
	}

	st.installBuildings(c, msg.Buildings)
	st.chunks[key] = c
}

// Unload releases everything resident under a key. Unloading a key with no
// loaded chunk is a no-op.
func (st *Streamer) Unload(cx, cy int) {
	key := ChunkKey{CX: cx, CY: cy}

	if st.readiness == NotReady {
		// An unload can race a buffered load for the same key; drop the
		// queued load so draining cannot resurrect the chunk.
		kept := st.pending[:0]
		for _, msg := range st.pending {
			if msg.ChunkX != cx || msg.ChunkY != cy {
				kept = append(kept, msg)
			}
		}
		st.pending = kept
		return
	}

	c, ok := st.chunks[key]
	if !ok {
		return
	}
	delete(st.chunks, key)

	if !st.surfaces.put(c.digest, c.surface) {
		c.surface.Release()
	}
	c.surface = nil

	for _, r := range c.resources {
		r.sprite.Release()
	}
	c.resources = map[int64]*Resource{}
	st.releaseBuildings(c)
}

// UpdateBuildings replaces a loaded chunk's building set wholesale. Old
// representations (and their per-building attachments) are released before
// the new list is installed, so an id that disappears cannot leak. Unknown
// keys are ignored; the server may race an update past an unload.
func (st *Streamer) UpdateBuildings(cx, cy int, list []protocol.BuildingState) {
	c, ok := st.chunks[ChunkKey{CX: cx, CY: cy}]
	if !ok {
		return
	}
	st.releaseBuildings(c)
	st.installBuildings(c, list)
}

// ApplyWallDamage patches one building's hp in place (event-driven damage
// between full building updates).
func (st *Streamer) ApplyWallDamage(wallID int64, damage int) {
	for _, c := range st.chunks {
		b, ok := c.buildings[wallID]
		if !ok {
			continue
		}
		b.State.HP -= damage
		if b.State.HP < 0 {
			b.State.HP = 0
		}
		b.healthBar.SetVisible(b.State.HP < b.State.MaxHP)
		if b.State.MaxHP > 0 {
			b.healthBar.SetRatio(float64(b.State.HP) / float64(b.State.MaxHP))
		}
		return
	}
}

func (st *Streamer) installBuildings(c *Chunk, list []protocol.BuildingState) {
	for _, bs := range list {
		sp := st.scene.NewSprite(bs.TypeCode)
		x := float64(bs.GridX*protocol.TileSize) + float64(bs.Width*protocol.TileSize)/2
		y := float64(bs.GridY*protocol.TileSize) + float64(bs.Height*protocol.TileSize)/2
		sp.SetPosition(x, y)
		if !bs.IsBuilt {
			sp.SetAlpha(0.5)
		}

		bar := st.scene.NewBar()
		bar.SetPosition(x, y-float64(bs.Height*protocol.TileSize)/2-6)
		bar.SetVisible(bs.HP < bs.MaxHP)
		if bs.MaxHP > 0 {
			bar.SetRatio(float64(bs.HP) / float64(bs.MaxHP))
		}

		c.buildings[bs.ID] = &Building{State: bs, sprite: sp, healthBar: bar}
	}
}

func (st *Streamer) releaseBuildings(c *Chunk) {
	for _, b := range c.buildings {
		b.sprite.Release()
		b.healthBar.Release()
	}
	c.buildings = map[int64]*Building{}
}

// Chunk returns the resident chunk for a key, if any.
func (st *Streamer) Chunk(cx, cy int) (*Chunk, bool) {
	c, ok := st.chunks[ChunkKey{CX: cx, CY: cy}]
	return c, ok
}

// Len reports how many chunks are resident.
func (st *Streamer) Len() int { return len(st.chunks) }

// PendingLen reports buffered loads awaiting scene readiness.
func (st *Streamer) PendingLen() int { return len(st.pending) }

// TileAtWorld resolves the tile type under a world pixel position, grass
// when the chunk is not resident (matching the server's fallback).
func (st *Streamer) TileAtWorld(x, y float64) int {
	cx := floorDiv(int(x), protocol.ChunkSize)
	cy := floorDiv(int(y), protocol.ChunkSize)
	c, ok := st.chunks[ChunkKey{CX: cx, CY: cy}]
	if !ok {
		return protocol.TileGrass
	}
	tx := mod(int(x), protocol.ChunkSize) / protocol.TileSize
	ty := mod(int(y), protocol.ChunkSize) / protocol.TileSize
	return c.TileAt(tx, ty)
}

// Teardown releases every resident chunk and drops any buffered loads.
// Idempotent; safe against partially initialized state.
func (st *Streamer) Teardown() {
	for key, c := range st.chunks {
		if c.surface != nil {
			c.surface.Release()
			c.surface = nil
		}
		for _, r := range c.resources {
			r.sprite.Release()
		}
		st.releaseBuildings(c)
		delete(st.chunks, key)
	}
	st.pending = nil
	st.surfaces.close()
	st.surfaces = nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
