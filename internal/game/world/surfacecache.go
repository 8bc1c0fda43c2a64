package world

import (
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"

	"deadgrid.app/internal/protocol"
	"deadgrid.app/internal/render"
)

// surfaceCache keeps rendered terrain surfaces of unloaded chunks around so
// that walking back into a chunk does not re-render it. Surfaces are
// regenerable from (grid, seed), so eviction just releases them.
type surfaceCache struct {
	cache *ristretto.Cache[string, *cachedSurface]
}

type cachedSurface struct {
	surface render.Surface
	// taken flips when a chunk reclaims the surface; the eviction hook must
	// not release a surface that is resident again.
	taken atomic.Bool
}

// surfaceCost approximates the pixel memory of one chunk surface (RGBA).
const surfaceCost = int64(protocol.ChunkSize) * int64(protocol.ChunkSize) * 4

func newSurfaceCache(maxBytes int64) (*surfaceCache, error) {
	if maxBytes <= 0 {
		return nil, nil // disabled: surfaces are released on unload
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, *cachedSurface]{
		NumCounters: 1024,
		MaxCost:     maxBytes,
		BufferItems: 64,
		OnEvict: func(item *ristretto.Item[*cachedSurface]) {
			if item.Value != nil && !item.Value.taken.Load() {
				item.Value.surface.Release()
			}
		},
		// Admission can reject a write outright; the surface must still be
		// released or it leaks.
		OnReject: func(item *ristretto.Item[*cachedSurface]) {
			if item.Value != nil && !item.Value.taken.Load() {
				item.Value.surface.Release()
			}
		},
	})
	if err != nil {
		return nil, err
	}
	return &surfaceCache{cache: c}, nil
}

// take removes and returns the cached surface for a digest, if any.
func (sc *surfaceCache) take(digest string) (render.Surface, bool) {
	if sc == nil {
		return nil, false
	}
	v, ok := sc.cache.Get(digest)
	if !ok || v == nil {
		return nil, false
	}
	if !v.taken.CompareAndSwap(false, true) {
		return nil, false
	}
	sc.cache.Del(digest)
	return v.surface, true
}

// put parks a surface for possible reuse. The cache owns it from here;
// eviction releases it.
func (sc *surfaceCache) put(digest string, s render.Surface) bool {
	if sc == nil {
		return false
	}
	return sc.cache.Set(digest, &cachedSurface{surface: s}, surfaceCost)
}

// wait flushes pending cache writes. Tests only.
func (sc *surfaceCache) wait() {
	if sc != nil {
		sc.cache.Wait()
	}
}

func (sc *surfaceCache) close() {
	if sc != nil {
		sc.cache.Close()
	}
}
