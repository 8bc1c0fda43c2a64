// Package render defines the seam between the sync engine and the drawing
// backend. The engine only moves positions, rotations and alphas through
// these interfaces; it never touches drawing primitives.
package render

// Scene creates and owns drawables. Implementations are the real sprite
// engine in the mini-app host and NopScene for headless runs and tests.
type Scene interface {
	// NewSprite creates a drawable for one entity. kind selects the art
	// ("player", "zombie_fast", "projectile", a building type code, ...).
	NewSprite(kind string) Sprite

	// NewLabel creates a floating text attachment (name tags).
	NewLabel(text string) Sprite

	// NewBar creates a proportional bar attachment (health, reload).
	NewBar() Bar
}

// Sprite is one positioned drawable. Release is idempotent.
type Sprite interface {
	SetPosition(x, y float64)
	SetRotation(rad float64)
	SetAlpha(a float64)
	SetScale(s float64)
	// SetAnimation switches the playing clip ("idle", "walk", "shoot", ...).
	// Re-setting the current clip is a no-op.
	SetAnimation(name string)
	Release()
}

// Bar is a two-part attachment showing a 0..1 ratio. Release is idempotent.
type Bar interface {
	SetPosition(x, y float64)
	SetRatio(r float64)
	SetVisible(v bool)
	Release()
}

// Surface is an opaque rendered terrain image for one chunk. Release is
// idempotent; releasing a surface still referenced by the scene is a bug in
// the caller, not here.
type Surface interface {
	SetPosition(x, y float64)
	Release()
}

// TerrainRenderer turns a tile grid and a seed into a drawable surface.
// Appearance (textures, decorations) is entirely the implementation's
// business; the grid and seed fully determine the output.
type TerrainRenderer interface {
	RenderTerrain(grid [][]int, seed int64) Surface
}
