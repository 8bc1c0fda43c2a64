package entity

// Interpolated is the per-frame smoothing hook the scheduler drives.
type Interpolated interface {
	Step(alpha float64)
}

// Body is the kinematic state every mobile entity embeds. The render
// position converges toward the target and never jumps except at creation;
// only Step writes the render position, only snapshots write the target.
type Body struct {
	RenderX, RenderY float64
	TargetX, TargetY float64
}

// Snap places both positions at once. Creation only.
func (b *Body) Snap(x, y float64) {
	b.RenderX, b.RenderY = x, y
	b.TargetX, b.TargetY = x, y
}

func (b *Body) SetTarget(x, y float64) {
	b.TargetX, b.TargetY = x, y
}

// Step moves the render position a constant fraction of the remaining gap.
// alpha must be in (0,1); the move is monotone and never overshoots.
func (b *Body) Step(alpha float64) {
	b.RenderX += (b.TargetX - b.RenderX) * alpha
	b.RenderY += (b.TargetY - b.RenderY) * alpha
}
