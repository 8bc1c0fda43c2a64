package entity

import (
	"math"

	"deadgrid.app/internal/protocol"
	"deadgrid.app/internal/render"
)

// baseZombieSize is the collision radius the art is authored against; the
// server's size field scales relative to it (tanks and bosses are bigger).
const baseZombieSize = 20.0

// Zombie mirrors one hostile from server snapshots.
type Zombie struct {
	Body
	State protocol.ZombieState

	sprite    render.Sprite
	healthBar render.Bar
}

func (z *Zombie) Step(alpha float64) {
	z.Body.Step(alpha)
	z.syncVisuals()
}

func (z *Zombie) syncVisuals() {
	if z.sprite == nil {
		return
	}
	z.sprite.SetPosition(z.RenderX, z.RenderY)
	z.healthBar.SetPosition(z.RenderX, z.RenderY-z.State.Size-8)
}

func (z *Zombie) releaseVisuals() {
	if z.sprite == nil {
		return
	}
	z.sprite.Release()
	z.healthBar.Release()
	z.sprite = nil
	z.healthBar = nil
}

// ZombieClass builds hostile visuals keyed by the server's zombie type
// (normal, fast, tank, boss).
type ZombieClass struct {
	Scene render.Scene
}

func (c ZombieClass) Create(s protocol.ZombieState) *Zombie {
	z := &Zombie{State: s}
	z.Snap(s.X, s.Y)
	z.sprite = c.Scene.NewSprite("zombie_" + s.Kind)
	z.healthBar = c.Scene.NewBar()
	c.apply(z, s, s)
	z.syncVisuals()
	return z
}

func (c ZombieClass) Update(z *Zombie, s protocol.ZombieState) {
	prev := z.State
	z.State = s
	z.SetTarget(s.X, s.Y)
	c.apply(z, s, prev)
}

func (c ZombieClass) apply(z *Zombie, s, prev protocol.ZombieState) {
	if s.Size > 0 {
		z.sprite.SetScale(s.Size / baseZombieSize)
	}

	dx := s.X - prev.X
	dy := s.Y - prev.Y
	if dx > moveEpsilon || dx < -moveEpsilon || dy > moveEpsilon || dy < -moveEpsilon {
		z.sprite.SetRotation(math.Atan2(dy, dx))
		z.sprite.SetAnimation(animWalk)
	} else {
		z.sprite.SetAnimation(animIdle)
	}

	// Health bar appears once the zombie has taken damage.
	z.healthBar.SetVisible(s.HP < s.MaxHP)
	if s.MaxHP > 0 {
		z.healthBar.SetRatio(float64(s.HP) / float64(s.MaxHP))
	}
}

func (c ZombieClass) Release(z *Zombie) { z.releaseVisuals() }
