package entity

import (
	"deadgrid.app/internal/protocol"
	"deadgrid.app/internal/render"
)

// Projectile mirrors one bullet in flight. Short-lived and fast; no
// attachments, higher smoothing factor than the walking classes.
type Projectile struct {
	Body
	State protocol.ProjectileState

	sprite render.Sprite
}

func (p *Projectile) Step(alpha float64) {
	p.Body.Step(alpha)
	if p.sprite != nil {
		p.sprite.SetPosition(p.RenderX, p.RenderY)
	}
}

type ProjectileClass struct {
	Scene render.Scene
}

func (c ProjectileClass) Create(s protocol.ProjectileState) *Projectile {
	p := &Projectile{State: s}
	p.Snap(s.X, s.Y)
	p.sprite = c.Scene.NewSprite("projectile")
	p.sprite.SetRotation(s.Angle)
	p.sprite.SetPosition(s.X, s.Y)
	return p
}

func (c ProjectileClass) Update(p *Projectile, s protocol.ProjectileState) {
	p.State = s
	p.SetTarget(s.X, s.Y)
	p.sprite.SetRotation(s.Angle)
}

func (c ProjectileClass) Release(p *Projectile) {
	if p.sprite == nil {
		return
	}
	p.sprite.Release()
	p.sprite = nil
}
