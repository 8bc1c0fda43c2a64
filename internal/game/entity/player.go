package entity

import (
	"deadgrid.app/internal/protocol"
	"deadgrid.app/internal/render"
)

// Animation clips shared by player and zombie sprites.
const (
	animIdle   = "idle"
	animWalk   = "walk"
	animShoot  = "shoot"
	animReload = "reload"
	animDead   = "dead"
)

// moveEpsilon separates "standing" from "walking" when deriving the clip
// from the position delta between two snapshots.
const moveEpsilon = 0.5

// Player is a remote or local player mirrored from server snapshots.
type Player struct {
	Body
	State protocol.PlayerState

	sprite    render.Sprite
	label     render.Sprite
	healthBar render.Bar
	reloadBar render.Bar
}

func (p *Player) Step(alpha float64) {
	p.Body.Step(alpha)
	p.syncVisuals()
}

func (p *Player) syncVisuals() {
	if p.sprite == nil {
		return
	}
	p.sprite.SetPosition(p.RenderX, p.RenderY)
	p.label.SetPosition(p.RenderX, p.RenderY-36)
	p.healthBar.SetPosition(p.RenderX, p.RenderY-28)
	p.reloadBar.SetPosition(p.RenderX, p.RenderY-22)
}

func (p *Player) releaseVisuals() {
	if p.sprite == nil {
		return
	}
	p.sprite.Release()
	p.label.Release()
	p.healthBar.Release()
	p.reloadBar.Release()
	p.sprite = nil
	p.label = nil
	p.healthBar = nil
	p.reloadBar = nil
}

// PlayerClass builds player visuals and folds snapshots into them.
type PlayerClass struct {
	Scene render.Scene
}

func (c PlayerClass) Create(s protocol.PlayerState) *Player {
	p := &Player{State: s}
	p.Snap(s.X, s.Y)
	p.sprite = c.Scene.NewSprite("player")
	p.label = c.Scene.NewLabel(s.Username)
	p.healthBar = c.Scene.NewBar()
	p.reloadBar = c.Scene.NewBar()
	c.apply(p, s, s)
	p.syncVisuals()
	return p
}

func (c PlayerClass) Update(p *Player, s protocol.PlayerState) {
	prev := p.State
	p.State = s
	p.SetTarget(s.X, s.Y)
	c.apply(p, s, prev)
}

// apply recomputes derived display state from the authoritative fields.
func (c PlayerClass) apply(p *Player, s, prev protocol.PlayerState) {
	p.sprite.SetRotation(s.AimAngle)

	dx := s.X - prev.X
	dy := s.Y - prev.Y
	moving := dx > moveEpsilon || dx < -moveEpsilon || dy > moveEpsilon || dy < -moveEpsilon

	switch {
	case s.IsDead:
		p.sprite.SetAnimation(animDead)
	case s.Reloading:
		p.sprite.SetAnimation(animReload)
	case s.Ammo < prev.Ammo:
		// The snapshot has no shooting flag; a shrinking magazine is the
		// authoritative trace of a shot.
		p.sprite.SetAnimation(animShoot)
	case moving:
		p.sprite.SetAnimation(animWalk)
	default:
		p.sprite.SetAnimation(animIdle)
	}

	if s.IsDead {
		p.sprite.SetAlpha(0.4)
	} else {
		p.sprite.SetAlpha(1.0)
	}

	p.healthBar.SetVisible(!s.IsDead)
	if s.MaxHP > 0 {
		p.healthBar.SetRatio(float64(s.HP) / float64(s.MaxHP))
	}
	p.reloadBar.SetVisible(s.Reloading)
	p.reloadBar.SetRatio(s.ReloadProgress)
}

func (c PlayerClass) Release(p *Player) { p.releaseVisuals() }
