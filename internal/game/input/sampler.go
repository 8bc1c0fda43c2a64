// Package input fuses two analog sources (touch joysticks and keyboard)
// into one outgoing command per tick.
package input

import (
	"math"

	"deadgrid.app/internal/protocol"
)

// aimDeadZone matches the server's input filter: aim displacements below it
// are treated as "not aiming".
const aimDeadZone = 0.1

// DOM key codes the keyboard source reacts to.
const (
	KeyW       = "KeyW"
	KeyA       = "KeyA"
	KeyS       = "KeyS"
	KeyD       = "KeyD"
	ArrowUp    = "ArrowUp"
	ArrowDown  = "ArrowDown"
	ArrowLeft  = "ArrowLeft"
	ArrowRight = "ArrowRight"
	Space      = "Space"
)

// Keyboard tracks currently held keys. Fed by the host container's key
// events.
type Keyboard struct {
	down map[string]bool
}

func NewKeyboard() *Keyboard {
	return &Keyboard{down: map[string]bool{}}
}

func (k *Keyboard) KeyDown(code string) { k.down[code] = true }
func (k *Keyboard) KeyUp(code string)   { delete(k.down, code) }

// Reset drops all held keys (focus loss, teardown).
func (k *Keyboard) Reset() { clear(k.down) }

func (k *Keyboard) held(code string) bool { return k.down[code] }

// active reports whether any movement/aim/fire key is held; when true the
// keyboard fully overrides the joystick for the tick.
func (k *Keyboard) active() bool {
	for code := range k.down {
		switch code {
		case KeyW, KeyA, KeyS, KeyD, ArrowUp, ArrowDown, ArrowLeft, ArrowRight, Space:
			return true
		}
	}
	return false
}

// Joystick holds the latest touch-joystick displacement. Fed by the host
// container's touch handlers; zeroed when the stick is released.
type Joystick struct {
	MoveX, MoveY float64
	AimX, AimY   float64
	Firing       bool
}

func (j *Joystick) SetMove(x, y float64) { j.MoveX, j.MoveY = x, y }

func (j *Joystick) SetAim(x, y float64, firing bool) {
	j.AimX, j.AimY = x, y
	j.Firing = firing
}

func (j *Joystick) Release() {
	j.MoveX, j.MoveY = 0, 0
	j.AimX, j.AimY = 0, 0
	j.Firing = false
}

// Sampler fuses both sources into one command per tick.
type Sampler struct {
	Keyboard *Keyboard
	Joystick *Joystick

	seq             uint64
	lastAimX        float64
	lastAimY        float64
	haveAim         bool
	reloadRequested bool
}

func NewSampler() *Sampler {
	return &Sampler{
		Keyboard: NewKeyboard(),
		Joystick: &Joystick{},
	}
}

// RequestReload arms a one-shot reload flag consumed by the next Sample.
func (s *Sampler) RequestReload() { s.reloadRequested = true }

// Sample produces the outgoing command for this tick. Precedence is
// all-or-nothing: any held keyboard key overrides the joystick entirely.
// When neither source aims, the last known aim direction is reused so the
// facing never snaps to zero mid-session.
func (s *Sampler) Sample() *protocol.InputMsg {
	var moveX, moveY, aimX, aimY float64
	var firing bool

	if s.Keyboard.active() {
		moveX, moveY = s.keyboardMove()
		aimX, aimY = s.keyboardAim()
		firing = s.Keyboard.held(Space)
	} else {
		moveX, moveY = s.Joystick.MoveX, s.Joystick.MoveY
		if math.Abs(s.Joystick.AimX) > aimDeadZone || math.Abs(s.Joystick.AimY) > aimDeadZone {
			aimX, aimY = normalize(s.Joystick.AimX, s.Joystick.AimY)
		}
		firing = s.Joystick.Firing
	}

	if aimX != 0 || aimY != 0 {
		s.lastAimX, s.lastAimY = aimX, aimY
		s.haveAim = true
	} else if s.haveAim {
		aimX, aimY = s.lastAimX, s.lastAimY
	}
	// Never aimed: stays a zero vector.

	reload := s.reloadRequested
	s.reloadRequested = false

	s.seq++
	return protocol.NewInput(s.seq, moveX, moveY, aimX, aimY, firing, reload)
}

func (s *Sampler) keyboardMove() (float64, float64) {
	var x, y float64
	if s.Keyboard.held(KeyA) {
		x -= 1
	}
	if s.Keyboard.held(KeyD) {
		x += 1
	}
	if s.Keyboard.held(KeyW) {
		y -= 1
	}
	if s.Keyboard.held(KeyS) {
		y += 1
	}
	if x != 0 && y != 0 {
		return normalize(x, y)
	}
	return x, y
}

func (s *Sampler) keyboardAim() (float64, float64) {
	var x, y float64
	if s.Keyboard.held(ArrowLeft) {
		x -= 1
	}
	if s.Keyboard.held(ArrowRight) {
		x += 1
	}
	if s.Keyboard.held(ArrowUp) {
		y -= 1
	}
	if s.Keyboard.held(ArrowDown) {
		y += 1
	}
	if x != 0 && y != 0 {
		return normalize(x, y)
	}
	return x, y
}

func normalize(x, y float64) (float64, float64) {
	l := math.Hypot(x, y)
	if l == 0 {
		return 0, 0
	}
	return x / l, y / l
}
