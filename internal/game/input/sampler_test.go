package input

import (
	"math"
	"testing"
)

func TestSample_JoystickMovePassedVerbatim(t *testing.T) {
	s := NewSampler()
	s.Joystick.SetMove(0.5, -0.5)

	in := s.Sample()
	if in.MoveX != 0.5 || in.MoveY != -0.5 {
		t.Fatalf("move = (%v,%v), joystick magnitude must survive", in.MoveX, in.MoveY)
	}
}

func TestSample_KeyboardOverridesJoystickEntirely(t *testing.T) {
	s := NewSampler()
	s.Joystick.SetMove(0.5, 0.5)
	s.Joystick.SetAim(1, 0, true)
	s.Keyboard.KeyDown(KeyA)

	in := s.Sample()
	if in.MoveX != -1 || in.MoveY != 0 {
		t.Fatalf("move = (%v,%v), want (-1,0)", in.MoveX, in.MoveY)
	}
	// No arrow key held: keyboard aim is zero, joystick aim must not leak.
	if in.AimX != 0 || in.AimY != 0 {
		t.Fatalf("aim = (%v,%v), joystick aim leaked through", in.AimX, in.AimY)
	}
	if in.Shooting {
		t.Fatal("joystick firing leaked through keyboard override")
	}
}

func TestSample_DiagonalMoveNormalized(t *testing.T) {
	s := NewSampler()
	s.Keyboard.KeyDown(KeyW)
	s.Keyboard.KeyDown(KeyD)

	in := s.Sample()
	want := 1 / math.Sqrt2
	if math.Abs(in.MoveX-want) > 1e-9 || math.Abs(in.MoveY+want) > 1e-9 {
		t.Fatalf("move = (%v,%v), want (%v,%v)", in.MoveX, in.MoveY, want, -want)
	}
}

func TestSample_AimDeadZone(t *testing.T) {
	s := NewSampler()
	s.Joystick.SetAim(0.05, 0.05, false)

	in := s.Sample()
	if in.AimX != 0 || in.AimY != 0 {
		t.Fatalf("aim = (%v,%v), displacement inside dead zone must not aim", in.AimX, in.AimY)
	}

	s.Joystick.SetAim(0.6, 0.8, false)
	in = s.Sample()
	if math.Abs(in.AimX-0.6) > 1e-9 || math.Abs(in.AimY-0.8) > 1e-9 {
		t.Fatalf("aim = (%v,%v), want unit (0.6,0.8)", in.AimX, in.AimY)
	}
}

func TestSample_LastAimPersists(t *testing.T) {
	s := NewSampler()
	s.Joystick.SetAim(1, 0, true)
	s.Sample()

	s.Joystick.Release()
	in := s.Sample()
	if in.AimX != 1 || in.AimY != 0 {
		t.Fatalf("aim = (%v,%v), facing must hold after the stick is released", in.AimX, in.AimY)
	}
	if in.Shooting {
		t.Fatal("firing must not persist with the stick released")
	}
}

func TestSample_NeverAimedStaysZero(t *testing.T) {
	s := NewSampler()
	in := s.Sample()
	if in.AimX != 0 || in.AimY != 0 {
		t.Fatalf("aim = (%v,%v), want zero before any aim input", in.AimX, in.AimY)
	}
}

func TestSample_SpaceFires(t *testing.T) {
	s := NewSampler()
	s.Keyboard.KeyDown(Space)
	if in := s.Sample(); !in.Shooting {
		t.Fatal("space held, want shooting")
	}
	s.Keyboard.KeyUp(Space)
	if in := s.Sample(); in.Shooting {
		t.Fatal("space released, want not shooting")
	}
}

func TestSample_ReloadOneShot(t *testing.T) {
	s := NewSampler()
	s.RequestReload()

	if in := s.Sample(); !in.Reload {
		t.Fatal("first sample after request must carry reload")
	}
	if in := s.Sample(); in.Reload {
		t.Fatal("reload must clear after one sample")
	}
}

func TestSample_SeqMonotonic(t *testing.T) {
	s := NewSampler()
	var prev uint64
	for i := 0; i < 10; i++ {
		in := s.Sample()
		if in.Seq <= prev {
			t.Fatalf("seq %d after %d", in.Seq, prev)
		}
		prev = in.Seq
	}
}

func TestKeyboard_ResetDropsHeldKeys(t *testing.T) {
	s := NewSampler()
	s.Keyboard.KeyDown(KeyW)
	s.Keyboard.KeyDown(Space)
	s.Keyboard.Reset()

	in := s.Sample()
	if in.MoveX != 0 || in.MoveY != 0 || in.Shooting {
		t.Fatalf("sample after reset = %+v", in)
	}
}
