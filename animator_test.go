package main

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestAnimator() *LEDAnimator {
	return NewLEDAnimator(DefaultConfig().LED)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLEDAnimator_CeilingFlipsDirection(t *testing.T) {
	a := newTestAnimator()
	a.brightness = 1.0
	a.direction = 1

	out := a.Update(t0)
	if a.Brightness() != 1.0 {
		t.Fatalf("brightness = %v, want 1.0", a.Brightness())
	}
	if a.Direction() != -1 {
		t.Fatalf("direction = %v, want -1", a.Direction())
	}
	if !near(out, 0.4) {
		t.Fatalf("output at ceiling = %v, want 0.4", out)
	}
}

func TestLEDAnimator_FloorFlipsDirection(t *testing.T) {
	a := newTestAnimator()
	a.brightness = 0.205
	a.direction = -1

	a.Update(t0)
	if a.Brightness() != breathFloor || a.Direction() != 1 {
		t.Fatalf("brightness=%v direction=%v, want %v and 1", a.Brightness(), a.Direction(), breathFloor)
	}
}

func TestLEDAnimator_BreathingRange(t *testing.T) {
	a := newTestAnimator()
	now := t0
	for i := 0; i < 500; i++ {
		out := a.Update(now)
		if out < breathOffset || out > breathOffset+breathScale+1e-9 {
			t.Fatalf("tick %d: output %v outside [0.1,0.4]", i, out)
		}
		if b := a.Brightness(); b < breathFloor || b > breathCeiling {
			t.Fatalf("tick %d: internal brightness %v outside [0.2,1]", i, b)
		}
		now = now.Add(10 * time.Millisecond)
	}
}

func TestLEDAnimator_Blink(t *testing.T) {
	a := newTestAnimator()
	a.Update(t0)
	a.Trigger(t0)
	if a.Brightness() != 0 {
		t.Fatalf("brightness after trigger = %v", a.Brightness())
	}

	tests := []struct {
		at   time.Duration
		want float64
	}{
		{0, 0},
		{150 * time.Millisecond, 0.5},
		{300 * time.Millisecond, 1.0},
		{450 * time.Millisecond, 0.5},
	}
	for _, tt := range tests {
		now := t0.Add(tt.at)
		if a.Phase(now) != Blinking {
			t.Fatalf("t=%s: phase %v, want blinking", tt.at, a.Phase(now))
		}
		if got := a.Update(now); !near(got, tt.want) {
			t.Fatalf("t=%s: brightness %v, want %v", tt.at, got, tt.want)
		}
	}

	end := t0.Add(600 * time.Millisecond)
	if a.Phase(end) != Breathing {
		t.Fatalf("t=600ms: phase %v, want breathing", a.Phase(end))
	}
	out := a.Update(end)
	if b := a.Brightness(); b < breathFloor || b > breathCeiling {
		t.Fatalf("resumed breathing from %v", b)
	}
	if out < breathOffset || out > breathOffset+breathScale+1e-9 {
		t.Fatalf("breathing output %v", out)
	}
}

func TestLEDAnimator_RetriggerRestarts(t *testing.T) {
	a := newTestAnimator()
	a.Trigger(t0)
	a.Update(t0.Add(300 * time.Millisecond))

	again := t0.Add(400 * time.Millisecond)
	a.Trigger(again)
	if a.Brightness() != 0 {
		t.Fatalf("brightness after retrigger = %v", a.Brightness())
	}
	// Still blinking past the first blink's end.
	late := t0.Add(700 * time.Millisecond)
	if a.Phase(late) != Blinking {
		t.Fatalf("phase at 700ms = %v, want blinking", a.Phase(late))
	}
	if got := a.Update(late); !near(got, 1.0) {
		t.Fatalf("brightness at retrigger midpoint = %v, want 1.0", got)
	}
}

func TestLEDAnimator_InitialPhase(t *testing.T) {
	a := newTestAnimator()
	if a.Phase(t0) != Breathing {
		t.Fatalf("initial phase = %v", a.Phase(t0))
	}
	a.Update(t0)
	if a.Brightness() != breathFloor {
		t.Fatalf("first tick brightness = %v, want %v", a.Brightness(), breathFloor)
	}
}

func TestLEDAnimator_BlinkAtZeroTime(t *testing.T) {
	var zero time.Time
	a := newTestAnimator()
	a.Trigger(zero)
	if a.Phase(zero.Add(300*time.Millisecond)) != Blinking {
		t.Fatal("blink triggered at the zero time was ignored")
	}
	if b := a.Update(zero.Add(300 * time.Millisecond)); !near(b, 1) {
		t.Fatalf("brightness at blink midpoint = %v, want 1", b)
	}
}
