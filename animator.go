package main

import (
	"math"
	"time"
)

const (
	breathFloor   = 0.2
	breathCeiling = 1.0

	// Breathing output is squeezed into [breathOffset, breathOffset+breathScale].
	breathScale  = 0.3
	breathOffset = 0.1
)

// Phase is the active LED animation.
type Phase int

const (
	Breathing Phase = iota
	Blinking
)

func (p Phase) String() string {
	if p == Blinking {
		return "blinking"
	}
	return "breathing"
}

// LEDAnimator produces one LED brightness per tick. It idles in a slow
// breathing cycle; Trigger starts a blink that fades 0→1→0 over
// BlinkDuration and then hands back to breathing.
type LEDAnimator struct {
	BreathingSpeed float64
	BlinkDuration  time.Duration

	brightness float64
	direction  float64
	blinking   bool
	blinkStart time.Time
}

func NewLEDAnimator(cfg LEDConfig) *LEDAnimator {
	return &LEDAnimator{
		BreathingSpeed: cfg.BreathingSpeed,
		BlinkDuration:  cfg.BlinkDuration,
		direction:      1,
	}
}

// Trigger (re)starts a blink at now. A blink already in progress starts over
// from dark.
func (a *LEDAnimator) Trigger(now time.Time) {
	a.blinking = true
	a.blinkStart = now
	a.brightness = 0
}

// Phase reports which animation Update would run at now.
func (a *LEDAnimator) Phase(now time.Time) Phase {
	if a.blinking && now.Sub(a.blinkStart) < a.BlinkDuration {
		return Blinking
	}
	return Breathing
}

// Update advances the animation by one tick and returns the brightness to
// show, in [0,1].
func (a *LEDAnimator) Update(now time.Time) float64 {
	if a.Phase(now) == Blinking {
		elapsed := now.Sub(a.blinkStart)
		if elapsed < 0 {
			elapsed = 0
		}
		progress := float64(elapsed) / float64(a.BlinkDuration)
		if progress < 0.5 {
			a.brightness = progress * 2
		} else {
			a.brightness = 2 - progress*2
		}
		return a.brightness
	}

	a.brightness += a.direction * a.BreathingSpeed
	if a.brightness >= breathCeiling {
		a.brightness = breathCeiling
		a.direction = -1
	} else if a.brightness <= breathFloor {
		a.brightness = breathFloor
		a.direction = 1
	}
	// ease in/out so the triangle wave reads as breathing
	shaped := (math.Sin((a.brightness-0.5)*math.Pi) + 1) / 2
	return shaped*breathScale + breathOffset
}

// Brightness is the internal level: the blink ramp while blinking, the
// triangle wave before shaping while breathing.
func (a *LEDAnimator) Brightness() float64 { return a.brightness }

func (a *LEDAnimator) Direction() float64 { return a.direction }
