package main

import (
	"math"
	"time"
)

// DigitalInput is one button pin. machine.Pin satisfies it.
type DigitalInput interface {
	Get() bool
}

// AnalogInput is one ADC channel returning 0-65535. machine.ADC satisfies it.
type AnalogInput interface {
	Get() uint16
}

// BinaryLED is an on/off output such as a MOSFET-switched strip.
type BinaryLED interface {
	Set(on bool)
}

// PWMLED is a dimmable output; duty is 0-65535.
type PWMLED interface {
	SetDuty(duty uint16)
}

const (
	sweepSteps = 20
	sweepDelay = 20 * time.Millisecond
)

// LEDOutput fans one brightness out to both status LEDs. A nil output was
// not available at startup and is skipped.
type LEDOutput struct {
	Binary    BinaryLED
	PWM       PWMLED
	Threshold float64 // binary LED is lit above this brightness

	sleep func(time.Duration)
}

// Set drives both LEDs from brightness b, clamped to [0,1].
func (o *LEDOutput) Set(b float64) {
	b = math.Max(0, math.Min(1, b))
	if o.Binary != nil {
		o.Binary.Set(b > o.Threshold)
	}
	if o.PWM != nil {
		o.PWM.SetDuty(uint16(math.Round(b * 65535)))
	}
}

// Sweep ramps the LEDs up and back down once, the power-on animation.
func (o *LEDOutput) Sweep() {
	sleep := o.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	for i := 0; i < sweepSteps; i++ {
		o.Set(float64(i) / sweepSteps)
		sleep(sweepDelay)
	}
	for i := sweepSteps; i > 0; i-- {
		o.Set(float64(i) / sweepSteps)
		sleep(sweepDelay)
	}
}

// Available names the LEDs that initialised, for the startup summary.
func (o *LEDOutput) Available() []string {
	var names []string
	if o.Binary != nil {
		names = append(names, "binary")
	}
	if o.PWM != nil {
		names = append(names, "pwm")
	}
	return names
}
