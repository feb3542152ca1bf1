package main

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

const (
	maxButtons = 16 // input-state frame carries a 16-bit button mask
	maxPots    = 8
	maxADC     = 65535
)

// ButtonConfig binds one digital input to a note.
type ButtonConfig struct {
	Pin  string `yaml:"pin"`
	Note uint8  `yaml:"note"`
}

// PotConfig binds one analog input to a controller number. Min and Max are
// the raw ADC readings at the two ends of travel; Max below Min reverses the
// pot.
type PotConfig struct {
	Pin string `yaml:"pin"`
	CC  uint8  `yaml:"cc"`
	Min int    `yaml:"min"`
	Max int    `yaml:"max"`
}

type MIDIConfig struct {
	Channel     uint8  `yaml:"channel"` // 0-15
	Port        string `yaml:"port"`    // output port name pattern, empty = auto
	VirtualPort string `yaml:"virtual_port"`
	Threshold   int    `yaml:"threshold"` // minimum pot change that emits a CC
}

type LEDConfig struct {
	BinaryPin       string        `yaml:"binary_pin"`
	PWMPin          string        `yaml:"pwm_pin"`
	PWMFrequency    uint64        `yaml:"pwm_frequency"`
	BinaryThreshold float64       `yaml:"binary_threshold"`
	BreathingSpeed  float64       `yaml:"breathing_speed"`
	BlinkDuration   time.Duration `yaml:"blink_duration"`
	Sweep           bool          `yaml:"sweep"`
}

type SerialConfig struct {
	Device           string        `yaml:"device"`
	Baud             int           `yaml:"baud"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
}

// Config is the static configuration of the controller. It is read once at
// startup and never mutated by the control loop.
type Config struct {
	Tick    time.Duration  `yaml:"tick"`
	Buttons []ButtonConfig `yaml:"buttons"`
	Pots    []PotConfig    `yaml:"pots"`
	MIDI    MIDIConfig     `yaml:"midi"`
	LED     LEDConfig      `yaml:"led"`
	Serial  SerialConfig   `yaml:"serial"`
}

// DefaultConfig returns the stock layout: nine buttons on GP0-GP8 playing a
// C major scale, three pots on GP26-GP28 sending CC 1-3.
func DefaultConfig() *Config {
	notes := []uint8{60, 62, 64, 65, 67, 69, 71, 72, 74}
	buttons := make([]ButtonConfig, len(notes))
	for i, n := range notes {
		buttons[i] = ButtonConfig{Pin: fmt.Sprintf("GP%d", i), Note: n}
	}
	pots := make([]PotConfig, 3)
	for i := range pots {
		pots[i] = PotConfig{Pin: fmt.Sprintf("GP%d", 26+i), CC: uint8(i + 1), Min: 4080, Max: maxADC}
	}
	return &Config{
		Tick:    10 * time.Millisecond,
		Buttons: buttons,
		Pots:    pots,
		MIDI: MIDIConfig{
			Channel:     0,
			VirtualPort: "pico-midi",
			Threshold:   1,
		},
		LED: LEDConfig{
			BinaryPin:       "GP9",
			PWMPin:          "LED",
			PWMFrequency:    1000,
			BinaryThreshold: 0.3,
			BreathingSpeed:  0.01,
			BlinkDuration:   600 * time.Millisecond,
			Sweep:           true,
		},
		Serial: SerialConfig{
			Device:           "/dev/ttyACM0",
			Baud:             115200,
			HandshakeTimeout: 500 * time.Millisecond,
		},
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate reports the first configuration error. A pot whose min equals its
// max cannot be rescaled and is rejected here rather than per sample.
func (c *Config) Validate() error {
	if c.Tick <= 0 {
		return invalid("tick must be positive, got %s", c.Tick)
	}
	if len(c.Buttons) > maxButtons {
		return invalid("%d buttons configured, at most %d supported", len(c.Buttons), maxButtons)
	}
	for i, b := range c.Buttons {
		if b.Note > 127 {
			return invalid("buttons[%d]: note %d out of range 0-127", i, b.Note)
		}
	}
	if len(c.Pots) > maxPots {
		return invalid("%d pots configured, at most %d supported", len(c.Pots), maxPots)
	}
	for i, p := range c.Pots {
		if p.CC > 127 {
			return invalid("pots[%d]: cc %d out of range 0-127", i, p.CC)
		}
		if p.Min == p.Max {
			return invalid("pots[%d]: min and max are both %d", i, p.Min)
		}
		if p.Min < 0 || p.Min > maxADC || p.Max < 0 || p.Max > maxADC {
			return invalid("pots[%d]: calibration %d..%d outside ADC range 0-%d", i, p.Min, p.Max, maxADC)
		}
	}
	if c.MIDI.Channel > 15 {
		return invalid("midi.channel %d out of range 0-15", c.MIDI.Channel)
	}
	if c.MIDI.Threshold < 1 {
		return invalid("midi.threshold must be at least 1, got %d", c.MIDI.Threshold)
	}
	if c.LED.BreathingSpeed <= 0 || c.LED.BreathingSpeed > 1 {
		return invalid("led.breathing_speed %g out of range (0,1]", c.LED.BreathingSpeed)
	}
	if c.LED.BlinkDuration <= 0 {
		return invalid("led.blink_duration must be positive, got %s", c.LED.BlinkDuration)
	}
	if c.LED.BinaryThreshold < 0 || c.LED.BinaryThreshold > 1 {
		return invalid("led.binary_threshold %g out of range [0,1]", c.LED.BinaryThreshold)
	}
	return nil
}
