package main

import (
	"context"
	"fmt"
	"time"
)

// Hardware is everything the controller reads from and writes to. Buttons
// and Pots line up with Config.Buttons and Config.Pots by index; a nil entry
// is an input that failed to initialise and is never polled.
type Hardware struct {
	Buttons []DigitalInput
	Pots    []AnalogInput
	LEDs    LEDOutput
	MIDI    MIDISink
}

// Controller owns all state of the control loop. It is not safe for
// concurrent use; Run drives it from a single goroutine.
type Controller struct {
	tick     time.Duration
	buttons  []*ButtonChannel
	pots     []*PotChannel
	mapper   EventMapper
	animator *LEDAnimator
	hw       Hardware

	now func() time.Time
}

// NewController validates cfg and builds the per-channel state.
func NewController(cfg *Config, hw Hardware) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(hw.Buttons) != len(cfg.Buttons) {
		return nil, fmt.Errorf("controller: %d button inputs for %d configured buttons", len(hw.Buttons), len(cfg.Buttons))
	}
	if len(hw.Pots) != len(cfg.Pots) {
		return nil, fmt.Errorf("controller: %d pot inputs for %d configured pots", len(hw.Pots), len(cfg.Pots))
	}
	if hw.MIDI == nil {
		return nil, fmt.Errorf("controller: no MIDI sink")
	}

	c := &Controller{
		tick:     cfg.Tick,
		mapper:   EventMapper{Threshold: cfg.MIDI.Threshold},
		animator: NewLEDAnimator(cfg.LED),
		hw:       hw,
		now:      time.Now,
	}
	c.hw.LEDs.Threshold = cfg.LED.BinaryThreshold
	for i, b := range cfg.Buttons {
		c.buttons = append(c.buttons, NewButtonChannel(i, b))
	}
	for i, p := range cfg.Pots {
		c.pots = append(c.pots, NewPotChannel(i, p))
	}
	return c, nil
}

// Tick runs one iteration: LED animation first, then every button in index
// order, then every pot in index order.
func (c *Controller) Tick(now time.Time) {
	c.hw.LEDs.Set(c.animator.Update(now))

	for i, b := range c.buttons {
		in := c.hw.Buttons[i]
		if in == nil {
			continue
		}
		t, ok := b.Poll(in.Get())
		if !ok {
			continue
		}
		ev := c.mapper.Button(b, t)
		c.hw.MIDI.Send(ev)
		if t == Pressed {
			c.animator.Trigger(now)
		}
		logger.Debug("button", "index", b.Index, "transition", t, "event", ev)
	}

	for i, p := range c.pots {
		in := c.hw.Pots[i]
		if in == nil {
			continue
		}
		v := p.Read(int(in.Get()))
		ev, ok := c.mapper.Pot(p, v)
		if !ok {
			continue
		}
		c.hw.MIDI.Send(ev)
		logger.Debug("pot", "index", p.Index, "cc", p.CC, "value", v)
	}
}

// Run ticks every period until ctx is cancelled, then turns the LEDs off and
// returns ctx.Err().
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		c.Tick(c.now())
		select {
		case <-ctx.Done():
			c.hw.LEDs.Set(0)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LEDs exposes the output fan-out, for the startup sweep.
func (c *Controller) LEDs() *LEDOutput { return &c.hw.LEDs }
