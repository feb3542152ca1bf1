//go:build tinygo && !bridge

package main

import (
	"context"
	"machine/usb"
	usbmidi "machine/usb/adc/midi"
	"strings"
)

func main() {
	usb.Product = "pico-midi"

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		return
	}

	hw := boardHardware(cfg)
	hw.MIDI = usbMIDI{port: usbmidi.Port(), channel: cfg.MIDI.Channel}
	ctrl, err := NewController(cfg, hw)
	if err != nil {
		logger.Error("controller init failed", "err", err)
		return
	}
	if cfg.LED.Sweep {
		ctrl.LEDs().Sweep()
	}
	leds := ctrl.LEDs().Available()
	ledSummary := "none"
	if len(leds) > 0 {
		ledSummary = strings.Join(leds, ", ")
	}
	logger.Info("MIDI controller ready", "buttons", len(cfg.Buttons), "pots", len(cfg.Pots), "leds", ledSummary)

	ctrl.Run(context.Background())
}
