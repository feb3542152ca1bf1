//go:build tinygo && bridge

package main

import (
	"context"
	"machine"
	"machine/usb"
)

// Built with -tags bridge the board only serves its pins over USB serial
// and the host runs the controller.
func main() {
	usb.Product = "pico-midi bridge"

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		return
	}

	// Log text shares the serial port; the host decoder skips it between frames.
	link := NewBoardLink(serialRW{machine.Serial}, boardHardware(cfg), cfg.Tick)
	logger.Info("bridge ready", "buttons", len(cfg.Buttons), "pots", len(cfg.Pots), "caps", link.Caps())
	if err := link.Serve(context.Background()); err != nil {
		logger.Error("bridge stopped", "err", err)
	}
}
