//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults are used when empty)")
	serialDev := flag.String("serial", "", "serial device of the I/O board (overrides config)")
	baud := flag.Int("baud", 0, "serial baud rate (overrides config)")
	midiOut := flag.String("midi-out", "", "MIDI output port name (overrides config)")
	debug := flag.Bool("debug", false, "enable debug logging (adds source location)")
	list := flag.Bool("list", false, "list serial ports and MIDI outputs, then exit")
	flag.Parse()

	initLogger(*debug)

	if *list {
		listDevices()
		return
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = LoadConfig(*configPath)
		if err != nil {
			logger.Error("config load failed", "path", *configPath, "err", err)
			os.Exit(1)
		}
	}
	if *serialDev != "" {
		cfg.Serial.Device = *serialDev
	}
	if *baud != 0 {
		cfg.Serial.Baud = *baud
	}
	if *midiOut != "" {
		cfg.MIDI.Port = *midiOut
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	logger.Info("pico-midi starting",
		"serial", cfg.Serial.Device,
		"baud", cfg.Serial.Baud,
		"debug", *debug,
		"tick", cfg.Tick,
		"buttons", len(cfg.Buttons),
		"pots", len(cfg.Pots),
		"midi_channel", cfg.MIDI.Channel,
	)

	bridge, err := OpenBridge(cfg.Serial, len(cfg.Pots))
	if err != nil {
		logger.Error("serial: failed to open port", "device", cfg.Serial.Device, "err", err)
		os.Exit(1)
	}
	defer bridge.Close()

	if _, err := bridge.Handshake(cfg.Serial.HandshakeTimeout); err != nil {
		logger.Warn("bridge: handshake failed, LEDs disabled", "err", err)
	}

	hw := bridge.Hardware(cfg)

	out, err := OpenMIDIOut(cfg.MIDI)
	if err != nil {
		logger.Error("midi output init failed", "err", err)
		os.Exit(1)
	}
	defer out.Close()
	hw.MIDI = out

	ctrl, err := NewController(cfg, hw)
	if err != nil {
		logger.Error("controller init failed", "err", err)
		os.Exit(1)
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("control loop stopped", "err", err)
	}
	logger.Info("pico-midi stopped")
}

func listDevices() {
	ports, err := ListSerialPorts()
	if err != nil {
		logger.Error("listing serial ports failed", "err", err)
	}
	fmt.Println("serial ports:")
	for _, p := range ports {
		fmt.Println("  " + p)
	}
	outs, err := ListMIDIOutputs()
	if err != nil {
		logger.Error("listing MIDI outputs failed", "err", err)
	}
	fmt.Println("MIDI outputs:")
	for _, o := range outs {
		fmt.Println("  " + o)
	}
}
