//go:build !tinygo

package main

import (
	"fmt"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// PREFERRED_PATTERNS: when no port is configured, outputs matching any of
// these are picked first.
var PREFERRED_PATTERNS = []string{"loopMIDI", "IAC"}

// EXCLUDED_PATTERNS: virtual/system ports that are never auto-connected.
var EXCLUDED_PATTERNS = []string{"Midi Through", "Through Port", "Dummy"}

const midiRescanInterval = 1000 * time.Millisecond

// MIDIOut sends controller events to an rtmidi output port. When a send
// fails the port is treated as gone and reopened at most once per
// midiRescanInterval; events in between are dropped.
type MIDIOut struct {
	drv     *rtmididrv.Driver
	port    drivers.Out
	send    func(msg midi.Message) error
	channel uint8

	reopen   func() (drivers.Out, error)
	lost     bool
	lastScan time.Time
	now      func() time.Time
}

// OpenMIDIOut opens the configured output port, or a preferred one, or
// failing both a virtual output named cfg.VirtualPort.
func OpenMIDIOut(cfg MIDIConfig) (*MIDIOut, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}

	port, err := selectOutput(drv, cfg)
	if err != nil {
		drv.Close()
		return nil, err
	}

	m, err := newMIDIOut(port, cfg.Channel)
	if err != nil {
		drv.Close()
		return nil, err
	}
	m.drv = drv
	m.reopen = func() (drivers.Out, error) { return selectOutput(drv, cfg) }
	logger.Info("midi: output connected", "port", port.String(), "channel", cfg.Channel)
	return m, nil
}

// selectOutput picks the configured port, or a preferred one, or failing
// both opens a virtual output named cfg.VirtualPort.
func selectOutput(drv *rtmididrv.Driver, cfg MIDIConfig) (drivers.Out, error) {
	outs, err := drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("midi: list outputs: %w", err)
	}
	var names []string
	byName := map[string]drivers.Out{}
	for _, o := range outs {
		names = append(names, o.String())
		byName[o.String()] = o
	}

	if name, ok := pickOutput(filterOutputs(names), cfg.Port); ok {
		return byName[name], nil
	}
	if cfg.Port != "" {
		return nil, fmt.Errorf("midi: output %q not found", cfg.Port)
	}
	port, err := drv.OpenVirtualOut(cfg.VirtualPort)
	if err != nil {
		return nil, fmt.Errorf("midi: open virtual output %q: %w", cfg.VirtualPort, err)
	}
	logger.Info("midi: virtual output opened", "port", cfg.VirtualPort)
	return port, nil
}

func newMIDIOut(port drivers.Out, channel uint8) (*MIDIOut, error) {
	send, err := midi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("midi: open %q: %w", port.String(), err)
	}
	return &MIDIOut{port: port, send: send, channel: channel, now: time.Now}, nil
}

// Send writes ev to the port. Failures are logged and dropped; the first
// failure marks the port lost until a rescan reopens it.
func (m *MIDIOut) Send(ev MIDIEvent) {
	if m.lost && !m.reconnect() {
		return
	}
	msg := ev.Message(m.channel)
	if err := m.send(msg); err != nil {
		logger.Warn("midi: output lost, rescanning", "port", m.port.String(), "event", ev, "err", err)
		m.lost = true
		m.lastScan = m.now()
		_ = m.port.Close()
		return
	}
	logger.Debug("midi: sent", "msg", msg.String())
}

// reconnect tries to reopen the output if the rescan interval has passed.
func (m *MIDIOut) reconnect() bool {
	t := m.now()
	if m.reopen == nil || t.Sub(m.lastScan) < midiRescanInterval {
		return false
	}
	m.lastScan = t

	port, err := m.reopen()
	if err != nil {
		logger.Debug("midi: rescan found no output", "err", err)
		return false
	}
	send, err := midi.SendTo(port)
	if err != nil {
		logger.Debug("midi: reopen failed", "port", port.String(), "err", err)
		return false
	}
	m.port, m.send, m.lost = port, send, false
	logger.Info("midi: output reconnected", "port", port.String())
	return true
}

// Close closes the port and the rtmidi driver.
func (m *MIDIOut) Close() {
	logger.Info("midi: closing output")
	_ = m.port.Close()
	if m.drv != nil {
		m.drv.Close()
	}
}

// ListMIDIOutputs returns the names of all rtmidi outputs.
func ListMIDIOutputs() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	defer drv.Close()
	outs, err := drv.Outs()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(outs))
	for _, o := range outs {
		names = append(names, o.String())
	}
	return names, nil
}

func filterOutputs(names []string) []string {
	var out []string
	for _, name := range names {
		excluded := false
		for _, pat := range EXCLUDED_PATTERNS {
			if containsCI(name, pat) {
				excluded = true
				break
			}
		}
		if excluded {
			logger.Debug("midi: output excluded", "port", name)
			continue
		}
		out = append(out, name)
	}
	logger.Debug("midi: outputs found", "count", len(out), "ports", strings.Join(out, ", "))
	return out
}

// pickOutput returns the first output matching want, or with want empty the
// first matching a preferred pattern.
func pickOutput(names []string, want string) (string, bool) {
	if want != "" {
		for _, name := range names {
			if name == want {
				return name, true
			}
		}
		for _, name := range names {
			if containsCI(name, want) {
				return name, true
			}
		}
		return "", false
	}
	for _, pat := range PREFERRED_PATTERNS {
		for _, name := range names {
			if containsCI(name, pat) {
				return name, true
			}
		}
	}
	return "", false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
