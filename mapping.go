package main

const (
	pressVelocity   = 127
	releaseVelocity = 0
)

// EventMapper turns button transitions and conditioned pot values into MIDI
// events.
type EventMapper struct {
	// Threshold is the minimum change of a pot value that produces a CC.
	// With 1 every change is sent.
	Threshold int
}

// Button maps a transition on b to NoteOn on press and NoteOff on release.
func (m EventMapper) Button(b *ButtonChannel, t Transition) MIDIEvent {
	if t == Pressed {
		return NoteOn(b.Note, pressVelocity)
	}
	return NoteOff(b.Note, releaseVelocity)
}

// Pot returns a ControlChange for v when it differs from the last value sent
// for p by at least Threshold, and records v as sent. The first value seen for
// a pot is always sent.
func (m EventMapper) Pot(p *PotChannel, v int) (MIDIEvent, bool) {
	if p.last != noValue && abs(v-p.last) < m.Threshold {
		return MIDIEvent{}, false
	}
	p.last = v
	return ControlChange(p.CC, uint8(v)), true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
