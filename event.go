package main

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// EventKind tags the variant held by a MIDIEvent.
type EventKind uint8

const (
	KindNoteOn EventKind = iota + 1
	KindNoteOff
	KindControlChange
)

// MIDIEvent is one outgoing channel message. For notes Data1 is the key and
// Data2 the velocity; for control changes Data1 is the controller and Data2
// the value.
type MIDIEvent struct {
	Kind  EventKind
	Data1 uint8
	Data2 uint8
}

func NoteOn(note, velocity uint8) MIDIEvent {
	return MIDIEvent{Kind: KindNoteOn, Data1: note, Data2: velocity}
}

func NoteOff(note, velocity uint8) MIDIEvent {
	return MIDIEvent{Kind: KindNoteOff, Data1: note, Data2: velocity}
}

func ControlChange(controller, value uint8) MIDIEvent {
	return MIDIEvent{Kind: KindControlChange, Data1: controller, Data2: value}
}

// Message encodes the event on the given channel (0-15).
func (e MIDIEvent) Message(channel uint8) midi.Message {
	switch e.Kind {
	case KindNoteOn:
		return midi.NoteOn(channel, e.Data1, e.Data2)
	case KindNoteOff:
		return midi.NoteOffVelocity(channel, e.Data1, e.Data2)
	case KindControlChange:
		return midi.ControlChange(channel, e.Data1, e.Data2)
	}
	return nil
}

func (e MIDIEvent) String() string {
	switch e.Kind {
	case KindNoteOn:
		return fmt.Sprintf("NoteOn(%d,%d)", e.Data1, e.Data2)
	case KindNoteOff:
		return fmt.Sprintf("NoteOff(%d,%d)", e.Data1, e.Data2)
	case KindControlChange:
		return fmt.Sprintf("ControlChange(%d,%d)", e.Data1, e.Data2)
	}
	return "MIDIEvent(?)"
}

// MIDISink receives outgoing events. Sends are fire-and-forget; a sink that
// can fail logs the failure itself.
type MIDISink interface {
	Send(ev MIDIEvent)
}
