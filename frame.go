package main

import (
	"encoding/binary"
	"fmt"
)

const (
	SOF0 = 0xAA
	SOF1 = 0x55

	CmdHello        = 0x01 // host → board
	CmdCapabilities = 0x02 // board → host
	CmdInputState   = 0x11 // board → host
	CmdSetLEDs      = 0x20 // host → board

	maxPayload = 32
)

// Capability bits reported by the board in reply to CmdHello.
const (
	CapBinaryLED byte = 1 << iota
	CapPWMLED
)

// Frame is one message on the serial link to the I/O board.
type Frame struct {
	Cmd     byte
	Payload []byte
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][payload...][CKS]
//
// LEN counts CMD plus payload; CKS is LEN ^ CMD ^ every payload byte.
func (f Frame) Encode() []byte {
	length := byte(len(f.Payload) + 1)
	cks := length ^ f.Cmd
	for _, b := range f.Payload {
		cks ^= b
	}
	out := make([]byte, 0, len(f.Payload)+5)
	out = append(out, SOF0, SOF1, length, f.Cmd)
	out = append(out, f.Payload...)
	out = append(out, cks)
	return out
}

type decodeState int

const (
	waitSOF0 decodeState = iota
	waitSOF1
	waitLen
	readBody
	waitCks
)

// FrameDecoder reassembles frames from a byte stream. Bytes outside a frame
// are skipped and a frame with a bad length or checksum is dropped; decoding
// resumes at the next SOF.
type FrameDecoder struct {
	state   decodeState
	length  int
	body    []byte
	Dropped int
}

// Feed consumes one byte and returns a frame when b completes one.
func (d *FrameDecoder) Feed(b byte) (Frame, bool) {
	switch d.state {
	case waitSOF0:
		if b == SOF0 {
			d.state = waitSOF1
		}
	case waitSOF1:
		switch b {
		case SOF1:
			d.state = waitLen
		case SOF0:
		default:
			d.state = waitSOF0
		}
	case waitLen:
		if b < 1 || int(b) > maxPayload+1 {
			d.Dropped++
			d.state = waitSOF0
			return Frame{}, false
		}
		d.length = int(b)
		d.body = d.body[:0]
		d.state = readBody
	case readBody:
		d.body = append(d.body, b)
		if len(d.body) == d.length {
			d.state = waitCks
		}
	case waitCks:
		d.state = waitSOF0
		cks := byte(d.length)
		for _, x := range d.body {
			cks ^= x
		}
		if cks != b {
			d.Dropped++
			return Frame{}, false
		}
		payload := make([]byte, len(d.body)-1)
		copy(payload, d.body[1:])
		return Frame{Cmd: d.body[0], Payload: payload}, true
	}
	return Frame{}, false
}

// InputState is one snapshot of every input on the board.
type InputState struct {
	Buttons uint16   // bit N set = button N reads high
	ADC     []uint16 // one raw reading per pot
}

// Button reports the level of button i.
func (s InputState) Button(i int) bool {
	return s.Buttons&(1<<uint(i)) != 0
}

// Frame encodes the snapshot as a CmdInputState frame.
func (s InputState) Frame() Frame {
	p := make([]byte, 2+2*len(s.ADC))
	binary.LittleEndian.PutUint16(p, s.Buttons)
	for i, v := range s.ADC {
		binary.BigEndian.PutUint16(p[2+2*i:], v)
	}
	return Frame{Cmd: CmdInputState, Payload: p}
}

// DecodeInputState parses a CmdInputState payload carrying pots readings.
func DecodeInputState(payload []byte, pots int) (InputState, error) {
	if want := 2 + 2*pots; len(payload) != want {
		return InputState{}, fmt.Errorf("input state: %d bytes, want %d", len(payload), want)
	}
	s := InputState{
		Buttons: binary.LittleEndian.Uint16(payload),
		ADC:     make([]uint16, pots),
	}
	for i := range s.ADC {
		s.ADC[i] = binary.BigEndian.Uint16(payload[2+2*i:])
	}
	return s, nil
}

// LEDFrame builds a CmdSetLEDs frame. mask selects which of the two outputs
// the board should apply.
func LEDFrame(mask byte, on bool, duty uint16) Frame {
	var b byte
	if on {
		b = 1
	}
	return Frame{Cmd: CmdSetLEDs, Payload: []byte{mask, b, byte(duty >> 8), byte(duty)}}
}
