package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// BoardLink is the board end of the serial bridge. It answers CmdHello with
// the LEDs it drives, sends an InputState every Period and applies
// CmdSetLEDs frames to its LEDs.
type BoardLink struct {
	Buttons []DigitalInput
	Pots    []AnalogInput
	Binary  BinaryLED
	PWM     PWMLED
	Period  time.Duration

	rw  io.ReadWriter
	wmu sync.Mutex
}

// NewBoardLink serves hw over rw. hw.MIDI is not used.
func NewBoardLink(rw io.ReadWriter, hw Hardware, period time.Duration) *BoardLink {
	return &BoardLink{
		Buttons: hw.Buttons,
		Pots:    hw.Pots,
		Binary:  hw.LEDs.Binary,
		PWM:     hw.LEDs.PWM,
		Period:  period,
		rw:      rw,
	}
}

// Caps returns the capability bits for the LEDs present.
func (l *BoardLink) Caps() byte {
	var caps byte
	if l.Binary != nil {
		caps |= CapBinaryLED
	}
	if l.PWM != nil {
		caps |= CapPWMLED
	}
	return caps
}

// Serve streams inputs and handles host frames until ctx is cancelled or the
// link fails.
func (l *BoardLink) Serve(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- l.readLoop(ctx) }()

	ticker := time.NewTicker(l.Period)
	defer ticker.Stop()
	for {
		if err := l.write(l.Snapshot().Frame()); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case <-ticker.C:
		}
	}
}

func (l *BoardLink) readLoop(ctx context.Context) error {
	var dec FrameDecoder
	buf := make([]byte, 64)
	for ctx.Err() == nil {
		n, err := l.rw.Read(buf)
		for _, c := range buf[:n] {
			if f, ok := dec.Feed(c); ok {
				if err := l.handle(f); err != nil {
					return err
				}
			}
		}
		if err != nil {
			return fmt.Errorf("board link: read: %w", err)
		}
		if n == 0 {
			// non-blocking serial drivers return empty reads
			time.Sleep(time.Millisecond)
		}
	}
	return ctx.Err()
}

func (l *BoardLink) handle(f Frame) error {
	switch f.Cmd {
	case CmdHello:
		return l.write(Frame{Cmd: CmdCapabilities, Payload: []byte{l.Caps()}})
	case CmdSetLEDs:
		if len(f.Payload) != 4 {
			logger.Debug("board link: bad LED frame", "len", len(f.Payload))
			return nil
		}
		mask := f.Payload[0]
		if mask&CapBinaryLED != 0 && l.Binary != nil {
			l.Binary.Set(f.Payload[1] != 0)
		}
		if mask&CapPWMLED != 0 && l.PWM != nil {
			l.PWM.SetDuty(uint16(f.Payload[2])<<8 | uint16(f.Payload[3]))
		}
	default:
		logger.Debug("board link: unhandled frame", "cmd", f.Cmd)
	}
	return nil
}

// Snapshot reads every input once. Missing inputs read idle.
func (l *BoardLink) Snapshot() InputState {
	s := InputState{ADC: make([]uint16, len(l.Pots))}
	for i, b := range l.Buttons {
		if b != nil && b.Get() {
			s.Buttons |= 1 << uint(i)
		}
	}
	for i, p := range l.Pots {
		if p != nil {
			s.ADC[i] = p.Get()
		}
	}
	return s
}

func (l *BoardLink) write(f Frame) error {
	l.wmu.Lock()
	defer l.wmu.Unlock()
	if _, err := l.rw.Write(f.Encode()); err != nil {
		return fmt.Errorf("board link: write: %w", err)
	}
	return nil
}
