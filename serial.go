//go:build !tinygo

package main

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
)

// ErrNoHandshake is returned by Handshake when the board does not answer.
var ErrNoHandshake = errors.New("bridge: no capabilities reply")

// Bridge is the serial link to the I/O board. A reader goroutine keeps the
// latest input snapshot; inputs handed out by Button and Pot read that
// snapshot, so they return the last good values if the link stalls. LED
// values are handed to a writer goroutine that sends only the latest one, so
// a stalled link never blocks the caller.
type Bridge struct {
	rw   io.ReadWriteCloser
	pots int

	mu    sync.Mutex
	state InputState
	caps  byte

	iomu sync.Mutex // serialises writes to rw

	wmu     sync.Mutex
	want    ledState
	sent    ledState
	ledsOff bool // link failed; LED writes are skipped
	ledCh   chan struct{}

	capsCh chan byte
	done   chan struct{}
	wdone  chan struct{}
	closed chan struct{}
	once   sync.Once
}

// ledState is one value per LED output. set has a Cap bit for every output
// the value is valid for.
type ledState struct {
	set  byte
	on   bool
	duty uint16
}

// OpenBridge opens the named serial device at the given baud rate.
func OpenBridge(cfg SerialConfig, pots int) (*Bridge, error) {
	mode := &serial.Mode{BaudRate: cfg.Baud}
	p, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("bridge: open %s: %w", cfg.Device, err)
	}
	if err := p.ResetInputBuffer(); err != nil {
		logger.Warn("bridge: reset input buffer failed", "device", cfg.Device, "err", err)
	}
	logger.Info("bridge: port opened", "device", cfg.Device, "baud", cfg.Baud)
	return NewBridge(p, pots), nil
}

// NewBridge starts reading frames from rw.
func NewBridge(rw io.ReadWriteCloser, pots int) *Bridge {
	b := &Bridge{
		rw:     rw,
		pots:   pots,
		state:  InputState{ADC: make([]uint16, pots)},
		ledCh:  make(chan struct{}, 1),
		capsCh: make(chan byte, 1),
		done:   make(chan struct{}),
		wdone:  make(chan struct{}),
		closed: make(chan struct{}),
	}
	go b.readLoop()
	go b.writeLoop()
	return b
}

func (b *Bridge) readLoop() {
	defer close(b.done)
	var dec FrameDecoder
	buf := make([]byte, 64)
	for {
		n, err := b.rw.Read(buf)
		for _, c := range buf[:n] {
			if f, ok := dec.Feed(c); ok {
				b.handle(f)
			}
		}
		if err != nil {
			select {
			case <-b.closed:
			default:
				logger.Error("bridge: read failed, inputs frozen at last values", "err", err, "dropped_frames", dec.Dropped)
			}
			return
		}
	}
}

func (b *Bridge) handle(f Frame) {
	switch f.Cmd {
	case CmdInputState:
		s, err := DecodeInputState(f.Payload, b.pots)
		if err != nil {
			logger.Debug("bridge: bad input frame", "err", err)
			return
		}
		b.mu.Lock()
		b.state = s
		b.mu.Unlock()
	case CmdCapabilities:
		if len(f.Payload) != 1 {
			logger.Debug("bridge: bad capabilities frame", "len", len(f.Payload))
			return
		}
		b.mu.Lock()
		b.caps = f.Payload[0]
		b.mu.Unlock()
		select {
		case b.capsCh <- f.Payload[0]:
		default:
		}
	default:
		logger.Debug("bridge: unhandled frame", "cmd", f.Cmd)
	}
}

// Handshake sends a hello and waits up to timeout for the board to report
// which LEDs it drives.
func (b *Bridge) Handshake(timeout time.Duration) (byte, error) {
	if err := b.write(Frame{Cmd: CmdHello}); err != nil {
		return 0, err
	}
	select {
	case caps := <-b.capsCh:
		logger.Info("bridge: handshake", "caps", caps)
		return caps, nil
	case <-time.After(timeout):
		return 0, ErrNoHandshake
	case <-b.done:
		return 0, ErrNoHandshake
	}
}

func (b *Bridge) write(f Frame) error {
	b.iomu.Lock()
	defer b.iomu.Unlock()
	if _, err := b.rw.Write(f.Encode()); err != nil {
		return fmt.Errorf("bridge: write: %w", err)
	}
	return nil
}

// Snapshot returns the most recent input state.
func (b *Bridge) Snapshot() InputState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

type bridgeButton struct {
	b *Bridge
	i int
}

func (in bridgeButton) Get() bool { return in.b.Snapshot().Button(in.i) }

type bridgePot struct {
	b *Bridge
	i int
}

func (in bridgePot) Get() uint16 {
	in.b.mu.Lock()
	defer in.b.mu.Unlock()
	return in.b.state.ADC[in.i]
}

// Button returns the input for button i.
func (b *Bridge) Button(i int) DigitalInput { return bridgeButton{b, i} }

// Pot returns the input for pot i.
func (b *Bridge) Pot(i int) AnalogInput { return bridgePot{b, i} }

// Hardware wires the bridge's inputs and LEDs for cfg. LEDs the board did
// not report are left nil; the MIDI sink is the caller's.
func (b *Bridge) Hardware(cfg *Config) Hardware {
	var hw Hardware
	for i := range cfg.Buttons {
		hw.Buttons = append(hw.Buttons, b.Button(i))
	}
	for i := range cfg.Pots {
		hw.Pots = append(hw.Pots, b.Pot(i))
	}
	if led, err := b.BinaryLED(); err != nil {
		logger.Warn("binary LED not available", "err", err)
	} else {
		hw.LEDs.Binary = led
	}
	if led, err := b.PWMLED(); err != nil {
		logger.Warn("PWM LED not available", "err", err)
	} else {
		hw.LEDs.PWM = led
	}
	return hw
}

type bridgeBinaryLED struct{ b *Bridge }

func (l bridgeBinaryLED) Set(on bool) { l.b.setLEDs(CapBinaryLED, on, 0) }

type bridgePWMLED struct{ b *Bridge }

func (l bridgePWMLED) SetDuty(duty uint16) { l.b.setLEDs(CapPWMLED, false, duty) }

// BinaryLED returns the board's on/off LED, or an error if the board did not
// report one.
func (b *Bridge) BinaryLED() (BinaryLED, error) {
	if !b.has(CapBinaryLED) {
		return nil, errors.New("bridge: board has no binary LED")
	}
	return bridgeBinaryLED{b}, nil
}

// PWMLED returns the board's dimmable LED, or an error if the board did not
// report one.
func (b *Bridge) PWMLED() (PWMLED, error) {
	if !b.has(CapPWMLED) {
		return nil, errors.New("bridge: board has no PWM LED")
	}
	return bridgePWMLED{b}, nil
}

func (b *Bridge) has(c byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caps&c != 0
}

// setLEDs records the value for the output selected by mask and wakes the
// writer. It never blocks on the link.
func (b *Bridge) setLEDs(mask byte, on bool, duty uint16) {
	b.wmu.Lock()
	if b.ledsOff {
		b.wmu.Unlock()
		return
	}
	b.want.set |= mask
	if mask == CapBinaryLED {
		b.want.on = on
	} else {
		b.want.duty = duty
	}
	b.wmu.Unlock()

	select {
	case b.ledCh <- struct{}{}:
	default:
	}
}

// writeLoop sends LED changes until the bridge closes, the reader exits or a
// write fails. After a failure LED values are dropped without retry.
func (b *Bridge) writeLoop() {
	defer close(b.wdone)
	for {
		select {
		case <-b.closed:
			return
		case <-b.done:
			b.stopLEDs(errors.New("bridge: reader stopped"))
			return
		case <-b.ledCh:
		}
		if err := b.flushLEDs(); err != nil {
			b.stopLEDs(err)
			return
		}
	}
}

// flushLEDs writes a frame for every output whose wanted value differs from
// the one last written.
func (b *Bridge) flushLEDs() error {
	b.wmu.Lock()
	want, sent := b.want, b.sent
	b.wmu.Unlock()

	if want.set&CapBinaryLED != 0 && (sent.set&CapBinaryLED == 0 || want.on != sent.on) {
		if err := b.write(LEDFrame(CapBinaryLED, want.on, 0)); err != nil {
			return err
		}
		sent.set |= CapBinaryLED
		sent.on = want.on
	}
	if want.set&CapPWMLED != 0 && (sent.set&CapPWMLED == 0 || want.duty != sent.duty) {
		if err := b.write(LEDFrame(CapPWMLED, false, want.duty)); err != nil {
			return err
		}
		sent.set |= CapPWMLED
		sent.duty = want.duty
	}

	b.wmu.Lock()
	b.sent = sent
	b.wmu.Unlock()
	return nil
}

func (b *Bridge) stopLEDs(err error) {
	b.wmu.Lock()
	b.ledsOff = true
	b.wmu.Unlock()
	select {
	case <-b.closed:
	default:
		logger.Warn("bridge: LED output disabled", "err", err)
	}
}

// ledsStopped reports whether LED writes have been given up on.
func (b *Bridge) ledsStopped() bool {
	b.wmu.Lock()
	defer b.wmu.Unlock()
	return b.ledsOff
}

// Close closes the port and waits for the reader and writer to exit.
func (b *Bridge) Close() error {
	var err error
	b.once.Do(func() {
		logger.Info("bridge: closing port")
		close(b.closed)
		err = b.rw.Close()
		<-b.done
		<-b.wdone
	})
	return err
}

// ListSerialPorts returns the serial devices present on the host.
func ListSerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
