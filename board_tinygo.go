//go:build tinygo

package main

import (
	"fmt"
	"io"
	"machine"
)

var pins = map[string]machine.Pin{
	"GP0": machine.GP0, "GP1": machine.GP1, "GP2": machine.GP2, "GP3": machine.GP3,
	"GP4": machine.GP4, "GP5": machine.GP5, "GP6": machine.GP6, "GP7": machine.GP7,
	"GP8": machine.GP8, "GP9": machine.GP9, "GP10": machine.GP10, "GP11": machine.GP11,
	"GP12": machine.GP12, "GP13": machine.GP13, "GP14": machine.GP14, "GP15": machine.GP15,
	"GP16": machine.GP16, "GP17": machine.GP17, "GP18": machine.GP18, "GP19": machine.GP19,
	"GP20": machine.GP20, "GP21": machine.GP21, "GP22": machine.GP22,
	"GP26": machine.GP26, "GP27": machine.GP27, "GP28": machine.GP28,
	"LED": machine.LED,
}

func pin(name string) (machine.Pin, error) {
	p, ok := pins[name]
	if !ok {
		return machine.NoPin, fmt.Errorf("unknown pin %q", name)
	}
	return p, nil
}

type pwmSlice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Set(channel uint8, value uint32)
	Top() uint32
}

var pwmSlices = [...]pwmSlice{
	machine.PWM0, machine.PWM1, machine.PWM2, machine.PWM3,
	machine.PWM4, machine.PWM5, machine.PWM6, machine.PWM7,
}

type pinLED struct{ p machine.Pin }

func (l pinLED) Set(on bool) { l.p.Set(on) }

type pwmLED struct {
	pwm pwmSlice
	ch  uint8
}

func (l pwmLED) SetDuty(duty uint16) {
	l.pwm.Set(l.ch, uint32(uint64(duty)*uint64(l.pwm.Top())/65535))
}

func openBinaryLED(name string) (BinaryLED, error) {
	p, err := pin(name)
	if err != nil {
		return nil, err
	}
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return pinLED{p}, nil
}

// openPWMLED fails on boards where the LED is not a GPIO (Pico W).
func openPWMLED(name string, freq uint64) (PWMLED, error) {
	p, err := pin(name)
	if err != nil {
		return nil, err
	}
	slice, err := machine.PWMPeripheral(p)
	if err != nil {
		return nil, err
	}
	pwm := pwmSlices[slice]
	if err := pwm.Configure(machine.PWMConfig{Period: 1e9 / freq}); err != nil {
		return nil, err
	}
	ch, err := pwm.Channel(p)
	if err != nil {
		return nil, err
	}
	return pwmLED{pwm: pwm, ch: ch}, nil
}

// boardHardware configures the pins named in cfg. Inputs or LEDs that fail
// are logged and left nil. The MIDI sink is set by the caller.
func boardHardware(cfg *Config) Hardware {
	var hw Hardware
	for i, b := range cfg.Buttons {
		p, err := pin(b.Pin)
		if err != nil {
			logger.Warn("button not available", "index", i, "err", err)
			hw.Buttons = append(hw.Buttons, nil)
			continue
		}
		p.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
		hw.Buttons = append(hw.Buttons, p)
	}

	machine.InitADC()
	for i, pc := range cfg.Pots {
		p, err := pin(pc.Pin)
		if err == nil {
			adc := machine.ADC{Pin: p}
			if err = adc.Configure(machine.ADCConfig{}); err == nil {
				hw.Pots = append(hw.Pots, adc)
				continue
			}
		}
		logger.Warn("pot not available", "index", i, "err", err)
		hw.Pots = append(hw.Pots, nil)
	}

	if led, err := openBinaryLED(cfg.LED.BinaryPin); err != nil {
		logger.Warn("binary LED not available", "pin", cfg.LED.BinaryPin, "err", err)
	} else {
		hw.LEDs.Binary = led
	}
	if led, err := openPWMLED(cfg.LED.PWMPin, cfg.LED.PWMFrequency); err != nil {
		logger.Warn("PWM LED not available", "pin", cfg.LED.PWMPin, "err", err)
	} else {
		hw.LEDs.PWM = led
	}
	return hw
}

const usbCable = 0

// usbMIDI sends events over the USB MIDI class device as 4-byte
// USB-MIDI event packets.
type usbMIDI struct {
	port    io.Writer
	channel uint8
	pkt     [4]byte
}

func (u usbMIDI) Send(ev MIDIEvent) {
	msg := ev.Message(u.channel)
	if len(msg) != 3 {
		return
	}
	u.pkt[0] = usbCable<<4 | msg[0]>>4 // code index = status nibble for channel voice
	u.pkt[1], u.pkt[2], u.pkt[3] = msg[0], msg[1], msg[2]
	if _, err := u.port.Write(u.pkt[:]); err != nil {
		logger.Warn("usb midi: send failed", "event", ev, "err", err)
	}
}

// serialRW reads whatever the serial device has buffered without blocking.
type serialRW struct{ machine.Serialer }

func (s serialRW) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && s.Buffered() > 0 {
		c, err := s.ReadByte()
		if err != nil {
			return n, err
		}
		p[n] = c
		n++
	}
	return n, nil
}
