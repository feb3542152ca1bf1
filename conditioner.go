package main

// smoothingWindow is the length of each pot's moving-average buffer.
const smoothingWindow = 4

const (
	ccMin = 0
	ccMax = 127
)

// noValue marks a pot that has not emitted anything yet.
const noValue = -1

// PotChannel is one potentiometer: a moving-average window over raw ADC
// samples, its calibration, and the last value sent for it.
type PotChannel struct {
	Index int
	CC    uint8
	Min   int
	Max   int

	buf  [smoothingWindow]int
	last int
}

func NewPotChannel(index int, cfg PotConfig) *PotChannel {
	return &PotChannel{
		Index: index,
		CC:    cfg.CC,
		Min:   cfg.Min,
		Max:   cfg.Max,
		last:  noValue,
	}
}

// Read pushes raw into the window (dropping the oldest sample) and returns the
// averaged reading rescaled from [Min, Max] to 0-127. Readings outside the
// calibration clamp. Min != Max is guaranteed by Config.Validate.
func (p *PotChannel) Read(raw int) int {
	copy(p.buf[:], p.buf[1:])
	p.buf[smoothingWindow-1] = raw

	sum := 0
	for _, s := range p.buf {
		sum += s
	}
	avg := sum / smoothingWindow

	v := (avg - p.Min) * ccMax / (p.Max - p.Min)
	if v < ccMin {
		return ccMin
	}
	if v > ccMax {
		return ccMax
	}
	return v
}

// Last returns the last value emitted for this pot, or -1 if none.
func (p *PotChannel) Last() int { return p.last }
