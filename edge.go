package main

// Transition is a change of a button's level between two polls.
type Transition int

const (
	Pressed Transition = iota + 1
	Released
)

func (t Transition) String() string {
	switch t {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	}
	return "none"
}

// ButtonChannel is one button wired with a pull-down: idle reads false,
// pressed reads true. There is no debounce; the tick period and the pull
// resistor are relied on for stability.
type ButtonChannel struct {
	Index int
	Note  uint8

	state bool
}

func NewButtonChannel(index int, cfg ButtonConfig) *ButtonChannel {
	return &ButtonChannel{Index: index, Note: cfg.Note}
}

// Poll stores level as the new state and reports the transition from the
// previous one, if any. Repeated identical levels report nothing.
func (b *ButtonChannel) Poll(level bool) (Transition, bool) {
	prev := b.state
	b.state = level
	switch {
	case level && !prev:
		return Pressed, true
	case !level && prev:
		return Released, true
	}
	return 0, false
}

// Down reports the last polled level.
func (b *ButtonChannel) Down() bool { return b.state }
