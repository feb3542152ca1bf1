package main

import "testing"

func TestEventMapper_Button(t *testing.T) {
	m := EventMapper{Threshold: 1}
	b := NewButtonChannel(3, ButtonConfig{Note: 65})

	if got := m.Button(b, Pressed); got != NoteOn(65, 127) {
		t.Fatalf("pressed => %v", got)
	}
	if got := m.Button(b, Released); got != NoteOff(65, 0) {
		t.Fatalf("released => %v", got)
	}
}

func TestEventMapper_PotAtMinimum(t *testing.T) {
	m := EventMapper{Threshold: 1}
	p := NewPotChannel(0, PotConfig{CC: 1, Min: 4080, Max: 65535})

	var events []MIDIEvent
	for i := 0; i < 5; i++ {
		if ev, ok := m.Pot(p, p.Read(4080)); ok {
			events = append(events, ev)
		}
	}
	if len(events) != 1 || events[0] != ControlChange(1, 0) {
		t.Fatalf("events = %v, want [ControlChange(1,0)]", events)
	}
	if p.Last() != 0 {
		t.Fatalf("last = %d", p.Last())
	}
}

func TestEventMapper_PotThreshold(t *testing.T) {
	p := NewPotChannel(0, PotConfig{CC: 7, Min: 0, Max: 127})
	tests := []struct {
		threshold int
		values    []int
		want      []uint8
	}{
		{1, []int{10, 10, 11, 11, 10, 127}, []uint8{10, 11, 10, 127}},
		{3, []int{10, 11, 12, 13, 9, 7}, []uint8{10, 13, 9}},
	}
	for _, tt := range tests {
		p.last = noValue
		m := EventMapper{Threshold: tt.threshold}
		var got []uint8
		for _, v := range tt.values {
			if ev, ok := m.Pot(p, v); ok {
				if ev.Kind != KindControlChange || ev.Data1 != 7 {
					t.Fatalf("unexpected event %v", ev)
				}
				got = append(got, ev.Data2)
			}
		}
		if len(got) != len(tt.want) {
			t.Fatalf("threshold %d: got %v, want %v", tt.threshold, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("threshold %d: got %v, want %v", tt.threshold, got, tt.want)
			}
		}
	}
}
