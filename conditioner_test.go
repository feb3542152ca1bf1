package main

import (
	"math/rand"
	"testing"
)

func TestPotChannel_CalibrationEnds(t *testing.T) {
	p := NewPotChannel(0, PotConfig{CC: 1, Min: 4080, Max: 65535})
	for i := 0; i < smoothingWindow; i++ {
		if got := p.Read(4080); got != 0 {
			t.Fatalf("sample %d at min: got %d, want 0", i, got)
		}
	}

	p = NewPotChannel(0, PotConfig{CC: 1, Min: 4080, Max: 65535})
	var got int
	for i := 0; i < smoothingWindow; i++ {
		got = p.Read(65535)
	}
	if got != 127 {
		t.Fatalf("full window at max: got %d, want 127", got)
	}
}

func TestPotChannel_MovingAverage(t *testing.T) {
	// Min 0, Max 127 makes the output equal to the window average.
	p := NewPotChannel(0, PotConfig{Min: 0, Max: 127})
	for _, raw := range []int{4, 8, 12} {
		p.Read(raw)
	}
	if got := p.Read(16); got != 10 {
		t.Fatalf("avg(4,8,12,16): got %d, want 10", got)
	}
	if got := p.Read(20); got != 14 {
		t.Fatalf("avg(8,12,16,20): got %d, want 14", got)
	}
}

func TestPotChannel_StartsFromZeroedWindow(t *testing.T) {
	p := NewPotChannel(0, PotConfig{Min: 0, Max: 127})
	if got := p.Read(100); got != 25 {
		t.Fatalf("avg(0,0,0,100): got %d, want 25", got)
	}
}

func TestPotChannel_AlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cals := []PotConfig{
		{Min: 4080, Max: 65535},
		{Min: 30000, Max: 31000},
		{Min: 65535, Max: 4080}, // reversed
	}
	for _, cal := range cals {
		p := NewPotChannel(0, cal)
		for i := 0; i < 5000; i++ {
			v := p.Read(rng.Intn(65536))
			if v < 0 || v > 127 {
				t.Fatalf("cal %+v: value %d out of range", cal, v)
			}
		}
	}
}

func TestPotChannel_StableAfterWindowFills(t *testing.T) {
	p := NewPotChannel(0, PotConfig{Min: 4080, Max: 65535})
	var first int
	for i := 0; i < smoothingWindow; i++ {
		first = p.Read(40000)
	}
	for i := 0; i < 10; i++ {
		if got := p.Read(40000); got != first {
			t.Fatalf("read %d: got %d, want %d", i, got, first)
		}
	}
}

func TestPotChannel_Reversed(t *testing.T) {
	p := NewPotChannel(0, PotConfig{Min: 65535, Max: 4080})
	var got int
	for i := 0; i < smoothingWindow; i++ {
		got = p.Read(4080)
	}
	if got != 127 {
		t.Fatalf("reversed pot at max end: got %d, want 127", got)
	}
	for i := 0; i < smoothingWindow; i++ {
		got = p.Read(65535)
	}
	if got != 0 {
		t.Fatalf("reversed pot at min end: got %d, want 0", got)
	}
}
