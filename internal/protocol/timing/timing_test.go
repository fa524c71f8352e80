package timing

import (
	"errors"
	"testing"
)

func TestInWindowSyncBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		width   float64
		profile Profile
		want    bool
	}{
		{name: "strict nominal", width: 65, profile: Strict, want: true},
		{name: "strict lower edge", width: 63, profile: Strict, want: true},
		{name: "strict upper edge", width: 67, profile: Strict, want: true},
		{name: "strict below", width: 62, profile: Strict, want: false},
		{name: "strict above", width: 67.5, profile: Strict, want: false},
		{name: "relaxed widened lower", width: 62.9, profile: Relaxed, want: true},
		{name: "relaxed widened upper", width: 67.1, profile: Relaxed, want: true},
		{name: "relaxed below", width: 62.7, profile: Relaxed, want: false},
		{name: "strict rejects relaxed width", width: 62.9, profile: Strict, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InWindow(tc.width, Sync, tc.profile); got != tc.want {
				t.Fatalf("InWindow(%v, SYNC, %s)=%v want %v", tc.width, tc.profile, got, tc.want)
			}
		})
	}
}

func TestInWindowStopAndServiceRequestAreDisjoint(t *testing.T) {
	if !InWindow(70, Stop, Strict) || InWindow(70, StopSRQ, Strict) {
		t.Fatalf("70us must be a plain stop")
	}
	if InWindow(300, Stop, Strict) || !InWindow(300, StopSRQ, Strict) {
		t.Fatalf("300us must be a service request")
	}
	if InWindow(150, Stop, Strict) || InWindow(150, StopSRQ, Strict) {
		t.Fatalf("150us must match neither stop window")
	}
	if InWindow(150, Stop, Relaxed) || InWindow(150, StopSRQ, Relaxed) {
		t.Fatalf("150us must match neither stop window when relaxed")
	}
}

func TestInWindowInvalidID(t *testing.T) {
	if InWindow(0, numWindows, Relaxed) {
		t.Fatalf("invalid window id must never match")
	}
	if numWindows.Window() != (Window{}) {
		t.Fatalf("invalid window id must yield zero window")
	}
}

func TestRelaxedToleranceScalesBase(t *testing.T) {
	w := Sync.Window()
	if got := w.Tolerance(Strict); got != 2 {
		t.Fatalf("strict tolerance=%v want 2", got)
	}
	lo, hi := w.Bounds(Relaxed)
	if lo > 62.81 || lo < 62.79 || hi < 67.19 || hi > 67.21 {
		t.Fatalf("unexpected relaxed bounds [%v, %v]", lo, hi)
	}
}

func TestWindowTable(t *testing.T) {
	want := map[WindowID][2]float64{
		Reset:     {3000, 100},
		Attention: {800, 24},
		Sync:      {65, 2},
		BitCell:   {100, 30},
		Bit0Low:   {65, 5},
		Bit1Low:   {35, 5},
		Stop:      {70, 21},
		StopSRQ:   {300, 90},
		TLT:       {200, 60},
	}
	if len(Windows()) != len(want) {
		t.Fatalf("expected %d windows, got %d", len(want), len(Windows()))
	}
	for id, nt := range want {
		w := id.Window()
		if w.NominalUS != nt[0] || w.ToleranceUS != nt[1] {
			t.Fatalf("%s: got %v±%v want %v±%v", id, w.NominalUS, w.ToleranceUS, nt[0], nt[1])
		}
	}
}

func TestIntervalUS(t *testing.T) {
	if got := IntervalUS(100, 163, 1_000_000); got != 63 {
		t.Fatalf("interval at 1MHz=%v want 63", got)
	}
	if got := IntervalUS(0, 629, 10_000_000); got != 62.9 {
		t.Fatalf("interval at 10MHz=%v want 62.9", got)
	}
	if got := IntervalUS(0, 1600, 2_000_000); got != 800 {
		t.Fatalf("interval at 2MHz=%v want 800", got)
	}
	if got := IntervalUS(10, 5, 1_000_000); got != -5 {
		t.Fatalf("reversed interval=%v want -5", got)
	}
}

func TestClassifyBit(t *testing.T) {
	cases := []struct {
		low, high float64
		want      Bit
	}{
		{low: 70, high: 30, want: Zero},
		{low: 65, high: 35, want: Zero},
		{low: 30, high: 70, want: One},
		{low: 35, high: 65, want: One},
		{low: 50, high: 50, want: Malformed},
		{low: 60, high: 40, want: Malformed},
		{low: 40, high: 60, want: Malformed},
		{low: 0, high: 0, want: Malformed},
	}
	for _, tc := range cases {
		if got := ClassifyBit(tc.low, tc.high); got != tc.want {
			t.Fatalf("ClassifyBit(%v, %v)=%s want %s", tc.low, tc.high, got, tc.want)
		}
	}
}

func TestBitValue(t *testing.T) {
	if v, ok := Zero.Value(); !ok || v != 0 {
		t.Fatalf("zero value=%d ok=%v", v, ok)
	}
	if v, ok := One.Value(); !ok || v != 1 {
		t.Fatalf("one value=%d ok=%v", v, ok)
	}
	if _, ok := Malformed.Value(); ok {
		t.Fatalf("malformed must have no value")
	}
}

func TestParseProfile(t *testing.T) {
	for raw, want := range map[string]Profile{"": Strict, "strict": Strict, " Relaxed ": Relaxed} {
		got, err := ParseProfile(raw)
		if err != nil || got != want {
			t.Fatalf("ParseProfile(%q)=%s,%v want %s", raw, got, err, want)
		}
	}
	if _, err := ParseProfile("loose"); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}
