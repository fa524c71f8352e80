// Package timing holds the bus timing windows and the pure functions that
// classify measured intervals against them.
package timing

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownProfile = errors.New("timing: unknown tolerance profile")

// WindowID names a timing window. The set is closed.
type WindowID uint8

const (
	Reset WindowID = iota
	Attention
	Sync
	BitCell
	Bit0Low
	Bit1Low
	Stop
	StopSRQ
	TLT

	numWindows
)

// Window is a nominal duration with a symmetric base tolerance, in µs.
type Window struct {
	Name        string
	NominalUS   float64
	ToleranceUS float64
}

// Host side tolerances are tighter (3%); the device side numbers are used
// because captures usually mix both.
var table = [numWindows]Window{
	Reset:     {Name: "RESET", NominalUS: 3000, ToleranceUS: 100},
	Attention: {Name: "ATTENTION", NominalUS: 800, ToleranceUS: 24},
	Sync:      {Name: "SYNC", NominalUS: 65, ToleranceUS: 2},
	BitCell:   {Name: "BIT_CELL", NominalUS: 100, ToleranceUS: 30},
	Bit0Low:   {Name: "BIT_0_LOW", NominalUS: 65, ToleranceUS: 5},
	Bit1Low:   {Name: "BIT_1_LOW", NominalUS: 35, ToleranceUS: 5},
	Stop:      {Name: "STOP", NominalUS: 70, ToleranceUS: 21},
	StopSRQ:   {Name: "STOP_SREQ", NominalUS: 300, ToleranceUS: 90},
	TLT:       {Name: "TLT", NominalUS: 200, ToleranceUS: 60},
}

func (id WindowID) Valid() bool {
	return id < numWindows
}

func (id WindowID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("window(%d)", uint8(id))
	}
	return table[id].Name
}

// Window returns the table entry for id. Invalid ids yield a zero window,
// which matches nothing but a zero width.
func (id WindowID) Window() Window {
	if !id.Valid() {
		return Window{}
	}
	return table[id]
}

// Windows returns a copy of the whole table in id order.
func Windows() []Window {
	out := make([]Window, numWindows)
	copy(out, table[:])
	return out
}

// Profile scales every window tolerance.
type Profile uint8

const (
	Strict Profile = iota
	Relaxed
)

// RelaxedFactor is the tolerance multiplier of the relaxed profile.
const RelaxedFactor = 1.1

func (p Profile) Scale() float64 {
	if p == Relaxed {
		return RelaxedFactor
	}
	return 1
}

func (p Profile) String() string {
	switch p {
	case Strict:
		return "strict"
	case Relaxed:
		return "relaxed"
	default:
		return fmt.Sprintf("profile(%d)", uint8(p))
	}
}

func (p Profile) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Profile) UnmarshalText(b []byte) error {
	parsed, err := ParseProfile(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseProfile accepts "strict" or "relaxed"; empty means strict.
func ParseProfile(raw string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "strict":
		return Strict, nil
	case "relaxed":
		return Relaxed, nil
	default:
		return Strict, fmt.Errorf("%w: %q", ErrUnknownProfile, raw)
	}
}

// Tolerance is the window tolerance under profile p.
func (w Window) Tolerance(p Profile) float64 {
	if p == Strict {
		return w.ToleranceUS
	}
	return w.ToleranceUS * p.Scale()
}

// Bounds returns the inclusive accepted range under profile p.
func (w Window) Bounds(p Profile) (lo, hi float64) {
	tol := w.Tolerance(p)
	return w.NominalUS - tol, w.NominalUS + tol
}

func (w Window) Contains(widthUS float64, p Profile) bool {
	lo, hi := w.Bounds(p)
	return widthUS >= lo && widthUS <= hi
}
