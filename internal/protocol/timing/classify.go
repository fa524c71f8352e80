package timing

// Bit is the classification of one bit cell.
type Bit uint8

const (
	Zero Bit = iota
	One
	Malformed
)

func (b Bit) String() string {
	switch b {
	case Zero:
		return "0"
	case One:
		return "1"
	default:
		return "malformed"
	}
}

// Value returns the bit as 0 or 1. Malformed cells have no value.
func (b Bit) Value() (uint8, bool) {
	switch b {
	case Zero:
		return 0, true
	case One:
		return 1, true
	default:
		return 0, false
	}
}

// DominantRatio is the share of a cell one half must exceed to decide the bit.
const DominantRatio = 0.6

// IntervalUS converts the sample delta b-a to microseconds. samplerate must
// be positive; callers check it once before decoding.
func IntervalUS(a, b, samplerate uint64) float64 {
	if b < a {
		return -float64(a-b) * 1e6 / float64(samplerate)
	}
	return float64(b-a) * 1e6 / float64(samplerate)
}

// InWindow reports whether widthUS lies inside window id under profile p.
func InWindow(widthUS float64, id WindowID, p Profile) bool {
	if !id.Valid() {
		return false
	}
	return table[id].Contains(widthUS, p)
}

// ClassifyBit decides a cell from its low and high halves. A low-dominant
// cell is Zero, a high-dominant one is One, anything else is Malformed.
func ClassifyBit(lowUS, highUS float64) Bit {
	cell := lowUS + highUS
	if cell <= 0 {
		return Malformed
	}
	switch {
	case lowUS/cell > DominantRatio:
		return Zero
	case highUS/cell > DominantRatio:
		return One
	default:
		return Malformed
	}
}
