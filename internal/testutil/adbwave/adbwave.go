// Package adbwave synthesizes bus captures for tests.
package adbwave

import (
	"math"

	"github.com/danmuck/adbtrace/internal/capture"
)

// Nominal bit cell halves in µs.
const (
	BitLongUS  = 65
	BitShortUS = 35
)

// Wave appends timed levels at a fixed samplerate.
type Wave struct {
	rate   uint64
	levels capture.Levels
}

// New starts a wave with 100µs of idle (high) bus.
func New(samplerate uint64) *Wave {
	w := &Wave{rate: samplerate}
	return w.High(100)
}

func (w *Wave) Samplerate() uint64 {
	return w.rate
}

// Len is the index the next appended sample will get.
func (w *Wave) Len() uint64 {
	return uint64(len(w.levels))
}

func (w *Wave) Hold(level capture.Level, us float64) *Wave {
	n := int(math.Round(us * float64(w.rate) / 1e6))
	for i := 0; i < n; i++ {
		w.levels = append(w.levels, level)
	}
	return w
}

func (w *Wave) High(us float64) *Wave {
	return w.Hold(capture.High, us)
}

func (w *Wave) Low(us float64) *Wave {
	return w.Hold(capture.Low, us)
}

// Cell appends one bit cell: lowUS low, then highUS high.
func (w *Wave) Cell(lowUS, highUS float64) *Wave {
	return w.Low(lowUS).High(highUS)
}

func (w *Wave) Bit(b uint8) *Wave {
	if b&1 == 0 {
		return w.Cell(BitLongUS, BitShortUS)
	}
	return w.Cell(BitShortUS, BitLongUS)
}

// Bits appends the low width bits of v, most significant first.
func (w *Wave) Bits(v uint16, width int) *Wave {
	for i := width - 1; i >= 0; i-- {
		w.Bit(uint8(v >> uint(i)))
	}
	return w
}

// Attention appends the attention low pulse followed by the sync high time.
func (w *Wave) Attention(attnUS, syncUS float64) *Wave {
	return w.Low(attnUS).High(syncUS)
}

// CommandByte appends the eight command bits.
func (w *Wave) CommandByte(addr, cmd, reg uint8) *Wave {
	v := uint16(addr&0xf)<<4 | uint16(cmd&0x3)<<2 | uint16(reg&0x3)
	return w.Bits(v, 8)
}

// Command appends a full command with nominal timing: attention, sync,
// command byte and a stop bit of stopUS low.
func (w *Wave) Command(addr, cmd, reg uint8, stopUS float64) *Wave {
	return w.Attention(800, 65).CommandByte(addr, cmd, reg).Low(stopUS)
}

// DataPhase appends the stop-to-start gap, the start bit, sixteen data bits
// and the closing stop bit.
func (w *Wave) DataPhase(tltUS float64, data uint16, stopUS float64) *Wave {
	return w.High(tltUS).Bit(1).Bits(data, 16).Low(stopUS)
}

// Transaction appends a command followed by a data phase, all nominal,
// and leaves the bus idle for 300µs.
func (w *Wave) Transaction(addr, cmd, reg uint8, data uint16) *Wave {
	return w.Command(addr, cmd, reg, 70).DataPhase(200, data, 70).High(300)
}

func (w *Wave) Levels() capture.Levels {
	out := make(capture.Levels, len(w.levels))
	copy(out, w.levels)
	return out
}

func (w *Wave) Reader() capture.SampleReader {
	return w.Levels().Reader()
}
