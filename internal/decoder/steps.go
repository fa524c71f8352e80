package decoder

import (
	"fmt"

	"github.com/danmuck/adbtrace/internal/capture"
	"github.com/danmuck/adbtrace/internal/protocol"
	"github.com/danmuck/adbtrace/internal/protocol/bitfield"
	"github.com/danmuck/adbtrace/internal/protocol/timing"
)

// txn is the transaction in flight.
type txn struct {
	fields bitfield.Set
	tx     protocol.Transaction
}

func newTxn() txn {
	return txn{fields: bitfield.NewSet()}
}

func (t *txn) reset() {
	t.fields.Reset()
	t.tx = protocol.Transaction{}
}

// cell is one measured bit cell: falling edge, rising edge, falling edge.
type cell struct {
	bit    timing.Bit
	start  uint64
	end    uint64
	lowUS  float64
	highUS float64
}

func (c cell) widthUS() float64 {
	return c.lowUS + c.highUS
}

// readCell measures the bit cell opened by the current falling edge and
// leaves m.fall on the edge that closes it.
func (d *Decoder) readCell(m *machine) (cell, error) {
	start := m.fall
	rise, err := d.cursor.Next(capture.Rising)
	if err != nil {
		return cell{}, err
	}
	m.rise = rise.Index
	fall, err := d.cursor.Next(capture.Falling)
	if err != nil {
		return cell{}, err
	}
	m.fall = fall.Index
	c := cell{
		start:  start,
		end:    m.fall,
		lowUS:  d.interval(start, m.rise),
		highUS: d.interval(m.rise, m.fall),
	}
	c.bit = timing.ClassifyBit(c.lowUS, c.highUS)
	return c, nil
}

func (d *Decoder) stepAttention(m *machine, t *txn) (Outcome, error) {
	t.reset()
	skipFall := m.done
	m.done = false
	if !skipFall {
		fall, err := d.cursor.Next(capture.Falling)
		if err != nil {
			return Outcome{}, err
		}
		m.fall = fall.Index
	}
	rise, err := d.cursor.Next(capture.Rising)
	if err != nil {
		return Outcome{}, err
	}
	m.rise = rise.Index

	width := d.interval(m.fall, m.rise)
	if !timing.InWindow(width, timing.Attention, d.cfg.Profile) {
		return recovered(StateAttention, ReasonAttentionWidth, width, m.rise), nil
	}
	d.put(protocol.CategoryAttention, m.fall, m.rise, "Bus Attention", "Attention", "ATTN", "A")
	t.tx.Span.Start = m.fall
	return advance(StateSync), nil
}

func (d *Decoder) stepSync(m *machine) (Outcome, error) {
	fall, err := d.cursor.Next(capture.Falling)
	if err != nil {
		return Outcome{}, err
	}
	m.fall = fall.Index

	width := d.interval(m.rise, m.fall)
	if !timing.InWindow(width, timing.Sync, d.cfg.Profile) {
		return recovered(StateSync, ReasonSyncWidth, width, m.fall), nil
	}
	d.put(protocol.CategorySync, m.rise, m.fall, "Sync", "SS")
	return advance(StateCommand), nil
}

func commandBitCategory(f bitfield.Field) protocol.Category {
	switch f {
	case bitfield.Address:
		return protocol.CategoryAddressBit
	case bitfield.Command:
		return protocol.CategoryCommandBit
	default:
		return protocol.CategoryRegisterBit
	}
}

func (d *Decoder) stepCommand(m *machine, t *txn) (Outcome, error) {
	var fieldStart uint64
	for i := 0; i < bitfield.CommandBits; i++ {
		f := bitfield.CommandField(i)
		acc := t.fields.Get(f)
		if acc.Count() == 0 {
			fieldStart = m.fall
		}
		c, err := d.readCell(m)
		if err != nil {
			return Outcome{}, err
		}
		v, ok := c.bit.Value()
		if !ok {
			return recovered(StateCommand, ReasonCommandBit, c.widthUS(), c.end), nil
		}
		d.put(commandBitCategory(f), c.start, c.end, c.bit.String())
		acc.Push(v)
		if value, full := acc.Value(); full {
			d.emitCommandField(t, f, value, protocol.Span{Start: fieldStart, End: c.end})
		}
	}
	return advance(StateStopCmd), nil
}

func (d *Decoder) emitCommandField(t *txn, f bitfield.Field, v uint16, span protocol.Span) {
	switch f {
	case bitfield.Address:
		t.tx.Address = uint8(v)
		t.tx.AddressSpan = span
		d.put(protocol.CategoryAddress, span.Start, span.End,
			fmt.Sprintf("Address: %#x", v), fmt.Sprintf("A: %#x", v))
	case bitfield.Command:
		kind := protocol.CommandKindOf(v)
		t.tx.Command = kind
		t.tx.CommandSpan = span
		d.put(protocol.CategoryCommand, span.Start, span.End, kind.Labels()...)
	case bitfield.Register:
		t.tx.Register = uint8(v)
		t.tx.RegisterSpan = span
		d.put(protocol.CategoryRegister, span.Start, span.End,
			fmt.Sprintf("Register: %#x", v), fmt.Sprintf("R: %#x", v))
	}
}

// stopBit classifies a stop bit low time and emits it. It reports whether
// either stop window matched.
func (d *Decoder) stopBit(m *machine, t *txn) (float64, bool, error) {
	rise, err := d.cursor.Next(capture.Rising)
	if err != nil {
		return 0, false, err
	}
	m.rise = rise.Index

	width := d.interval(m.fall, m.rise)
	switch {
	case timing.InWindow(width, timing.Stop, d.cfg.Profile):
		d.put(protocol.CategoryStop, m.fall, m.rise, "STOP", "ST")
	case timing.InWindow(width, timing.StopSRQ, d.cfg.Profile):
		t.tx.ServiceRequest = true
		d.put(protocol.CategoryServiceRequest, m.fall, m.rise, "Service Request", "SREQ", "SR")
	default:
		return width, false, nil
	}
	return width, true, nil
}

func (d *Decoder) stepStopCmd(m *machine, t *txn) (Outcome, error) {
	width, ok, err := d.stopBit(m, t)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return recovered(StateStopCmd, ReasonStopWidth, width, m.rise), nil
	}
	return advance(StateTLT), nil
}

func (d *Decoder) stepTLT(m *machine, t *txn) (Outcome, error) {
	fall, err := d.cursor.Next(capture.Falling)
	if err != nil {
		return Outcome{}, err
	}
	m.fall = fall.Index

	width := d.interval(m.rise, m.fall)
	if !timing.InWindow(width, timing.TLT, d.cfg.Profile) {
		// No data phase: the command stands on its own and this falling
		// edge opens the next attention pulse.
		m.done = true
		t.tx.Span.End = m.rise
		d.complete(t.tx)
		return recovered(StateTLT, ReasonNoDataPhase, width, m.fall), nil
	}
	d.put(protocol.CategoryStopToStart, m.rise, m.fall, "Stop-to-Start", "TLT")
	return advance(StateStartData), nil
}

func (d *Decoder) stepStartData(m *machine) (Outcome, error) {
	c, err := d.readCell(m)
	if err != nil {
		return Outcome{}, err
	}
	if c.bit != timing.One {
		return recovered(StateStartData, ReasonStartBit, c.widthUS(), c.end), nil
	}
	d.put(protocol.CategoryStart, c.start, c.end, "Start", "St")
	return advance(StateData), nil
}

func (d *Decoder) stepData(m *machine, t *txn) (Outcome, error) {
	acc := t.fields.Get(bitfield.Data)
	start := m.fall
	for !acc.Full() {
		c, err := d.readCell(m)
		if err != nil {
			return Outcome{}, err
		}
		v, ok := c.bit.Value()
		if !ok {
			return recovered(StateData, ReasonDataBit, c.widthUS(), c.end), nil
		}
		d.put(protocol.CategoryDataBit, c.start, c.end, c.bit.String())
		acc.Push(v)
	}
	word, _ := acc.Value()
	span := protocol.Span{Start: start, End: m.fall}
	t.tx.Data = &word
	t.tx.DataSpan = &span
	d.put(protocol.CategoryData, span.Start, span.End,
		fmt.Sprintf("Data: 0x%04x", word), fmt.Sprintf("D: 0x%04x", word))
	return advance(StateStopData), nil
}

func (d *Decoder) stepStopData(m *machine, t *txn) (Outcome, error) {
	width, ok, err := d.stopBit(m, t)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return recovered(StateStopData, ReasonDataStopWidth, width, m.rise), nil
	}
	t.tx.Span.End = m.rise
	d.complete(t.tx)
	return advance(StateAttention), nil
}
