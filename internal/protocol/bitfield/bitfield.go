// Package bitfield accumulates fixed-width, MSB-first protocol fields.
package bitfield

import "fmt"

// Field names one fixed-width field of a transaction.
type Field uint8

const (
	Address Field = iota
	Command
	Register
	Data
)

// CommandBits is the length of a command byte.
const CommandBits = 8

func (f Field) Width() int {
	switch f {
	case Address:
		return 4
	case Command, Register:
		return 2
	case Data:
		return 16
	default:
		return 0
	}
}

func (f Field) String() string {
	switch f {
	case Address:
		return "address"
	case Command:
		return "command"
	case Register:
		return "register"
	case Data:
		return "data"
	default:
		return fmt.Sprintf("field(%d)", uint8(f))
	}
}

// CommandField maps a bit position of the command byte (0 first on the wire)
// to the field it belongs to.
func CommandField(bit int) Field {
	switch {
	case bit < 4:
		return Address
	case bit < 6:
		return Command
	default:
		return Register
	}
}

// Accumulator shifts bits into one field, first bit most significant.
type Accumulator struct {
	field Field
	value uint16
	count int
}

func New(f Field) Accumulator {
	return Accumulator{field: f}
}

func (a *Accumulator) Field() Field {
	return a.field
}

// Push appends the next bit. Pushing into a full field is a caller bug.
func (a *Accumulator) Push(bit uint8) {
	if a.count >= a.field.Width() {
		panic(fmt.Sprintf("bitfield: %s overflow after %d bits", a.field, a.count))
	}
	a.value = a.value<<1 | uint16(bit&1)
	a.count++
}

func (a *Accumulator) Count() int {
	return a.count
}

func (a *Accumulator) Full() bool {
	return a.count == a.field.Width()
}

// Value returns the field once every bit has been pushed.
func (a *Accumulator) Value() (uint16, bool) {
	if !a.Full() {
		return 0, false
	}
	return a.value, true
}

func (a *Accumulator) Reset() {
	a.value = 0
	a.count = 0
}

// Set holds the four fields of one transaction.
type Set struct {
	fields [4]Accumulator
}

func NewSet() Set {
	return Set{fields: [4]Accumulator{New(Address), New(Command), New(Register), New(Data)}}
}

func (s *Set) Get(f Field) *Accumulator {
	return &s.fields[f]
}

func (s *Set) Reset() {
	for i := range s.fields {
		s.fields[i].Reset()
	}
}
