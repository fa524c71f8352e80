package protocol

import "fmt"

// CommandKind is the 2-bit command field of a command byte.
type CommandKind uint8

const (
	CommandFlush   CommandKind = 0
	CommandUnknown CommandKind = 1
	CommandListen  CommandKind = 2
	CommandTalk    CommandKind = 3
)

// CommandKindOf maps a 2-bit command value. Only the low two bits are used.
func CommandKindOf(v uint16) CommandKind {
	return CommandKind(v & 0x3)
}

func (k CommandKind) String() string {
	switch k {
	case CommandFlush:
		return "Flush"
	case CommandListen:
		return "Listen"
	case CommandTalk:
		return "Talk"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// Labels are the display forms of the command, longest first.
func (k CommandKind) Labels() []string {
	switch k {
	case CommandFlush:
		return []string{"Flush", "Flsh", "Fl", "F"}
	case CommandListen:
		return []string{"Listen", "Lst", "L"}
	case CommandTalk:
		return []string{"Talk", "Tlk", "T"}
	default:
		return []string{k.String(), "Unk", "U"}
	}
}

func (k CommandKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *CommandKind) UnmarshalText(b []byte) error {
	for _, v := range []CommandKind{CommandFlush, CommandUnknown, CommandListen, CommandTalk} {
		if v.String() == string(b) {
			*k = v
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, b)
}

// Span is an inclusive range of sample indices.
type Span struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// Transaction is one decoded command with its optional data phase.
type Transaction struct {
	Address        uint8       `json:"address"`
	Command        CommandKind `json:"command"`
	Register       uint8       `json:"register"`
	Data           *uint16     `json:"data,omitempty"`
	ServiceRequest bool        `json:"service_request"`

	Span         Span  `json:"span"`
	AddressSpan  Span  `json:"address_span"`
	CommandSpan  Span  `json:"command_span"`
	RegisterSpan Span  `json:"register_span"`
	DataSpan     *Span `json:"data_span,omitempty"`
}

func (tx Transaction) HasData() bool {
	return tx.Data != nil
}

func (tx Transaction) String() string {
	s := fmt.Sprintf("%s addr=%#x reg=%#x", tx.Command, tx.Address, tx.Register)
	if tx.Data != nil {
		s += fmt.Sprintf(" data=0x%04x", *tx.Data)
	}
	if tx.ServiceRequest {
		s += " srq"
	}
	return s
}
