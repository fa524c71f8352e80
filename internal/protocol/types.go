package protocol

import "fmt"

// Category is the kind of a decoded annotation.
type Category uint8

const (
	CategoryReset Category = iota
	CategoryAttention
	CategorySync
	CategoryStart
	CategoryStop
	CategoryAddressBit
	CategoryCommandBit
	CategoryRegisterBit
	CategoryDataBit
	CategoryStopToStart
	CategoryServiceRequest
	CategoryCommand
	CategoryAddress
	CategoryRegister
	CategoryData
	CategoryWarning

	numCategories
)

var categoryNames = [numCategories]string{
	CategoryReset:          "reset",
	CategoryAttention:      "attention",
	CategorySync:           "sync",
	CategoryStart:          "start",
	CategoryStop:           "stop",
	CategoryAddressBit:     "addr",
	CategoryCommandBit:     "cmd",
	CategoryRegisterBit:    "reg",
	CategoryDataBit:        "dat",
	CategoryStopToStart:    "tlt",
	CategoryServiceRequest: "srq",
	CategoryCommand:        "command",
	CategoryAddress:        "address",
	CategoryRegister:       "register",
	CategoryData:           "data",
	CategoryWarning:        "warning",
}

var categoryDescriptions = [numCategories]string{
	CategoryReset:          "Bus reset",
	CategoryAttention:      "Attention condition",
	CategorySync:           "Sync condition",
	CategoryStart:          "Start bit",
	CategoryStop:           "Stop bit",
	CategoryAddressBit:     "Address bit",
	CategoryCommandBit:     "Command bit",
	CategoryRegisterBit:    "Register bit",
	CategoryDataBit:        "Data bit",
	CategoryStopToStart:    "Stop-bit-to-start-bit delay",
	CategoryServiceRequest: "Service request",
	CategoryCommand:        "Command",
	CategoryAddress:        "Device address",
	CategoryRegister:       "Register",
	CategoryData:           "Data",
	CategoryWarning:        "Warning",
}

// Categories lists every category in display order.
func Categories() []Category {
	out := make([]Category, 0, numCategories)
	for c := Category(0); c < numCategories; c++ {
		out = append(out, c)
	}
	return out
}

func (c Category) Valid() bool {
	return c < numCategories
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", uint8(c))
	}
	return categoryNames[c]
}

// Description is the human readable name of the category.
func (c Category) Description() string {
	if !c.Valid() {
		return ""
	}
	return categoryDescriptions[c]
}

// Row is the display row a category belongs to.
func (c Category) Row() Row {
	switch {
	case c <= CategoryServiceRequest:
		return RowBus
	case c <= CategoryData:
		return RowTransactions
	default:
		return RowWarnings
	}
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(c))
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Row groups categories for display.
type Row uint8

const (
	RowBus Row = iota
	RowTransactions
	RowWarnings
)

func (r Row) String() string {
	switch r {
	case RowBus:
		return "bus"
	case RowTransactions:
		return "transactions"
	case RowWarnings:
		return "warnings"
	default:
		return fmt.Sprintf("row(%d)", uint8(r))
	}
}

func (r Row) MarshalText() ([]byte, error) {
	if r > RowWarnings {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRow, uint8(r))
	}
	return []byte(r.String()), nil
}

func ParseRow(name string) (Row, error) {
	for r := RowBus; r <= RowWarnings; r++ {
		if r.String() == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRow, name)
}
