package decoder

import "fmt"

// State is a phase of the bus state machine.
type State uint8

const (
	StateAttention State = iota
	StateSync
	StateCommand
	StateStopCmd
	StateTLT
	StateStartData
	StateData
	StateStopData
)

func (s State) String() string {
	switch s {
	case StateAttention:
		return "ATTENTION"
	case StateSync:
		return "SYNC"
	case StateCommand:
		return "COMMAND"
	case StateStopCmd:
		return "STOP_CMD"
	case StateTLT:
		return "TLT"
	case StateStartData:
		return "START_DATA"
	case StateData:
		return "DATA"
	case StateStopData:
		return "STOP_DATA"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Reason says why the machine went back to ATTENTION.
type Reason uint8

const (
	ReasonAttentionWidth Reason = iota
	ReasonSyncWidth
	ReasonCommandBit
	ReasonStopWidth
	ReasonNoDataPhase
	ReasonStartBit
	ReasonDataBit
	ReasonDataStopWidth

	numReasons
)

var reasonNames = [numReasons]string{
	ReasonAttentionWidth: "attention_width",
	ReasonSyncWidth:      "sync_width",
	ReasonCommandBit:     "command_bit",
	ReasonStopWidth:      "stop_width",
	ReasonNoDataPhase:    "no_data_phase",
	ReasonStartBit:       "start_bit",
	ReasonDataBit:        "data_bit",
	ReasonDataStopWidth:  "data_stop_width",
}

// Reasons lists every recovery reason.
func Reasons() []Reason {
	out := make([]Reason, 0, numReasons)
	for r := Reason(0); r < numReasons; r++ {
		out = append(out, r)
	}
	return out
}

func (r Reason) String() string {
	if r >= numReasons {
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
	return reasonNames[r]
}

// Recovery describes one return to ATTENTION. WidthUS is the interval or
// bit cell that failed classification and Index the sample that ended it.
type Recovery struct {
	State   State
	Reason  Reason
	WidthUS float64
	Index   uint64
}

// Outcome is the result of one phase step.
type Outcome struct {
	Next     State
	Recovery *Recovery
}

func advance(next State) Outcome {
	return Outcome{Next: next}
}

func recovered(state State, reason Reason, widthUS float64, at uint64) Outcome {
	return Outcome{
		Next:     StateAttention,
		Recovery: &Recovery{State: state, Reason: reason, WidthUS: widthUS, Index: at},
	}
}

// Stats summarizes one decode run.
type Stats struct {
	Samples      uint64         `json:"samples"`
	Annotations  int            `json:"annotations"`
	Transactions int            `json:"transactions"`
	Recoveries   map[string]int `json:"recoveries"`
}
