package decoder

import (
	"context"
	"errors"

	"github.com/danmuck/adbtrace/internal/capture"
	"github.com/danmuck/adbtrace/internal/logging"
	"github.com/danmuck/adbtrace/internal/protocol"
	"github.com/danmuck/adbtrace/internal/protocol/timing"
	"github.com/rs/zerolog"
)

var ErrNoSamplerate = errors.New("decoder: no samplerate")

// Samplerates below these thresholds get a warning annotation.
const (
	MinSamplerate       uint64 = 400_000
	SuggestedSamplerate uint64 = 1_000_000
)

const (
	warnTooLow    = "Sampling rate is too low. Must be above 400kHz for proper normal mode decoding."
	warnSuggested = "Sampling rate is suggested to be above 1MHz for proper normal mode decoding."
)

// Config is fixed for the lifetime of a decoder.
type Config struct {
	Samplerate uint64
	Profile    timing.Profile
}

// Recorder observes a decode run. Calls happen on the decoding goroutine.
type Recorder interface {
	Annotated(a protocol.Annotation)
	Completed(tx protocol.Transaction)
	Recovered(r Recovery)
}

type nopRecorder struct{}

func (nopRecorder) Annotated(protocol.Annotation)  {}
func (nopRecorder) Completed(protocol.Transaction) {}
func (nopRecorder) Recovered(Recovery)             {}

type Option func(*Decoder)

func WithRecorder(r Recorder) Option {
	return func(d *Decoder) {
		if r != nil {
			d.recorder = r
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(d *Decoder) {
		d.log = l
	}
}

// Decoder owns one pass over one capture. It is not safe for concurrent use;
// run independent decoders for independent captures.
type Decoder struct {
	cfg      Config
	cursor   *capture.Cursor
	sink     protocol.Sink
	txSink   protocol.TransactionSink
	recorder Recorder
	log      zerolog.Logger

	annotations  int
	transactions int
	recoveries   [numReasons]int
	final        State
}

// New builds a decoder reading src and writing to sink. If sink also
// implements protocol.TransactionSink it receives completed transactions.
func New(cfg Config, src capture.SampleReader, sink protocol.Sink, opts ...Option) *Decoder {
	if sink == nil {
		sink = protocol.SinkFunc(func(protocol.Annotation) {})
	}
	d := &Decoder{
		cfg:      cfg,
		cursor:   capture.NewCursor(src),
		sink:     sink,
		recorder: nopRecorder{},
		log:      logging.Component("decoder"),
	}
	if ts, ok := sink.(protocol.TransactionSink); ok {
		d.txSink = ts
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// machine is the state carried between steps. The transaction in flight
// lives beside it in a txn and is reset on every ATTENTION entry.
type machine struct {
	state State
	fall  uint64
	rise  uint64
	// done is set when the previous cycle already consumed the falling
	// edge that opens the next attention pulse.
	done bool
}

// Decode runs until the capture ends, ctx is cancelled or the capture
// fails to read. The end of the capture is not an error.
func (d *Decoder) Decode(ctx context.Context) error {
	if d.cfg.Samplerate == 0 {
		return ErrNoSamplerate
	}
	d.log.Debug().
		Uint64("samplerate", d.cfg.Samplerate).
		Str("tolerance", d.cfg.Profile.String()).
		Msg("decode started")
	d.checkSamplerate()

	m := machine{state: StateAttention}
	tx := newTxn()
	defer func() { d.final = m.state }()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := d.step(&m, &tx)
		if err != nil {
			if errors.Is(err, capture.ErrEndOfStream) {
				d.log.Debug().
					Str("state", m.state.String()).
					Uint64("samples", d.cursor.Samples()).
					Int("annotations", d.annotations).
					Int("transactions", d.transactions).
					Msg("decode finished")
				return nil
			}
			return err
		}
		if out.Recovery != nil {
			d.recover(*out.Recovery)
		}
		m.state = out.Next
	}
}

func (d *Decoder) step(m *machine, t *txn) (Outcome, error) {
	switch m.state {
	case StateAttention:
		return d.stepAttention(m, t)
	case StateSync:
		return d.stepSync(m)
	case StateCommand:
		return d.stepCommand(m, t)
	case StateStopCmd:
		return d.stepStopCmd(m, t)
	case StateTLT:
		return d.stepTLT(m, t)
	case StateStartData:
		return d.stepStartData(m)
	case StateData:
		return d.stepData(m, t)
	case StateStopData:
		return d.stepStopData(m, t)
	default:
		return advance(StateAttention), nil
	}
}

// State is the phase the machine was in when Decode returned.
func (d *Decoder) State() State {
	return d.final
}

func (d *Decoder) Stats() Stats {
	s := Stats{
		Samples:      d.cursor.Samples(),
		Annotations:  d.annotations,
		Transactions: d.transactions,
		Recoveries:   make(map[string]int),
	}
	for r, n := range d.recoveries {
		if n > 0 {
			s.Recoveries[Reason(r).String()] = n
		}
	}
	return s
}

func (d *Decoder) checkSamplerate() {
	switch {
	case d.cfg.Samplerate < MinSamplerate:
		d.log.Warn().Uint64("samplerate", d.cfg.Samplerate).Msg("samplerate below minimum")
		d.put(protocol.CategoryWarning, 0, 0, warnTooLow)
	case d.cfg.Samplerate < SuggestedSamplerate:
		d.log.Warn().Uint64("samplerate", d.cfg.Samplerate).Msg("samplerate below suggested")
		d.put(protocol.CategoryWarning, 0, 0, warnSuggested)
	}
}

func (d *Decoder) put(cat protocol.Category, start, end uint64, labels ...string) {
	a := protocol.Annotation{Category: cat, Start: start, End: end, Labels: labels}
	d.annotations++
	d.recorder.Annotated(a)
	d.sink.Put(a)
}

func (d *Decoder) complete(tx protocol.Transaction) {
	d.transactions++
	d.log.Trace().
		Uint8("address", tx.Address).
		Str("command", tx.Command.String()).
		Uint8("register", tx.Register).
		Bool("data", tx.HasData()).
		Msg("transaction")
	d.recorder.Completed(tx)
	if d.txSink != nil {
		d.txSink.PutTransaction(tx)
	}
}

func (d *Decoder) recover(r Recovery) {
	if r.Reason < numReasons {
		d.recoveries[r.Reason]++
	}
	d.log.Trace().
		Str("state", r.State.String()).
		Str("reason", r.Reason.String()).
		Float64("width_us", r.WidthUS).
		Uint64("sample", r.Index).
		Msg("recovered to attention")
	d.recorder.Recovered(r)
}

func (d *Decoder) interval(a, b uint64) float64 {
	return timing.IntervalUS(a, b, d.cfg.Samplerate)
}
