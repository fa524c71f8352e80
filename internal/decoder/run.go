package decoder

import (
	"context"

	"github.com/danmuck/adbtrace/internal/capture"
	"github.com/danmuck/adbtrace/internal/protocol"
)

// Result is everything one decode run produced.
type Result struct {
	Annotations  []protocol.Annotation  `json:"annotations"`
	Transactions []protocol.Transaction `json:"transactions"`
	Stats        Stats                  `json:"stats"`
	Final        string                 `json:"final_state"`
}

// Run decodes src to completion and collects the output.
func Run(ctx context.Context, cfg Config, src capture.SampleReader, opts ...Option) (Result, error) {
	var c protocol.Collector
	d := New(cfg, src, &c, opts...)
	if err := d.Decode(ctx); err != nil {
		return Result{}, err
	}
	res := Result{
		Annotations:  c.Annotations,
		Transactions: c.Transactions,
		Stats:        d.Stats(),
		Final:        d.State().String(),
	}
	if res.Annotations == nil {
		res.Annotations = []protocol.Annotation{}
	}
	if res.Transactions == nil {
		res.Transactions = []protocol.Transaction{}
	}
	return res, nil
}
