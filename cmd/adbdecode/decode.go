package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/danmuck/adbtrace/internal/capture"
	"github.com/danmuck/adbtrace/internal/decoder"
	"github.com/danmuck/adbtrace/internal/logging"
	"golang.org/x/sync/errgroup"
)

// report is the outcome of decoding one capture. Err is set instead of
// Result when the capture could not be read to the end.
type report struct {
	File    string
	Result  decoder.Result
	Err     error
	Elapsed time.Duration
}

// decodeAll decodes every capture with its own decoder, at most opts.Jobs
// at a time. Per-file failures land in the report; only cancellation of
// ctx fails the whole run.
func decodeAll(ctx context.Context, opts options, stdin io.Reader) ([]report, error) {
	log := logging.Component("adbdecode")
	reports := make([]report, len(opts.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)
	for i, name := range opts.Files {
		i, name := i, name
		g.Go(func() error {
			start := time.Now()
			res, err := decodeFile(gctx, opts, name, stdin)
			reports[i] = report{File: name, Result: res, Err: err, Elapsed: time.Since(start)}

			switch {
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			case err != nil:
				log.Warn().Str("file", name).Err(err).Msg("capture failed")
			default:
				log.Debug().
					Str("file", name).
					Uint64("samples", res.Stats.Samples).
					Int("transactions", res.Stats.Transactions).
					Dur("elapsed", reports[i].Elapsed).
					Msg("capture decoded")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func decodeFile(ctx context.Context, opts options, name string, stdin io.Reader) (decoder.Result, error) {
	var in io.Reader = stdin
	if name != stdinName {
		f, err := os.Open(name)
		if err != nil {
			return decoder.Result{}, err
		}
		defer f.Close()
		in = f
	}
	src, err := capture.NewReader(in, opts.Format, opts.Channel)
	if err != nil {
		return decoder.Result{}, err
	}
	return decoder.Run(ctx, opts.Decoder, src)
}

func failures(reports []report) error {
	var errs []error
	for _, r := range reports {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.File, r.Err))
		}
	}
	return errors.Join(errs...)
}
