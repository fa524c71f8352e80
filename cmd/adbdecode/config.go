package main

import (
	"errors"
	"flag"
	"fmt"
	"runtime"
	"strings"

	"github.com/danmuck/adbtrace/internal/capture"
	"github.com/danmuck/adbtrace/internal/config"
	"github.com/danmuck/adbtrace/internal/decoder"
	"github.com/danmuck/adbtrace/internal/protocol"
	"github.com/danmuck/adbtrace/internal/protocol/timing"
)

// stdinName selects standard input in the file list.
const stdinName = "-"

type options struct {
	Decoder decoder.Config
	Format  capture.Format
	Channel int
	Files   []string
	Rows    []protocol.Row
	Jobs    int
	JSON    bool
	Color   bool
}

// parseOptions layers flags over an optional TOML config over defaults.
// Only flags that were set on the command line override the file.
func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet("adbdecode", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML config path")
	samplerate := fs.String("samplerate", "", "capture samplerate, e.g. 2000000 or 2MHz")
	tolerance := fs.String("tolerance", "", "timing tolerance profile: strict|relaxed")
	format := fs.String("format", "", "capture format: raw|text")
	channel := fs.Int("channel", 0, "bit index of the bus line in raw captures")
	rows := fs.String("rows", "", "comma-separated rows to print: bus,transactions,warnings")
	jobs := fs.Int("jobs", runtime.GOMAXPROCS(0), "captures decoded in parallel")
	jsonOut := fs.Bool("json", false, "print JSON instead of text")
	noColor := fs.Bool("no-color", false, "disable styled output")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return options{}, err
		}
		cfg = loaded
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		if flagErr != nil {
			return
		}
		switch f.Name {
		case "samplerate":
			cfg.Decoder.Samplerate, flagErr = config.ParseSamplerate(*samplerate)
		case "tolerance":
			cfg.Decoder.Tolerance, flagErr = timing.ParseProfile(*tolerance)
		case "format":
			cfg.Capture.Format, flagErr = capture.ParseFormat(*format)
		case "channel":
			cfg.Capture.Channel = *channel
		}
	})
	if flagErr != nil {
		return options{}, flagErr
	}
	if err := config.Validate(cfg); err != nil {
		return options{}, err
	}
	if cfg.Decoder.Samplerate == 0 {
		return options{}, fmt.Errorf("%w: set -samplerate or [decoder] samplerate", decoder.ErrNoSamplerate)
	}

	opts := options{
		Decoder: cfg.Decoder.Decoder(),
		Format:  cfg.Capture.Format,
		Channel: cfg.Capture.Channel,
		Files:   fs.Args(),
		Jobs:    *jobs,
		JSON:    *jsonOut,
		Color:   !*noColor,
	}
	if len(opts.Files) == 0 {
		opts.Files = []string{stdinName}
	}
	stdinUses := 0
	for _, f := range opts.Files {
		if f == stdinName {
			stdinUses++
		}
	}
	if stdinUses > 1 {
		return options{}, errors.New("standard input listed more than once")
	}
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	if *rows != "" {
		for _, name := range strings.Split(*rows, ",") {
			row, err := protocol.ParseRow(strings.TrimSpace(name))
			if err != nil {
				return options{}, err
			}
			opts.Rows = append(opts.Rows, row)
		}
	}
	return opts, nil
}

func (o options) showRow(r protocol.Row) bool {
	if len(o.Rows) == 0 {
		return true
	}
	for _, want := range o.Rows {
		if want == r {
			return true
		}
	}
	return false
}
