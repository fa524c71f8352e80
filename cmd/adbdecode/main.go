package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/danmuck/adbtrace/internal/logging"
)

func main() {
	logging.ConfigureRuntime()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "adbdecode: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}
	reports, err := decodeAll(ctx, opts, stdin)
	if err != nil {
		return err
	}
	if opts.JSON {
		if err := renderJSON(stdout, reports, opts); err != nil {
			return err
		}
	} else {
		renderText(stdout, reports, opts)
	}
	return failures(reports)
}
