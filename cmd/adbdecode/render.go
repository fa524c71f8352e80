package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/danmuck/adbtrace/internal/decoder"
	"github.com/danmuck/adbtrace/internal/protocol"
)

type palette struct {
	header lipgloss.Style
	muted  lipgloss.Style
	fail   lipgloss.Style
	rows   map[protocol.Row]lipgloss.Style
}

func newPalette(w io.Writer, color bool) palette {
	r := lipgloss.NewRenderer(w)
	plain := r.NewStyle()
	if !color {
		return palette{
			header: plain,
			muted:  plain,
			fail:   plain,
			rows: map[protocol.Row]lipgloss.Style{
				protocol.RowBus:          plain,
				protocol.RowTransactions: plain,
				protocol.RowWarnings:     plain,
			},
		}
	}
	return palette{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("241")),
		fail:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		rows: map[protocol.Row]lipgloss.Style{
			protocol.RowBus:          r.NewStyle().Foreground(lipgloss.Color("245")),
			protocol.RowTransactions: r.NewStyle().Bold(true).Foreground(lipgloss.Color("78")),
			protocol.RowWarnings:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		},
	}
}

func renderText(w io.Writer, reports []report, opts options) {
	p := newPalette(w, opts.Color)
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		name := r.File
		if name == stdinName {
			name = "<stdin>"
		}
		if r.Err != nil {
			fmt.Fprintf(w, "%s  %s\n", p.header.Render(name), p.fail.Render("error: "+r.Err.Error()))
			continue
		}
		fmt.Fprintf(w, "%s  %s\n",
			p.header.Render(name),
			p.muted.Render(fmt.Sprintf("%d Hz %s, %d samples, final %s",
				opts.Decoder.Samplerate, opts.Decoder.Profile, r.Result.Stats.Samples, r.Result.Final)),
		)
		for _, a := range r.Result.Annotations {
			row := a.Row()
			if !opts.showRow(row) {
				continue
			}
			line := fmt.Sprintf("%10d %10d  %-12s %s", a.Start, a.End, a.Category, a.Long())
			fmt.Fprintln(w, p.rows[row].Render(line))
		}
		if opts.showRow(protocol.RowTransactions) {
			for _, tx := range r.Result.Transactions {
				fmt.Fprintln(w, p.rows[protocol.RowTransactions].Render("  > "+tx.String()))
			}
		}
		fmt.Fprintln(w, p.muted.Render(summary(r.Result.Stats)))
	}
}

func summary(s decoder.Stats) string {
	parts := []string{
		fmt.Sprintf("annotations=%d", s.Annotations),
		fmt.Sprintf("transactions=%d", s.Transactions),
	}
	reasons := make([]string, 0, len(s.Recoveries))
	for reason, n := range s.Recoveries {
		if n > 0 {
			reasons = append(reasons, fmt.Sprintf("%s=%d", reason, n))
		}
	}
	sort.Strings(reasons)
	if len(reasons) > 0 {
		parts = append(parts, "recoveries: "+strings.Join(reasons, " "))
	}
	return strings.Join(parts, " ")
}

type jsonReport struct {
	File       string `json:"file"`
	Samplerate uint64 `json:"samplerate"`
	Tolerance  string `json:"tolerance"`
	Error      string `json:"error,omitempty"`
	*decoder.Result
}

func renderJSON(w io.Writer, reports []report, opts options) error {
	out := make([]jsonReport, 0, len(reports))
	for _, r := range reports {
		jr := jsonReport{
			File:       r.File,
			Samplerate: opts.Decoder.Samplerate,
			Tolerance:  opts.Decoder.Profile.String(),
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			res := r.Result
			jr.Result = &res
		}
		out = append(out, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
