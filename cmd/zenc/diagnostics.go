package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"zenc/internal/diag"
	"zenc/internal/diagfmt"
	"zenc/internal/source"
)

type outputFormat string

const (
	formatPretty outputFormat = "pretty"
	formatJSON   outputFormat = "json"
)

// globalOptions collects the persistent flags every subcommand reads.
type globalOptions struct {
	quiet          bool
	timings        bool
	maxDiagnostics int
	format         outputFormat
	ui             uiMode
}

func readGlobalOptions(cmd *cobra.Command) (globalOptions, error) {
	var opts globalOptions
	pf := cmd.Root().PersistentFlags()
	var err error
	if opts.quiet, err = pf.GetBool("quiet"); err != nil {
		return opts, err
	}
	if opts.timings, err = pf.GetBool("timings"); err != nil {
		return opts, err
	}
	if opts.maxDiagnostics, err = pf.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	format, err := pf.GetString("format")
	if err != nil {
		return opts, err
	}
	switch outputFormat(strings.ToLower(format)) {
	case formatPretty:
		opts.format = formatPretty
	case formatJSON:
		opts.format = formatJSON
	default:
		return opts, fmt.Errorf("invalid --format value %q (expected pretty|json)", format)
	}
	uiValue, err := pf.GetString("ui")
	if err != nil {
		return opts, err
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, fmt.Errorf("--ui: %w", err)
	}
	return opts, nil
}

// printDiagnostics writes bag sorted by location. Pretty output goes to
// stderr; JSON goes to w so it can be piped.
func printDiagnostics(cmd *cobra.Command, w io.Writer, opts globalOptions, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		if opts.format == formatJSON {
			return diagfmt.JSON(w, diag.NewBag(1), fs, diagfmt.JSONOpts{})
		}
		return nil
	}
	bag.Sort()
	if opts.format == formatJSON {
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			Max:              opts.maxDiagnostics,
			IncludeNotes:     true,
		})
	}
	diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, diagfmt.PrettyOpts{
		Color:     !color.NoColor,
		Context:   1,
		ShowNotes: true,
	})
	return nil
}

// mergeBags gathers per-unit diagnostics into one bag holding at most limit items.
func mergeBags(limit int, bags ...*diag.Bag) *diag.Bag {
	out := diag.NewBag(limit)
	for _, b := range bags {
		if b == nil {
			continue
		}
		for _, d := range b.Items() {
			if !out.Add(d) {
				return out
			}
		}
	}
	return out
}
