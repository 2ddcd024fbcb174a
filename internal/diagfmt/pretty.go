package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"zenc/internal/diag"
	"zenc/internal/source"
)

type palette struct {
	err, warn, info, code, path, caret, note, gutter *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		path:   mk(color.FgWhite, color.Bold),
		caret:  mk(color.FgGreen, color.Bold),
		note:   mk(color.FgCyan),
		gutter: mk(color.FgBlue),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty renders diagnostics for a terminal. Items are printed in bag order;
// call bag.Sort first for a stable order. Each diagnostic is printed as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with the span underlined ^~~~ and its notes.
// Diagnostics without a span print only the header.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	var f *source.File
	if d.HasSpan && fs != nil {
		f = fs.Get(d.Primary.File)
	}
	sev := p.severity(d.Severity)
	msg := clip(d.Message, opts.Width)
	if f == nil {
		fmt.Fprintf(w, "%s %s: %s\n", sev.Sprint(d.Severity), p.code.Sprint(d.Code.ID()), msg)
		return
	}
	start, end := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.path.Sprintf("%s:%d:%d", formatPath(f, opts.PathMode), start.Line, start.Col),
		sev.Sprint(d.Severity), p.code.Sprint(d.Code.ID()), msg)
	writeSnippet(w, f, start, end, int(opts.Context), p)
	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nf := fs.Get(n.Span.File)
		if nf == nil {
			fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
			continue
		}
		ns, ne := fs.Resolve(n.Span)
		fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"), formatPath(nf, opts.PathMode), ns.Line, ns.Col, n.Msg)
		writeSnippet(w, nf, ns, ne, 0, p)
	}
}

// writeSnippet prints the primary line plus ctx lines on each side, and a
// caret line under the span. Columns are measured in display cells so that
// wide runes keep the caret aligned.
func writeSnippet(w io.Writer, f *source.File, start, end source.LineCol, ctx int, p palette) {
	if start.Line == 0 {
		return
	}
	first := int(start.Line) - ctx
	if first < 1 {
		first = 1
	}
	last := int(start.Line) + ctx
	gutterWidth := len(fmt.Sprint(last))
	for ln := first; ln <= last; ln++ {
		text, ok := lineAt(f, ln)
		if !ok {
			break
		}
		text = strings.ReplaceAll(text, "\t", "    ")
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln), text)
		if ln != int(start.Line) {
			continue
		}
		raw, _ := lineAt(f, ln)
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""), p.caret.Sprint(caretLine(raw, start, end)))
	}
}

func lineAt(f *source.File, ln int) (string, bool) {
	if ln < 1 || ln > len(f.LineIdx)+1 {
		return "", false
	}
	return f.Line(uint32(ln)), true // #nosec G115 -- bounded by the line index
}

func caretLine(line string, start, end source.LineCol) string {
	col := int(start.Col) - 1
	if col > len(line) {
		col = len(line)
	}
	stop := len(line)
	if end.Line == start.Line {
		stop = min(int(end.Col)-1, len(line))
	}
	prefix := strings.ReplaceAll(line[:col], "\t", "    ")
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", runewidth.StringWidth(prefix)))
	sb.WriteString("^")
	if stop > col {
		span := strings.ReplaceAll(line[col:stop], "\t", "    ")
		if n := runewidth.StringWidth(span) - 1; n > 0 {
			sb.WriteString(strings.Repeat("~", n))
		}
	}
	return sb.String()
}

func clip(s string, width uint8) string {
	if width == 0 || runewidth.StringWidth(s) <= int(width) {
		return s
	}
	return runewidth.Truncate(s, int(width), "...")
}
