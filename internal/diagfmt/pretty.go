package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"epscript/internal/diag"
	"epscript/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, code, path, gutter, caret, note *color.Color
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
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
		note:   mk(color.FgCyan),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждой диагностики печатает
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем строки контекста с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w) //nolint:errcheck
		}
		prettyOne(w, d, fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	f := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s: %s %s: %s\n", //nolint:errcheck
		pal.path.Sprintf("%s:%d:%d", formatPath(fs, f, opts.PathMode), start.Line, start.Col),
		pal.severity(d.Severity).Sprint(d.Severity.String()),
		pal.code.Sprint(d.Code.ID()),
		d.Message,
	)
	writeSnippet(w, fs, d.Primary, opts.Context, pal)

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nf := fs.Get(n.Span.File)
		ns, _ := fs.Resolve(n.Span)
		fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", //nolint:errcheck
			pal.note.Sprint("note:"), formatPath(fs, nf, opts.PathMode), ns.Line, ns.Col, n.Msg)
		writeSnippet(w, fs, n.Span, 0, pal)
	}
}

// writeSnippet prints the lines around span with a caret underline.
// Columns are computed in display cells, so tabs and wide runes line up.
func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, context int, pal palette) {
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	first := int(start.Line) - context
	if first < 1 {
		first = 1
	}
	last := int(start.Line) + context
	width := len(strconv.Itoa(last))

	for ln := first; ln <= last; ln++ {
		if ln > lineCount(f) {
			break
		}
		text := f.GetLine(uint32(ln)) //nolint:gosec // ln is a positive line number
		fmt.Fprintf(w, " %s %s\n", pal.gutter.Sprintf("%*d |", width, ln), expandTabs(text)) //nolint:errcheck
		if ln != int(start.Line) {
			continue
		}
		prefix := displayWidth(text, int(start.Col)-1)
		spanEnd := len(text)
		if end.Line == start.Line {
			spanEnd = int(end.Col) - 1
		}
		under := displayWidth(text, spanEnd) - prefix
		if under < 1 {
			under = 1
		}
		marker := "^" + strings.Repeat("~", under-1)
		fmt.Fprintf(w, " %s %s%s\n", //nolint:errcheck
			pal.gutter.Sprintf("%*s |", width, ""),
			strings.Repeat(" ", prefix),
			pal.caret.Sprint(marker))
	}
}

func lineCount(f *source.File) int {
	return len(f.LineIdx) + 1
}

// displayWidth returns the terminal width of the first n bytes of line.
func displayWidth(line string, n int) int {
	if n > len(line) {
		n = len(line)
	}
	if n < 0 {
		n = 0
	}
	col := 0
	for _, r := range line[:n] {
		if r == '\t' {
			col += tabWidth - col%tabWidth
			continue
		}
		col += runewidth.RuneWidth(r)
	}
	return col
}

func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var sb strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return sb.String()
}
