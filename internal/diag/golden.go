package diag

import (
	"fmt"
	"strings"

	"epscript/internal/source"
)

// FormatShortDiagnostics renders one line per diagnostic (and per note when
// includeNotes is set) as "severity CODE path:line:col message".
// Order follows the input; callers sort the bag first.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	var b strings.Builder
	line := func(sev string, code Code, sp source.Span, msg string) {
		path, pos, ok := resolveSpan(fs, sp)
		if !ok {
			return
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", sev, code.ID(), path, pos.Line, pos.Col, sanitizeMessage(msg))
	}
	for i := range diags {
		d := &diags[i]
		line(severityLabel(d.Severity), d.Code, d.Primary, d.Message)
		if includeNotes {
			for _, n := range d.Notes {
				line("note", d.Code, n.Span, n.Msg)
			}
		}
	}
	return b.String()
}

func resolveSpan(fs *source.FileSet, span source.Span) (path string, pos source.LineCol, ok bool) {
	if int(span.File) >= fs.Len() {
		return "", source.LineCol{}, false
	}
	file := fs.Get(span.File)
	if span.Start > file.Size() {
		return "", source.LineCol{}, false
	}
	start, _ := fs.Resolve(span)
	return file.DisplayPath(fs.BaseDir()), start, true
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
