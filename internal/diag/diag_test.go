package diag

import (
	"testing"

	"epscript/internal/source"
)

func TestBagSortAndCount(t *testing.T) {
	b := NewBag(0)
	b.Add(NewError(SemaUndeclaredName, source.Span{Start: 10, End: 13}, "second"))
	b.Add(New(SevWarning, SemaShadowBuiltin, source.Span{Start: 2, End: 4}, "warn"))
	b.Add(NewError(LexUnknownChar, source.Span{Start: 2, End: 4}, "first"))

	b.Sort()
	items := b.Items()
	if items[0].Code != LexUnknownChar || items[1].Code != SemaShadowBuiltin || items[2].Code != SemaUndeclaredName {
		t.Fatalf("unexpected order: %v %v %v", items[0].Code, items[1].Code, items[2].Code)
	}
	if got := b.ErrorCount(); got != 2 {
		t.Errorf("ErrorCount = %d, want 2", got)
	}
	if !b.HasErrors() {
		t.Error("HasErrors = false")
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(1)
	if !b.Add(NewError(SynUnexpectedToken, source.Span{}, "a")) {
		t.Fatal("first add rejected")
	}
	if b.Add(NewError(SynUnexpectedToken, source.Span{}, "b")) {
		t.Fatal("second add accepted past limit")
	}

	other := NewBag(0)
	other.Add(NewError(SemaRedeclaration, source.Span{}, "c"))
	b.Merge(other)
	if b.Len() != 2 {
		t.Errorf("Merge lost items: %d", b.Len())
	}
}

func TestBagLimitKeepsEarliestErrors(t *testing.T) {
	b := NewBag(2)
	b.Add(New(SevWarning, SemaShadowBuiltin, source.Span{Start: 0, End: 1}, "warn"))
	b.Add(NewError(LexUnknownChar, source.Span{Start: 30, End: 31}, "late"))
	if !b.Add(NewError(SemaUndeclaredName, source.Span{Start: 10, End: 11}, "early")) {
		t.Fatal("error should push out the warning")
	}
	if !b.Add(NewError(SemaUndeclaredName, source.Span{Start: 20, End: 21}, "middle")) {
		t.Fatal("earlier error should push out the later one")
	}
	if b.Add(NewError(SemaUndeclaredName, source.Span{Start: 40, End: 41}, "last")) {
		t.Fatal("later error accepted into a full bag")
	}
	if b.Add(New(SevWarning, SemaShadowBuiltin, source.Span{Start: 0, End: 1}, "warn again")) {
		t.Fatal("warning accepted over errors")
	}

	b.Sort()
	items := b.Items()
	if len(items) != 2 || items[0].Message != "early" || items[1].Message != "middle" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestCountingReporterCountsRejected(t *testing.T) {
	bag := NewBag(1)
	rep := &CountingReporter{Next: NewDedupReporter(BagReporter{Bag: bag})}
	sp := source.Span{Start: 1, End: 2}

	ReportError(rep, SemaUndeclaredName, sp, "x").Emit()
	ReportError(rep, SemaUndeclaredName, source.Span{Start: 5, End: 6}, "y").Emit()
	ReportWarning(rep, SemaShadowBuiltin, sp, "w").Emit()

	if rep.Errors != 2 {
		t.Errorf("Errors = %d, want 2", rep.Errors)
	}
	if bag.Len() != 1 {
		t.Errorf("bag len = %d, want 1", bag.Len())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	rep := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{Start: 1, End: 2}
	for range 3 {
		rep.Report(LexUnknownChar, SevError, sp, "unknown character '$'", nil)
	}
	rep.Report(LexUnknownChar, SevError, sp, "different message", nil)
	if bag.Len() != 2 {
		t.Errorf("bag len = %d, want 2", bag.Len())
	}
}

func TestBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportError(BagReporter{Bag: bag}, SemaRedeclaration, source.Span{Start: 4, End: 5}, "redeclared").
		WithNote(source.Span{Start: 0, End: 1}, "previous declaration here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("emitted %d times", bag.Len())
	}
	if n := bag.Items()[0].Notes; len(n) != 1 || n[0].Msg != "previous declaration here" {
		t.Errorf("notes = %+v", n)
	}
}

func TestCodeIDs(t *testing.T) {
	tests := []struct {
		code  Code
		id    string
		phase string
	}{
		{LexBadNumber, "LEX1004", "lex"},
		{SynExpectSemicolon, "SYN2005", "syntax"},
		{SemaArityMismatch, "SEM3003", "sema"},
		{IOInvalidEncoding, "IO4002", "io"},
		{UnknownCode, "E0000", "unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.id {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.id)
		}
		if got := tt.code.Phase(); got != tt.phase {
			t.Errorf("%d.Phase() = %q, want %q", tt.code, got, tt.phase)
		}
	}
	if Code(9999).Title() != "Unknown error" {
		t.Error("unknown code title")
	}
}

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("sample.eps", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		NewError(SynUnexpectedToken, source.Span{File: id, Start: 0, End: 1}, "first line\nsecond").
			WithNote(source.Span{File: id, Start: 2, End: 3}, "note line"),
		New(SevWarning, SemaShadowBuiltin, source.Span{File: id, Start: 2, End: 3}, "another"),
	}
	want := "error SYN2001 sample.eps:1:1 first line second\n" +
		"note SYN2001 sample.eps:2:1 note line\n" +
		"warning SEM3011 sample.eps:2:1 another"
	if got := FormatShortDiagnostics(diags, fs, true); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}
