package epscript

import (
	"context"
	"errors"
	"strings"
	"testing"

	"epscript/internal/registry"
)

func TestCompileValidProgram(t *testing.T) {
	out, err := Compile("ok.eps", []byte("var x = 1; while (x < 10) x = x * 2;"))
	if err != nil {
		t.Fatal(err)
	}
	if out == "" || GetErrorCount() != 0 {
		t.Fatalf("output=%q errors=%d", out, GetErrorCount())
	}
}

func TestCompileWithErrorsIsNotFatal(t *testing.T) {
	out, err := Compile("bad.eps", []byte("var a = nowhere;"))
	if err != nil {
		t.Fatalf("diagnostics must not surface as errors: %v", err)
	}
	if GetErrorCount() != 1 {
		t.Fatalf("errors = %d, want 1", GetErrorCount())
	}
	if out != "" {
		t.Fatalf("errored statement must not be lowered, got %q", out)
	}
}

func TestConstantsScenario(t *testing.T) {
	c := NewCompiler(registry.New())
	if err := c.Registry().RegisterNullSeparated([]byte("FOO\x00BAR")); err != nil {
		t.Fatal(err)
	}
	out, err := c.CompileDetailed(context.Background(), "s.eps", []byte("var a = FOO + BAZ;"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Errors != 1 || c.ErrorCount() != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("errors=%d diags=%d", out.Errors, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if !strings.Contains(d.Message, "BAZ") || d.Primary.Start != 14 {
		t.Fatalf("unexpected diagnostic %q at %v", d.Message, d.Primary)
	}
}

func TestSourceRangeUndoesNormalisation(t *testing.T) {
	c := NewCompiler(registry.New())
	src := "\xEF\xBB\xBFvar a = 1;\r\nvar b = 2;\r\nb = BAZ;\r\n"
	out, err := c.CompileDetailed(context.Background(), "crlf.eps", []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Diagnostics) != 1 {
		t.Fatalf("diags = %d", len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	start, end := out.SourceRange(d.Primary)
	if got := src[start:end]; got != "BAZ" {
		t.Fatalf("original range %d..%d = %q, want BAZ", start, end, got)
	}
	if start == d.Primary.Start {
		t.Fatal("normalised and original offsets should differ here")
	}
	if pos, _ := out.FileSet.Resolve(d.Primary); pos.Line != 3 || pos.Col != 5 {
		t.Fatalf("position = %d:%d", pos.Line, pos.Col)
	}
}

func TestRegisterConstantsIdempotent(t *testing.T) {
	if err := RegisterConstants([]byte("HostUnitA\x00HostUnitB")); err != nil {
		t.Fatal(err)
	}
	before := registry.Default().Len()
	if err := RegisterConstants([]byte("HostUnitA\x00HostUnitB\x00")); err != nil {
		t.Fatal(err)
	}
	if registry.Default().Len() != before {
		t.Fatalf("registry grew from %d to %d", before, registry.Default().Len())
	}
	if _, err := Compile("use.eps", []byte("HostUnitA(1);")); err != nil || GetErrorCount() != 0 {
		t.Fatalf("registered name not visible: err=%v errors=%d", err, GetErrorCount())
	}
}

func TestRegisterConstantsRejectsInvalidUTF8(t *testing.T) {
	before := registry.Default().Len()
	err := RegisterConstants([]byte("GoodName\x00\xff\xfe"))
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding, got %v", err)
	}
	if registry.Default().Len() != before {
		t.Fatal("nothing may be registered when one name is invalid")
	}
}

func TestCompileInvalidSource(t *testing.T) {
	_, err := Compile("bin.eps", []byte{0xc3, 0x28})
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Kind != InvalidEncoding {
		t.Fatalf("expected InvalidEncoding CompileError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatal("CompileError must match ErrInvalidEncoding")
	}
}

func TestCompilersAreIsolated(t *testing.T) {
	reg := registry.New()
	if err := reg.RegisterStrings("OnlyHere"); err != nil {
		t.Fatal(err)
	}
	own := NewCompiler(reg)
	if _, err := own.Compile("a.eps", []byte("var v = OnlyHere;")); err != nil || own.ErrorCount() != 0 {
		t.Fatalf("own registry: err=%v errors=%d", err, own.ErrorCount())
	}
	other := NewCompiler(nil)
	if _, err := other.Compile("b.eps", []byte("var v = OnlyHere;")); err != nil || other.ErrorCount() != 1 {
		t.Fatalf("isolated compiler must not see the name: err=%v errors=%d", err, other.ErrorCount())
	}
}

func TestFoldingThroughHostAPI(t *testing.T) {
	folded, err := Compile("f.eps", []byte("2 + 3 * 4;"))
	if err != nil {
		t.Fatal(err)
	}
	literal, err := Compile("l.eps", []byte("14;"))
	if err != nil {
		t.Fatal(err)
	}
	if folded != literal {
		t.Fatalf("%q != %q", folded, literal)
	}
}
