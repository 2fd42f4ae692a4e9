package diagfmt_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"epscript/internal/codegen"
	"epscript/internal/diag"
	"epscript/internal/diagfmt"
	"epscript/internal/driver"
	"epscript/internal/source"
)

func compile(t *testing.T, src string) *driver.Result {
	t.Helper()
	res, err := driver.Compile(context.Background(), "test.eps", []byte(src), driver.Options{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return res
}

func TestPrettyUnderline(t *testing.T) {
	res := compile(t, "var a = 1;\nvar b = BAZ;\n")
	var buf bytes.Buffer
	diagfmt.Pretty(&buf, res.Bag, res.FileSet, diagfmt.PrettyOpts{PathMode: diagfmt.PathModeBasename})
	out := buf.String()
	if !strings.HasPrefix(out, "test.eps:2:9: ERROR SEM3001: ") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d:\n%s", len(lines), out)
	}
	if lines[1] != " 2 | var b = BAZ;" {
		t.Fatalf("source line = %q", lines[1])
	}
	if lines[2] != "   |         ^~~" {
		t.Fatalf("caret line = %q", lines[2])
	}
}

func TestPrettyContextAndNotes(t *testing.T) {
	res := compile(t, "function f(a) { return a; }\nf(1, 2);\n")
	var buf bytes.Buffer
	diagfmt.Pretty(&buf, res.Bag, res.FileSet, diagfmt.PrettyOpts{Context: 1, ShowNotes: true})
	out := buf.String()
	if !strings.Contains(out, " 1 | function f(a)") || !strings.Contains(out, " 2 | f(1, 2);") {
		t.Fatalf("context lines missing:\n%s", out)
	}
	if !strings.Contains(out, "note:") || !strings.Contains(out, "declared here") {
		t.Fatalf("note missing:\n%s", out)
	}
}

func TestPrettyTabsAndWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("wide.eps", []byte("\tvar s = \"日本\" + x;"))
	bag := diag.NewBag(10)
	// x стоит после двух широких рун
	off := uint32(strings.Index(string(fs.Get(id).Content), "x")) //nolint:gosec // short literal
	bag.Add(diag.New(diag.SevError, diag.SemaUndeclaredName, source.Span{File: id, Start: off, End: off + 1}, "undeclared name 'x'"))

	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	src, caret := lines[1], lines[2]
	if strings.Contains(src, "\t") {
		t.Fatalf("tab not expanded: %q", src)
	}
	// "    var s = "日本" + " занимает 4+8+6+3 = 21 ячейку
	want := "   | " + strings.Repeat(" ", 21) + "^"
	if caret != want {
		t.Fatalf("caret line = %q, want %q", caret, want)
	}
}

func TestPrettyColor(t *testing.T) {
	res := compile(t, "x;")
	var plain, colored bytes.Buffer
	diagfmt.Pretty(&plain, res.Bag, res.FileSet, diagfmt.PrettyOpts{})
	diagfmt.Pretty(&colored, res.Bag, res.FileSet, diagfmt.PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("plain output has escapes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored output has no escapes: %q", colored.String())
	}
}

func TestJSONOutput(t *testing.T) {
	res := compile(t, "a; b; c;")
	var buf bytes.Buffer
	err := diagfmt.JSON(&buf, res.Bag, res.FileSet, diagfmt.JSONOpts{IncludePositions: true, Max: 2, PathMode: diagfmt.PathModeBasename})
	if err != nil {
		t.Fatal(err)
	}
	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if out.Count != 3 || out.Errors != 3 || len(out.Diagnostics) != 2 {
		t.Fatalf("count=%d errors=%d listed=%d", out.Count, out.Errors, len(out.Diagnostics))
	}
	first := out.Diagnostics[0]
	if first.Code != "SEM3001" || first.Phase != "sema" || first.Location.File != "test.eps" {
		t.Fatalf("unexpected first diagnostic: %+v", first)
	}
	if first.Location.StartLine != 1 || first.Location.StartCol != 1 || first.Location.EndCol != 2 {
		t.Fatalf("unexpected location: %+v", first.Location)
	}
}

func TestJSONEmptyBag(t *testing.T) {
	out := diagfmt.BuildDiagnosticsOutput(nil, nil, diagfmt.JSONOpts{})
	if out.Diagnostics == nil || out.Count != 0 {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestTokensPretty(t *testing.T) {
	res := compile(t, "var x = 1; // c\n")
	var buf bytes.Buffer
	if err := diagfmt.FormatTokensPretty(&buf, res.Tokens, res.FileSet); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"  1: KwVar", `Ident           "x" at 1:5-1:6`, "EOF", "line_comment"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestTokensJSON(t *testing.T) {
	res := compile(t, "x = 2;")
	var buf bytes.Buffer
	if err := diagfmt.FormatTokensJSON(&buf, res.Tokens); err != nil {
		t.Fatal(err)
	}
	var toks []diagfmt.TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &toks); err != nil {
		t.Fatal(err)
	}
	if len(toks) != 5 || toks[0].Kind != "Ident" || toks[4].Kind != "EOF" {
		t.Fatalf("unexpected tokens: %+v", toks)
	}
}

func TestASTPretty(t *testing.T) {
	res := compile(t, "function f(a, b) { return a + b; }\nvar x = f(1, 2);\n")
	var buf bytes.Buffer
	if err := diagfmt.FormatASTPretty(&buf, res.Builder, res.FileID, res.FileSet); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"File test.eps",
		"├─ Function f",
		"│  ├─ Params a, b",
		"Stmt: Return",
		"Expr: Binary +",
		"└─ Stmt: Var",
		"Decl x",
		"Expr: Call",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestASTJSON(t *testing.T) {
	res := compile(t, "if (true) x = \"s\";")
	var buf bytes.Buffer
	if err := diagfmt.FormatASTJSON(&buf, res.Builder, res.FileID); err != nil {
		t.Fatal(err)
	}
	var root diagfmt.ASTNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatal(err)
	}
	if root.Type != "File" || len(root.Children) != 1 || root.Children[0].Kind != "If" {
		t.Fatalf("unexpected tree: %+v", root)
	}
	if _, err := diagfmt.BuildAST(nil, 0); err == nil {
		t.Fatal("expected error for missing tree")
	}
}

func TestEncodeProgram(t *testing.T) {
	res := compile(t, "var x = 1;")
	text, err := diagfmt.EncodeProgram(res.Program, diagfmt.EmitText)
	if err != nil || string(text) != res.Program.Text() {
		t.Fatalf("text: %q, %v", text, err)
	}
	bin, err := diagfmt.EncodeProgram(res.Program, diagfmt.EmitMsgpack)
	if err != nil {
		t.Fatal(err)
	}
	back, err := codegen.DecodeMsgpack(bin)
	if err != nil || back.Text() != res.Program.Text() {
		t.Fatalf("msgpack round trip: %v", err)
	}
	js, err := diagfmt.EncodeProgram(res.Program, diagfmt.EmitJSON)
	if err != nil || !bytes.Contains(js, []byte(`"STORE"`)) {
		t.Fatalf("json: %s, %v", js, err)
	}
}

func TestParseOptions(t *testing.T) {
	if f, err := diagfmt.ParseEmitFormat("MSGPACK"); err != nil || f != diagfmt.EmitMsgpack {
		t.Fatalf("ParseEmitFormat = %v, %v", f, err)
	}
	if _, err := diagfmt.ParseEmitFormat("xml"); err == nil {
		t.Fatal("expected error")
	}
	if m, err := diagfmt.ParsePathMode("relative"); err != nil || m != diagfmt.PathModeRelative {
		t.Fatalf("ParsePathMode = %v, %v", m, err)
	}
	if _, err := diagfmt.ParsePathMode("weird"); err == nil {
		t.Fatal("expected error")
	}
}
