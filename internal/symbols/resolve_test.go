package symbols

import (
	"strings"
	"testing"

	"epscript/internal/ast"
	"epscript/internal/diag"
	"epscript/internal/lexer"
	"epscript/internal/parser"
	"epscript/internal/registry"
	"epscript/internal/source"
)

func parseSnippet(t *testing.T, src string) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.eps", []byte(src))
	bag := diag.NewBag(100)
	reporter := &diag.BagReporter{Bag: bag}
	lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: reporter})
	builder := ast.NewBuilder(ast.Hints{}, nil)
	res := parser.ParseFile(lx, builder, parser.Options{MaxErrors: 100, Reporter: reporter})
	return builder, res.File, bag
}

func resolveSnippet(t *testing.T, src string, constants ...string) (*ast.Builder, Result, *diag.Bag) {
	t.Helper()
	builder, fileID, parseBag := parseSnippet(t, src)
	if parseBag.HasErrors() {
		t.Fatalf("unexpected parse diagnostics: %d", parseBag.Len())
	}
	reg := registry.New()
	if err := reg.RegisterStrings(constants...); err != nil {
		t.Fatal(err)
	}
	bag := diag.NewBag(100)
	res := ResolveFile(builder, fileID, ResolveOptions{
		Constants: reg.Snapshot(),
		Reporter:  &diag.BagReporter{Bag: bag},
		Validate:  true,
	})
	if res.Err != nil {
		t.Fatalf("internal error: %v", res.Err)
	}
	return builder, res, bag
}

func codes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

// identBindings lists storage names bound to identifiers named name, in source order.
func identBindings(builder *ast.Builder, res Result, name string) []string {
	var out []string
	for i := uint32(1); i <= builder.Exprs.Arena.Len(); i++ {
		id := ast.ExprID(i)
		data, ok := builder.Exprs.Ident(id)
		if !ok || builder.Name(data.Name) != name {
			continue
		}
		sym, ok := res.Symbol(id)
		switch {
		case !ok:
			out = append(out, "<unbound>")
		case sym.IsError():
			out = append(out, "<error>")
		default:
			out = append(out, sym.Storage)
		}
	}
	return out
}

func TestResolveDeclarations(t *testing.T) {
	builder, res, bag := resolveSnippet(t, `
var a = 1, b;
const K = 2;
function f(x, y) { return x + y + a; }
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(bag))
	}
	found := map[string]SymbolKind{}
	for _, sym := range res.Table.Symbols.Data() {
		found[builder.Name(sym.Name)] = sym.Kind
	}
	want := map[string]SymbolKind{
		"a": SymbolVar, "b": SymbolVar, "K": SymbolConst,
		"f": SymbolFunction, "x": SymbolParam, "y": SymbolParam,
	}
	for name, kind := range want {
		if found[name] != kind {
			t.Errorf("%s: kind %s, want %s", name, found[name], kind)
		}
	}
}

func TestUndeclaredReference(t *testing.T) {
	_, res, bag := resolveSnippet(t, "var a = FOO + BAZ;", "FOO", "BAR")
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", codes(bag))
	}
	d := bag.Items()[0]
	if d.Code != diag.SemaUndeclaredName || !strings.Contains(d.Message, "BAZ") {
		t.Fatalf("unexpected diagnostic: %s", d.Message)
	}
	if d.Primary.Start != 14 || d.Primary.End != 17 {
		t.Errorf("span = %v, want 14-17", d.Primary)
	}
	errorBound := 0
	for _, id := range res.ExprSymbols {
		if id == res.Table.ErrorSymbol() {
			errorBound++
		}
	}
	if errorBound != 1 {
		t.Errorf("expected one reference bound to the error symbol, got %d", errorBound)
	}
}

func TestEachUndeclaredReferenceReported(t *testing.T) {
	_, _, bag := resolveSnippet(t, "x = 1; x = x + 1;")
	if bag.Len() != 3 {
		t.Fatalf("expected one diagnostic per reference, got %v", codes(bag))
	}
}

func TestRedeclarationHasNote(t *testing.T) {
	_, _, bag := resolveSnippet(t, "var v = 1;\nvar v = 2;")
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SemaRedeclaration {
		t.Fatalf("expected redeclaration, got %v", codes(bag))
	}
	notes := bag.Items()[0].Notes
	if len(notes) != 1 || notes[0].Span.Start != 4 {
		t.Fatalf("expected note at first declaration, got %+v", notes)
	}
}

func TestShadowingGetsFreshStorage(t *testing.T) {
	builder, res, bag := resolveSnippet(t, `
var x = 1;
{ var x = x + 1; x = 3; }
x = 4;
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(bag))
	}
	got := strings.Join(identBindings(builder, res, "x"), ",")
	if got != "x,x#2,x" {
		t.Fatalf("bindings = %s", got)
	}
}

func TestFunctionsAreHoisted(t *testing.T) {
	builder, res, bag := resolveSnippet(t, "later(1);\nfunction later(a) {}")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(bag))
	}
	if got := identBindings(builder, res, "later"); len(got) != 1 || got[0] != "later" {
		t.Fatalf("call target bindings = %v", got)
	}
}

func TestUnknownCalleeIsNotAnError(t *testing.T) {
	builder, res, bag := resolveSnippet(t, "SetDeaths(1, 2);")
	if bag.Len() != 0 {
		t.Fatalf("dynamic call must not be reported: %v", codes(bag))
	}
	if got := identBindings(builder, res, "SetDeaths"); len(got) != 1 || got[0] != "<unbound>" {
		t.Fatalf("bindings = %v", got)
	}
}

func TestParamRedeclaredInBody(t *testing.T) {
	_, _, bag := resolveSnippet(t, "function f(a, a) { var a; }")
	if bag.Len() != 2 {
		t.Fatalf("expected two redeclarations, got %v", codes(bag))
	}
}

func TestForHeaderScope(t *testing.T) {
	_, _, bag := resolveSnippet(t, "for (var i = 0; i < 3; i++) {}\ni = 5;")
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SemaUndeclaredName {
		t.Fatalf("loop variable must not leak: %v", codes(bag))
	}
}

func TestShadowingBuiltinWarns(t *testing.T) {
	_, _, bag := resolveSnippet(t, "var P1 = 0;", "P1")
	if bag.Len() != 1 || bag.Items()[0].Severity != diag.SevWarning {
		t.Fatalf("expected a warning, got %v", codes(bag))
	}
}

func TestNFCIdentifiersShareSymbol(t *testing.T) {
	_, _, bag := resolveSnippet(t, "var caf\u00e9 = 1; cafe\u0301 = 2;")
	if bag.Len() != 0 {
		t.Fatalf("canonically equal names should resolve: %v", codes(bag))
	}
}
