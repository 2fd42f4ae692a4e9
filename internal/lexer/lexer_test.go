package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"epscript/internal/diag"
	"epscript/internal/lexer"
	"epscript/internal/source"
	"epscript/internal/token"
)

// testReporter собирает все диагностики, полученные от лексера
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
	})
}

func (r *testReporter) ErrorMessages() []string {
	messages := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		messages = append(messages, fmt.Sprintf("[%s] %s: %s", d.Code.ID(), d.Severity, d.Message))
	}
	return messages
}

func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.eps", []byte(input))
	reporter := &testReporter{}
	return lexer.New(fs.Get(fileID), lexer.Options{Reporter: reporter}), reporter
}

func collectAllTokens(lx *lexer.Lexer) []token.Token {
	return lx.All()
}

func expectTokens(t *testing.T, input string, expected []token.Kind) {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens := collectAllTokens(lx)
	tokens = tokens[:len(tokens)-1] // EOF

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d\nInput: %q\nTokens: %v\nErrors: %v",
			len(expected), len(tokens), input, tokensToString(tokens), reporter.ErrorMessages())
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("Token %d: expected %v, got %v (text: %q)", i, expected[i], tok.Kind, tok.Text)
		}
	}
}

func expectSingleToken(t *testing.T, input string, expectedKind token.Kind, expectedText string) {
	t.Helper()
	lx, _ := makeTestLexer(input)
	tok := lx.Next()
	if tok.Kind != expectedKind {
		t.Errorf("Expected kind %v, got %v", expectedKind, tok.Kind)
	}
	if tok.Text != expectedText {
		t.Errorf("Expected text %q, got %q", expectedText, tok.Text)
	}
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func TestIdentifiers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"foo", token.Ident},
		{"_bar", token.Ident},
		{"x123", token.Ident},
		{"P1", token.Ident},
		{"Function", token.Ident},
		{"функция", token.Ident},
		{"x_ü2", token.Ident},
		{"function", token.KwFunction},
		{"static", token.KwStatic},
		{"do", token.KwDo},
		{"true", token.KwTrue},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.input)
		})
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		value uint32
	}{
		{"0", 0},
		{"42", 42},
		{"0x1F", 31},
		{"0XFFFFFFFF", 0xFFFFFFFF},
		{"4294967295", 4294967295},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lx, rep := makeTestLexer(tt.input)
			tok := lx.Next()
			if tok.Kind != token.IntLit || tok.IsRecovered() {
				t.Fatalf("got %v recovered=%v", tok.Kind, tok.IsRecovered())
			}
			if len(rep.diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics: %v", rep.ErrorMessages())
			}
			v, ok := lexer.ParseDword(tok.Text)
			if !ok || v != tt.value {
				t.Errorf("ParseDword(%q) = %d,%v", tok.Text, v, ok)
			}
		})
	}
}

func TestNumbers_Malformed(t *testing.T) {
	for _, input := range []string{"4294967296", "12ab", "0x", "0xZZ", "0x1_0"} {
		t.Run(input, func(t *testing.T) {
			lx, rep := makeTestLexer(input)
			tok := lx.Next()
			if tok.Kind != token.IntLit || !tok.IsRecovered() {
				t.Errorf("token = %v recovered=%v", tok.Kind, tok.IsRecovered())
			}
			if tok.Text != input {
				t.Errorf("malformed tail must be consumed, text = %q", tok.Text)
			}
			if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != diag.LexBadNumber {
				t.Errorf("diagnostics = %v", rep.ErrorMessages())
			}
			if next := lx.Next(); next.Kind != token.EOF {
				t.Errorf("expected EOF, got %v", next.Kind)
			}
		})
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`'single'`, "single"},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"q\"q"`, `q"q`},
		{`'it\'s'`, "it's"},
		{`"\x41\x7a"`, "Az"},
		{`"nul\0"`, "nul\x00"},
		{`"back\\slash"`, `back\slash`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lx, rep := makeTestLexer(tt.input)
			tok := lx.Next()
			if tok.Kind != token.StringLit || tok.Text != tt.input {
				t.Fatalf("token = %v %q", tok.Kind, tok.Text)
			}
			if len(rep.diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics: %v", rep.ErrorMessages())
			}
			if got := lexer.Unquote(tok.Text); got != tt.want {
				t.Errorf("Unquote = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestString_Unterminated(t *testing.T) {
	for _, input := range []string{`"abc`, "\"abc\nx;", `"ends with escape\"`, `"abc\`, "\"abc\\\nx;"} {
		t.Run(input, func(t *testing.T) {
			lx, rep := makeTestLexer(input)
			tok := lx.Next()
			if tok.Kind != token.StringLit || !tok.IsRecovered() {
				t.Fatalf("token = %v recovered=%v", tok.Kind, tok.IsRecovered())
			}
			if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != diag.LexUnterminatedString {
				t.Fatalf("diagnostics = %v", rep.ErrorMessages())
			}
			if strings.Contains(tok.Text, "\n") {
				t.Error("string token must stop before the newline")
			}
		})
	}
}

func TestString_BadEscape(t *testing.T) {
	lx, rep := makeTestLexer(`"a\qb" x`)
	tok := lx.Next()
	if tok.Kind != token.StringLit || !tok.IsRecovered() {
		t.Fatalf("token = %v recovered=%v", tok.Kind, tok.IsRecovered())
	}
	if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != diag.LexBadEscape {
		t.Fatalf("diagnostics = %v", rep.ErrorMessages())
	}
	if next := lx.Next(); next.Kind != token.Ident || next.Text != "x" {
		t.Errorf("next = %v %q", next.Kind, next.Text)
	}
}

func TestOperators(t *testing.T) {
	expectTokens(t, "+ - * / % = += -= *= /= %= &= |= ^= <<= >>= ++ --", []token.Kind{
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent, token.Assign,
		token.PlusAssign, token.MinusAssign, token.StarAssign, token.SlashAssign, token.PercentAssign,
		token.AmpAssign, token.PipeAssign, token.CaretAssign, token.ShlAssign, token.ShrAssign,
		token.PlusPlus, token.MinusMinus,
	})
	expectTokens(t, "== != < <= > >= << >> & | ^ ~ ! && ||", []token.Kind{
		token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq, token.Shl, token.Shr,
		token.Amp, token.Pipe, token.Caret, token.Tilde, token.Bang, token.AndAnd, token.OrOr,
	})
	expectTokens(t, "; , ( ) { } [ ]", []token.Kind{
		token.Semicolon, token.Comma, token.LParen, token.RParen,
		token.LBrace, token.RBrace, token.LBracket, token.RBracket,
	})
}

func TestOperators_Greedy(t *testing.T) {
	expectTokens(t, "a<<=b>>c", []token.Kind{token.Ident, token.ShlAssign, token.Ident, token.Shr, token.Ident})
	expectTokens(t, "i+++j", []token.Kind{token.Ident, token.PlusPlus, token.Plus, token.Ident})
	expectTokens(t, "a&&&b", []token.Kind{token.Ident, token.AndAnd, token.Amp, token.Ident})
}

func TestTrivia(t *testing.T) {
	lx, rep := makeTestLexer("  // line\n\n/* block\n */\tx")
	tok := lx.Next()
	if tok.Kind != token.Ident {
		t.Fatalf("got %v", tok.Kind)
	}
	want := []token.TriviaKind{
		token.TriviaSpace, token.TriviaLineComment, token.TriviaNewline,
		token.TriviaBlockComment, token.TriviaSpace,
	}
	if len(tok.Leading) != len(want) {
		t.Fatalf("leading = %d entries, want %d", len(tok.Leading), len(want))
	}
	for i, k := range want {
		if tok.Leading[i].Kind != k {
			t.Errorf("trivia %d = %v, want %v", i, tok.Leading[i].Kind, k)
		}
	}
	if tok.Leading[1].Text != "// line" {
		t.Errorf("comment text = %q", tok.Leading[1].Text)
	}
	if len(rep.diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", rep.ErrorMessages())
	}
}

func TestTrivia_UnterminatedBlockComment(t *testing.T) {
	lx, rep := makeTestLexer("x /* never closed")
	tokens := collectAllTokens(lx)
	if len(tokens) != 2 || tokens[1].Kind != token.EOF {
		t.Fatalf("tokens = %v", tokensToString(tokens))
	}
	if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != diag.LexUnterminatedBlockComment {
		t.Errorf("diagnostics = %v", rep.ErrorMessages())
	}
}

func TestSlashIsOperatorNotComment(t *testing.T) {
	expectTokens(t, "a / b /= c", []token.Kind{token.Ident, token.Slash, token.Ident, token.SlashAssign, token.Ident})
}

func TestUnknownCharacter(t *testing.T) {
	lx, rep := makeTestLexer("a $ b € c")
	tokens := collectAllTokens(lx)
	kinds := []token.Kind{token.Ident, token.Invalid, token.Ident, token.Invalid, token.Ident, token.EOF}
	if len(tokens) != len(kinds) {
		t.Fatalf("tokens = %v", tokensToString(tokens))
	}
	for i, k := range kinds {
		if tokens[i].Kind != k {
			t.Errorf("token %d = %v, want %v", i, tokens[i].Kind, k)
		}
	}
	if !tokens[1].IsRecovered() || tokens[3].Text != "€" {
		t.Errorf("invalid tokens = %+v %+v", tokens[1], tokens[3])
	}
	if len(rep.diagnostics) != 2 {
		t.Fatalf("diagnostics = %v", rep.ErrorMessages())
	}
	for _, d := range rep.diagnostics {
		if d.Code != diag.LexUnknownChar {
			t.Errorf("code = %v", d.Code)
		}
	}
}

func TestSpansMatchText(t *testing.T) {
	input := "function f(a) {\n  return a << 2; // done\n}\n"
	lx, _ := makeTestLexer(input)
	for _, tok := range collectAllTokens(lx) {
		if got := input[tok.Span.Start:tok.Span.End]; got != tok.Text {
			t.Errorf("%v: span text %q != token text %q", tok.Kind, got, tok.Text)
		}
	}
}

func TestLexer_FunctionDefinition(t *testing.T) {
	expectTokens(t, "function add(a, b) { return a + b; }", []token.Kind{
		token.KwFunction, token.Ident, token.LParen, token.Ident, token.Comma, token.Ident, token.RParen,
		token.LBrace, token.KwReturn, token.Ident, token.Plus, token.Ident, token.Semicolon, token.RBrace,
	})
}

func TestLexer_PeekAndEOF(t *testing.T) {
	lx, _ := makeTestLexer("x;")
	if p := lx.Peek(); p.Kind != token.Ident {
		t.Fatalf("Peek = %v", p.Kind)
	}
	if p := lx.Peek(); p.Kind != token.Ident {
		t.Fatalf("second Peek = %v", p.Kind)
	}
	if n := lx.Next(); n.Kind != token.Ident {
		t.Fatalf("Next after Peek = %v", n.Kind)
	}
	lx.Next()
	for range 3 {
		if n := lx.Next(); n.Kind != token.EOF {
			t.Fatalf("EOF must repeat, got %v", n.Kind)
		}
	}
}

func TestLexer_Reset(t *testing.T) {
	lx, _ := makeTestLexer("var x = 1;")
	first := tokensToString(collectAllTokens(lx))
	lx.Reset()
	second := tokensToString(collectAllTokens(lx))
	if first != second {
		t.Errorf("Reset changed token stream:\n%s\n%s", first, second)
	}
}

func TestLexer_EmptyAndWhitespace(t *testing.T) {
	for _, input := range []string{"", "   \n\t\n", "// only a comment"} {
		lx, rep := makeTestLexer(input)
		tok := lx.Next()
		if tok.Kind != token.EOF {
			t.Errorf("%q: got %v", input, tok.Kind)
		}
		if len(rep.diagnostics) != 0 {
			t.Errorf("%q: diagnostics %v", input, rep.ErrorMessages())
		}
	}
}
