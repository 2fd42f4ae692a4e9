package parser

import (
	"testing"

	"epscript/internal/ast"
	"epscript/internal/diag"
)

func TestOneErrorPerMalformedStatement(t *testing.T) {
	tests := []struct {
		name  string
		input string
		items int
		code  diag.Code
	}{
		{"missing name", "var = 5; var y = 1;", 1, diag.SynExpectIdentifier},
		{"junk arguments", "foo(1 2 3); x = 1;", 1, diag.SynUnclosedParen},
		{"missing semicolon", "x = 1 2 while (a) {}", 1, diag.SynExpectSemicolon},
		{"bad index", "a[1 2] = 3; b = 4;", 1, diag.SynUnclosedBracket},
		{"if without paren", "if a) b = 1; c = 2;", 1, diag.SynExpectLParen},
		{"do without while", "do x = 1; y = 2; z = 3;", 1, diag.SynExpectWhile},
		{"bad param", "function f(a, 1) {} x = 1;", 1, diag.SynExpectIdentifier},
		{"stray close brace", "} x = 1;", 1, diag.SynExpectExpression},
		{"if header with block body", "if (a + ) { b = 1; } c = 2;", 1, diag.SynExpectExpression},
		{"if header with else", "if (a + ) { b = 1; } else { b = 2; } c = 3;", 1, diag.SynExpectExpression},
		{"while header with block body", "while (x y) { z = 1; } c = 2;", 1, diag.SynUnclosedParen},
		{"for header with nested blocks", "for (i = 0; i < ; i++) { if (i) { j = 1; } } k = 2;", 1, diag.SynExpectExpression},
		{"loop header inside function", "function f() { while (x y) { z = 1; } c = 2; }", 1, diag.SynUnclosedParen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder, fileID, bag := parseSource(t, tt.input)
			if bag.Len() != 1 {
				t.Fatalf("expected exactly one diagnostic, got %s", diagnosticsSummary(bag))
			}
			if bag.Items()[0].Code != tt.code {
				t.Errorf("code = %s, want %s", bag.Items()[0].Code.ID(), tt.code.ID())
			}
			if items := fileItems(t, builder, fileID); len(items) != tt.items {
				t.Errorf("expected %d recovered items, got %d", tt.items, len(items))
			}
		})
	}
}

func TestErrorsInSeparateStatements(t *testing.T) {
	_, _, bag := parseSource(t, "var = 1;\nx = ;\nif () y = 2;\nz = 3;")
	if got := countPhase(bag, "SYN"); got != 3 {
		t.Fatalf("expected 3 syntax errors, got %d: %s", got, diagnosticsSummary(bag))
	}
}

func TestErrorInsideBlockKeepsBlock(t *testing.T) {
	builder, fileID, bag := parseSource(t, "while (a) { x = ; y = 1; }")
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %s", diagnosticsSummary(bag))
	}
	stmtID, _ := topStmt(t, builder, fileID, 0)
	loop, _ := builder.Stmts.Loop(stmtID)
	block, ok := builder.Stmts.Block(loop.Body)
	if !ok || len(block.Stmts) != 1 {
		t.Fatalf("expected block with the surviving assignment")
	}
}

func TestUnclosedBlock(t *testing.T) {
	builder, fileID, bag := parseSource(t, "{ x = 1;")
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %s", diagnosticsSummary(bag))
	}
	d := bag.Items()[0]
	if d.Code != diag.SynUnclosedBrace {
		t.Errorf("code = %s", d.Code.ID())
	}
	if len(d.Notes) != 1 || d.Notes[0].Span.Start != 0 {
		t.Errorf("expected note at the opening brace, got %+v", d.Notes)
	}
	if d.Primary.Start != 8 {
		t.Errorf("primary span should point past the last token, got %v", d.Primary)
	}
	if len(fileItems(t, builder, fileID)) != 1 {
		t.Errorf("block should survive")
	}
}

func TestUnterminatedStringIsLexOnly(t *testing.T) {
	for _, input := range []string{`x = "abc`, "x = \"abc\ny = 1;", `foo("abc`, `x = "abc\`, "x = \"abc\\\ny = 1;"} {
		t.Run(input, func(t *testing.T) {
			_, _, bag := parseSource(t, input)
			if got := countPhase(bag, "LEX"); got != 1 {
				t.Errorf("expected 1 lexical error, got %d: %s", got, diagnosticsSummary(bag))
			}
			if got := countPhase(bag, "SYN"); got != 0 {
				t.Errorf("expected no syntax errors, got %s", diagnosticsSummary(bag))
			}
		})
	}
}

func TestUnterminatedCommentIsLexOnly(t *testing.T) {
	_, _, bag := parseSource(t, "x = 1 /* never closed")
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexUnterminatedBlockComment {
		t.Fatalf("expected only the comment error, got %s", diagnosticsSummary(bag))
	}
}

func TestUnknownCharIsLexOnly(t *testing.T) {
	builder, fileID, bag := parseSource(t, "x = 1 @ 2; y = 3;")
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexUnknownChar {
		t.Fatalf("expected only the lexer error, got %s", diagnosticsSummary(bag))
	}
	if len(fileItems(t, builder, fileID)) != 1 {
		t.Errorf("statement after the bad one should be parsed")
	}
}

func TestMaxErrors(t *testing.T) {
	_, _, bag := parseSourceWithOptions(t, "var = 1; var = 2; var = 3; var = 4;", Options{MaxErrors: 2})
	if got := countPhase(bag, "SYN"); got != 2 {
		t.Fatalf("expected 2 reported errors, got %d: %s", got, diagnosticsSummary(bag))
	}
}

func TestParseResultCountsErrors(t *testing.T) {
	bag := diag.NewBag(0)
	builder := ast.NewBuilder(ast.Hints{}, nil)
	lx := newTestLexer("x = ; y = ;", &diag.BagReporter{Bag: bag})
	res := ParseFile(lx, builder, Options{Reporter: &diag.BagReporter{Bag: bag}})
	if res.Errors != 2 {
		t.Fatalf("Result.Errors = %d, want 2", res.Errors)
	}
	if !res.File.IsValid() {
		t.Fatal("file id should be valid")
	}
}

func TestMalformedLoopKeepsFunctionBody(t *testing.T) {
	builder, fileID, bag := parseSource(t, "function f() { if (a +) { b = 1; } c = 2; }\nd = 3;")
	if got := countPhase(bag, "SYN"); got != 1 {
		t.Fatalf("expected 1 syntax error, got %s", diagnosticsSummary(bag))
	}
	items := fileItems(t, builder, fileID)
	if len(items) != 2 {
		t.Fatalf("expected function and one statement, got %d items", len(items))
	}
	fn, ok := builder.Items.Fn(items[0])
	if !ok {
		t.Fatal("first item should be the function")
	}
	body, _ := builder.Stmts.Block(fn.Body)
	if len(body.Stmts) != 1 {
		t.Fatalf("c = 2 should stay inside the function body, got %d statements", len(body.Stmts))
	}
}
