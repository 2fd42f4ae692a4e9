package parser

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"epscript/internal/ast"
	"epscript/internal/diag"
	"epscript/internal/lexer"
	"epscript/internal/source"
)

func parseSource(t *testing.T, input string) (*ast.Builder, ast.FileID, *diag.Bag) {
	return parseSourceWithOptions(t, input, Options{})
}

func parseSourceWithOptions(t *testing.T, input string, opts Options) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()

	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.eps", []byte(input))
	file := fs.Get(fileID)

	bag := diag.NewBag(100)
	reporter := &diag.BagReporter{Bag: bag}

	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	builder := ast.NewBuilder(ast.Hints{}, nil)

	if opts.MaxErrors == 0 {
		opts.MaxErrors = 100
	}
	opts.Reporter = reporter

	result := ParseFile(lx, builder, opts)
	return builder, result.File, bag
}

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

// countPhase считает ошибки по префиксу кода (LEX, SYN).
func countPhase(bag *diag.Bag, phase string) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError && strings.HasPrefix(d.Code.ID(), phase) {
			n++
		}
	}
	return n
}

func fileItems(t *testing.T, builder *ast.Builder, fileID ast.FileID) []ast.ItemID {
	t.Helper()
	file := builder.File(fileID)
	if file == nil {
		t.Fatal("file not found")
	}
	return file.Items
}

// topStmt returns the statement behind the i-th top-level item.
func topStmt(t *testing.T, builder *ast.Builder, fileID ast.FileID, i int) (ast.StmtID, *ast.Stmt) {
	t.Helper()
	items := fileItems(t, builder, fileID)
	if i >= len(items) {
		t.Fatalf("expected at least %d items, got %d", i+1, len(items))
	}
	stmtID, ok := builder.Items.Stmt(items[i])
	if !ok {
		t.Fatalf("item %d is not a statement", i)
	}
	return stmtID, builder.Stmts.Get(stmtID)
}

// exprString renders an expression as an s-expression for compact asserts.
func exprString(builder *ast.Builder, id ast.ExprID) string {
	expr := builder.Exprs.Get(id)
	if expr == nil {
		return "<nil>"
	}
	switch expr.Kind {
	case ast.ExprIdent:
		data, _ := builder.Exprs.Ident(id)
		return builder.Name(data.Name)
	case ast.ExprLit:
		data, _ := builder.Exprs.Literal(id)
		switch data.Kind {
		case ast.ExprLitString:
			return strconv.Quote(builder.Name(data.Str))
		case ast.ExprLitTrue:
			return "true"
		case ast.ExprLitFalse:
			return "false"
		}
		return strconv.FormatUint(uint64(data.Int), 10)
	case ast.ExprBinary:
		data, _ := builder.Exprs.Binary(id)
		return "(" + data.Op.String() + " " + exprString(builder, data.Left) + " " + exprString(builder, data.Right) + ")"
	case ast.ExprUnary:
		data, _ := builder.Exprs.Unary(id)
		return "(" + data.Op.String() + exprString(builder, data.Operand) + ")"
	case ast.ExprGroup:
		data, _ := builder.Exprs.Group(id)
		return "[" + exprString(builder, data.Inner) + "]"
	case ast.ExprCall:
		data, _ := builder.Exprs.Call(id)
		parts := make([]string, 0, len(data.Args))
		for _, arg := range data.Args {
			parts = append(parts, exprString(builder, arg))
		}
		return exprString(builder, data.Target) + "(" + strings.Join(parts, ", ") + ")"
	case ast.ExprIndex:
		data, _ := builder.Exprs.Index(id)
		return exprString(builder, data.Target) + "{" + exprString(builder, data.Index) + "}"
	}
	return "?"
}

func newTestLexer(input string, reporter diag.Reporter) *lexer.Lexer {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.eps", []byte(input))
	return lexer.New(fs.Get(fileID), lexer.Options{Reporter: reporter})
}
