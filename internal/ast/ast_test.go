package ast

import (
	"testing"

	"epscript/internal/source"
)

func TestArenaIsOneBased(t *testing.T) {
	a := NewArena[int](0)
	if a.Get(0) != nil || a.Get(1) != nil {
		t.Fatal("empty arena must return nil")
	}
	id := a.Allocate(7)
	if id != 1 || *a.Get(id) != 7 || a.Len() != 1 {
		t.Fatalf("Allocate = %d", id)
	}
}

func TestTypedAccessorsCheckKind(t *testing.T) {
	b := NewBuilder(Hints{}, nil)
	sp := source.Span{Start: 0, End: 1}
	x := b.Exprs.NewIdent(sp, b.Strings.Intern("x"))
	one := b.Exprs.NewLiteral(sp, ExprLiteralData{Kind: ExprLitInt, Int: 1})
	sum := b.Exprs.NewBinary(sp.Cover(source.Span{End: 5}), ExprBinaryAdd, x, one)

	if _, ok := b.Exprs.Binary(x); ok {
		t.Error("ident must not decode as binary")
	}
	bin, ok := b.Exprs.Binary(sum)
	if !ok || bin.Left != x || bin.Right != one || bin.Op.String() != "+" {
		t.Fatalf("binary = %+v", bin)
	}
	if id, _ := b.Exprs.Ident(x); b.Name(id.Name) != "x" {
		t.Error("ident name lost")
	}

	grouped := b.Exprs.NewGroup(sp, b.Exprs.NewGroup(sp, sum))
	if b.Exprs.Unparen(grouped) != sum {
		t.Error("Unparen must strip nested groups")
	}
}

func TestStatementsAndItems(t *testing.T) {
	b := NewBuilder(Hints{}, nil)
	sp := source.Span{}
	file := b.NewFile(sp)

	ret := b.Stmts.NewReturn(sp, NoExprID)
	body := b.Stmts.NewBlock(sp, []StmtID{ret})
	fn := b.Items.NewFn(sp, b.Strings.Intern("f"), sp, []FnParam{{Name: b.Strings.Intern("a")}}, body)
	brk := b.Stmts.NewSimple(StmtBreak, sp)
	top := b.Items.NewStmt(sp, brk)
	b.PushItem(file, fn)
	b.PushItem(file, top)

	if got := b.File(file).Items; len(got) != 2 || got[0] != fn || got[1] != top {
		t.Fatalf("items = %v", got)
	}
	f, ok := b.Items.Fn(fn)
	if !ok || len(f.Params) != 1 || f.Body != body {
		t.Fatalf("fn = %+v", f)
	}
	if st, ok := b.Items.Stmt(top); !ok || st != brk {
		t.Error("stmt item mismatch")
	}
	if _, ok := b.Items.Fn(top); ok {
		t.Error("stmt item decoded as fn")
	}
	if r, ok := b.Stmts.Return(ret); !ok || r.Value.IsValid() {
		t.Error("bare return must have no value")
	}

	w := b.Stmts.NewWhile(sp, NoExprID, body)
	d := b.Stmts.NewDoWhile(sp, body, NoExprID)
	for _, id := range []StmtID{w, d} {
		if l, ok := b.Stmts.Loop(id); !ok || l.Body != body {
			t.Errorf("Loop(%d) = %+v, %v", id, l, ok)
		}
	}
}

func TestAssignOpBinary(t *testing.T) {
	if _, ok := AssignSet.BinaryOp(); ok {
		t.Error("plain '=' has no binary operator")
	}
	if op, ok := AssignShr.BinaryOp(); !ok || op != ExprBinaryShiftRight {
		t.Error("'>>=' must map to '>>'")
	}
	if AssignBitXor.String() != "^=" {
		t.Errorf("String = %q", AssignBitXor.String())
	}
}
