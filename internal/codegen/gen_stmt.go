package codegen

import (
	"fmt"

	"epscript/internal/ast"
	"epscript/internal/symbols"
)

func (g *generator) stmt(stmtID ast.StmtID) {
	if !stmtID.IsValid() || g.err != nil || g.sem.Skipped(stmtID) {
		return
	}
	stmt := g.builder.Stmts.Get(stmtID)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtBlock:
		block, _ := g.builder.Stmts.Block(stmtID)
		for _, inner := range block.Stmts {
			g.stmt(inner)
		}

	case ast.StmtVar:
		g.varStmt(stmtID)

	case ast.StmtConst:
		data, _ := g.builder.Stmts.Const(stmtID)
		ids := g.syms.StmtSymbols[stmtID]
		if len(ids) != 1 {
			g.fail(fmt.Errorf("%w: const statement %d", ErrMissingAnnotation, stmtID))
			return
		}
		sym := g.table.Symbols.Get(ids[0])
		if sym.IsError() || sym.Flags&symbols.SymbolFlagFolded != 0 {
			return
		}
		// несвёрнутая константа живёт как неизменяемая переменная
		g.declare(sym)
		g.expr(data.Value)
		g.em.named(OpStore, sym.Storage)

	case ast.StmtAssign:
		data, _ := g.builder.Stmts.Assign(stmtID)
		op, compound := data.Op.BinaryOp()
		g.store(data.Target, func() {
			g.expr(data.Value)
		}, op, compound)

	case ast.StmtIncDec:
		data, _ := g.builder.Stmts.IncDec(stmtID)
		op := ast.ExprBinaryAdd
		if !data.Inc {
			op = ast.ExprBinarySub
		}
		g.store(data.Target, func() {
			g.em.push(1)
		}, op, true)

	case ast.StmtExpr:
		data, _ := g.builder.Stmts.Expr(stmtID)
		g.expr(data.Expr)
		g.em.op(OpPop)

	case ast.StmtIf:
		data, _ := g.builder.Stmts.If(stmtID)
		elseL := g.em.newLabel()
		g.jumpIfFalse(data.Cond, elseL)
		g.stmt(data.Then)
		if data.Else.IsValid() {
			end := g.em.newLabel()
			g.em.jump(OpJmp, end)
			g.em.bind(elseL)
			g.stmt(data.Else)
			g.em.bind(end)
		} else {
			g.em.bind(elseL)
		}

	case ast.StmtWhile:
		data, _ := g.builder.Stmts.Loop(stmtID)
		cond, end := g.em.newLabel(), g.em.newLabel()
		g.em.bind(cond)
		g.jumpIfFalse(data.Cond, end)
		g.loop(end, cond, data.Body)
		g.em.jump(OpJmp, cond)
		g.em.bind(end)

	case ast.StmtDoWhile:
		data, _ := g.builder.Stmts.Loop(stmtID)
		body, cont, end := g.em.newLabel(), g.em.newLabel(), g.em.newLabel()
		g.em.bind(body)
		g.loop(end, cont, data.Body)
		g.em.bind(cont)
		g.jumpIfTrue(data.Cond, body)
		g.em.bind(end)

	case ast.StmtFor:
		data, _ := g.builder.Stmts.For(stmtID)
		cond, cont, end := g.em.newLabel(), g.em.newLabel(), g.em.newLabel()
		g.stmt(data.Init)
		g.em.bind(cond)
		if data.Cond.IsValid() {
			g.jumpIfFalse(data.Cond, end)
		}
		g.loop(end, cont, data.Body)
		g.em.bind(cont)
		g.stmt(data.Post)
		g.em.jump(OpJmp, cond)
		g.em.bind(end)

	case ast.StmtBreak, ast.StmtContinue:
		if len(g.loops) == 0 {
			g.fail(fmt.Errorf("%w: statement %d", ErrNoLoop, stmtID))
			return
		}
		top := g.loops[len(g.loops)-1]
		if stmt.Kind == ast.StmtBreak {
			g.em.jump(OpJmp, top.brk)
		} else {
			g.em.jump(OpJmp, top.cont)
		}

	case ast.StmtReturn:
		data, _ := g.builder.Stmts.Return(stmtID)
		if data.Value.IsValid() {
			g.expr(data.Value)
		} else {
			g.em.push(0)
		}
		g.em.op(OpRet)
	}
}

func (g *generator) varStmt(stmtID ast.StmtID) {
	data, _ := g.builder.Stmts.Var(stmtID)
	ids := g.syms.StmtSymbols[stmtID]
	if len(ids) != len(data.Decls) {
		g.fail(fmt.Errorf("%w: var statement %d", ErrMissingAnnotation, stmtID))
		return
	}
	for i, decl := range data.Decls {
		sym := g.table.Symbols.Get(ids[i])
		if sym.IsError() {
			continue
		}
		g.declare(sym)
		if decl.Init.IsValid() {
			g.expr(decl.Init)
			g.em.named(OpStore, sym.Storage)
		}
	}
}

func (g *generator) loop(brk, cont Label, body ast.StmtID) {
	g.loops = append(g.loops, loopLabels{brk: brk, cont: cont})
	g.stmt(body)
	g.loops = g.loops[:len(g.loops)-1]
}

// store lowers "target = value" or, for compound, "target = target op value".
func (g *generator) store(target ast.ExprID, value func(), op ast.ExprBinaryOp, compound bool) {
	target = g.builder.Exprs.Unparen(target)
	if idx, ok := g.builder.Exprs.Index(target); ok {
		g.expr(idx.Target)
		g.expr(idx.Index)
		if compound {
			// база и индекс вычисляются повторно
			g.expr(idx.Target)
			g.expr(idx.Index)
			g.em.op(OpIndex)
			value()
			g.em.op(binaryOpcode(op))
		} else {
			value()
		}
		g.em.op(OpStIdx)
		return
	}

	sym := g.symbol(target)
	if sym == nil {
		return
	}
	if compound {
		g.em.named(OpLoad, sym.Storage)
		value()
		g.em.op(binaryOpcode(op))
	} else {
		value()
	}
	g.em.named(OpStore, sym.Storage)
}

// jumpIfFalse jumps to l unless cond holds; a known condition needs no test.
func (g *generator) jumpIfFalse(cond ast.ExprID, l Label) {
	if v, ok := g.sem.Known(cond); ok && v.Kind == symbols.ValueInt {
		if v.Int == 0 {
			g.em.jump(OpJmp, l)
		}
		return
	}
	g.expr(cond)
	g.em.jump(OpJz, l)
}

func (g *generator) jumpIfTrue(cond ast.ExprID, l Label) {
	if v, ok := g.sem.Known(cond); ok && v.Kind == symbols.ValueInt {
		if v.Int != 0 {
			g.em.jump(OpJmp, l)
		}
		return
	}
	g.expr(cond)
	g.em.jump(OpJnz, l)
}
