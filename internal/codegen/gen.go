package codegen

import (
	"errors"
	"fmt"

	"epscript/internal/ast"
	"epscript/internal/sema"
	"epscript/internal/symbols"
)

var (
	// ErrMissingAnnotation: a statement that was not skipped lacks the
	// binding or call classification the earlier passes must provide.
	ErrMissingAnnotation = errors.New("codegen: missing semantic annotation")
	// ErrNoLoop: break/continue reached codegen outside of a loop.
	ErrNoLoop = errors.New("codegen: jump outside of a loop")
)

type loopLabels struct {
	brk, cont Label
}

type generator struct {
	builder *ast.Builder
	syms    *symbols.Result
	sem     *sema.Result
	table   *symbols.Table

	em    *emitter
	prog  *Program
	loops []loopLabels
	err   error
}

// Generate lowers a resolved and checked file into a stack-machine program.
// Statements marked as skipped by sema are not lowered. The returned error is
// always an internal invariant violation; user errors never reach here.
func Generate(builder *ast.Builder, fileID ast.FileID, syms *symbols.Result, sem *sema.Result) (*Program, error) {
	prog := &Program{}
	if builder == nil || syms == nil || sem == nil {
		return prog, nil
	}
	file := builder.File(fileID)
	if file == nil {
		return prog, nil
	}
	g := &generator{
		builder: builder,
		syms:    syms,
		sem:     sem,
		table:   syms.Table,
		em:      newEmitter(len(file.Items) * 4),
		prog:    prog,
	}
	for _, itemID := range file.Items {
		g.item(itemID)
		if g.err != nil {
			return nil, g.err
		}
	}
	if err := g.em.backpatch(); err != nil {
		return nil, err
	}
	prog.Instrs = g.em.instrs
	for i := range prog.Funcs {
		// Exit хранится в FUNC как метка, переносим уже разрешённое смещение
		prog.Funcs[i].Exit = prog.Instrs[prog.Funcs[i].Entry].Target
	}
	return prog, nil
}

func (g *generator) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

func (g *generator) item(itemID ast.ItemID) {
	if stmt, ok := g.builder.Items.Stmt(itemID); ok {
		g.stmt(stmt)
		return
	}
	fn, ok := g.builder.Items.Fn(itemID)
	if !ok {
		return
	}
	symID, ok := g.syms.ItemSymbols[itemID]
	if !ok {
		g.fail(fmt.Errorf("%w: function item %d", ErrMissingAnnotation, itemID))
		return
	}
	sym := g.table.Symbols.Get(symID)
	if sym.IsError() {
		// повторное объявление функции: ошибка уже выдана
		return
	}

	exit := g.em.newLabel()
	entry := g.em.emit(Instr{Op: OpFunc, Name: sym.Storage, Argc: len(fn.Params)})
	g.em.ref(entry, exit)
	for _, p := range g.syms.ParamSymbols[itemID] {
		ps := g.table.Symbols.Get(p)
		if ps.IsError() {
			g.em.named(OpArg, "_")
			continue
		}
		g.em.named(OpArg, ps.Storage)
	}

	saved := g.loops
	g.loops = nil
	if block, ok := g.builder.Stmts.Block(fn.Body); ok {
		for _, stmt := range block.Stmts {
			g.stmt(stmt)
		}
	}
	g.loops = saved

	g.em.push(0)
	g.em.op(OpRet)
	g.em.named(OpEndFunc, sym.Storage)
	g.em.bind(exit)
	g.prog.Funcs = append(g.prog.Funcs, FuncInfo{Name: sym.Storage, Argc: len(fn.Params), Entry: entry})
}

func (g *generator) symbol(expr ast.ExprID) *symbols.Symbol {
	sym, ok := g.syms.Symbol(expr)
	if !ok || sym.IsError() {
		g.fail(fmt.Errorf("%w: expression %d has no binding", ErrMissingAnnotation, expr))
		return nil
	}
	return sym
}

func (g *generator) declare(sym *symbols.Symbol) {
	g.em.named(OpVar, sym.Storage)
	g.prog.Vars = append(g.prog.Vars, VarInfo{Name: sym.Storage, Static: sym.Flags&symbols.SymbolFlagStatic != 0})
}
