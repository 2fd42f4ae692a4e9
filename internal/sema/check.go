package sema

import (
	"epscript/internal/ast"
	"epscript/internal/diag"
	"epscript/internal/symbols"
)

// Options configure a semantic pass over a file.
type Options struct {
	Reporter diag.Reporter
	Symbols  *symbols.Result
}

// Result stores semantic artefacts consumed by the code generator.
type Result struct {
	// Values holds every expression whose value is known at compile time.
	Values map[ast.ExprID]symbols.Value
	// Calls classifies every call expression.
	Calls map[ast.ExprID]CallInfo
	// Skip lists statements that carry an error and must not be lowered.
	Skip map[ast.StmtID]struct{}
	// Errors counts semantic errors reported by this pass.
	Errors int
}

// Known returns the folded value of expr, if any.
func (r *Result) Known(expr ast.ExprID) (symbols.Value, bool) {
	v, ok := r.Values[expr]
	return v, ok
}

// Skipped reports whether stmt was poisoned by an error.
func (r *Result) Skipped(stmt ast.StmtID) bool {
	_, ok := r.Skip[stmt]
	return ok
}

// Check runs name-dependent checks and constant folding over a resolved file.
func Check(builder *ast.Builder, fileID ast.FileID, opts Options) Result {
	res := Result{
		Values: make(map[ast.ExprID]symbols.Value),
		Calls:  make(map[ast.ExprID]CallInfo),
		Skip:   make(map[ast.StmtID]struct{}),
	}
	if builder == nil || opts.Symbols == nil {
		return res
	}
	file := builder.File(fileID)
	if file == nil {
		return res
	}

	tc := typeChecker{
		builder:  builder,
		reporter: opts.Reporter,
		symbols:  opts.Symbols,
		table:    opts.Symbols.Table,
		result:   &res,
	}
	for _, itemID := range file.Items {
		tc.checkItem(itemID)
	}
	return res
}

type typeChecker struct {
	builder  *ast.Builder
	reporter diag.Reporter
	symbols  *symbols.Result
	table    *symbols.Table
	result   *Result

	loopDepth int
	inFn      bool
}

func (tc *typeChecker) checkItem(itemID ast.ItemID) {
	if stmt, ok := tc.builder.Items.Stmt(itemID); ok {
		tc.checkStmt(stmt)
		return
	}
	fn, ok := tc.builder.Items.Fn(itemID)
	if !ok {
		return
	}
	// break внутри функции не может выйти из цикла снаружи
	savedLoops := tc.loopDepth
	tc.loopDepth = 0
	tc.inFn = true
	if block, ok := tc.builder.Stmts.Block(fn.Body); ok {
		for _, stmt := range block.Stmts {
			tc.checkStmt(stmt)
		}
	}
	tc.inFn = false
	tc.loopDepth = savedLoops
}

func (tc *typeChecker) skip(stmt ast.StmtID) {
	tc.result.Skip[stmt] = struct{}{}
}

// checkStmt reports statement-level errors; a statement whose own
// expressions are broken is marked for skipping.
func (tc *typeChecker) checkStmt(stmtID ast.StmtID) {
	stmt := tc.builder.Stmts.Get(stmtID)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtBlock:
		block, _ := tc.builder.Stmts.Block(stmtID)
		for _, inner := range block.Stmts {
			tc.checkStmt(inner)
		}

	case ast.StmtVar:
		data, _ := tc.builder.Stmts.Var(stmtID)
		bad := false
		for _, decl := range data.Decls {
			if decl.Init.IsValid() && !tc.checkExpr(decl.Init).ok {
				bad = true
			}
		}
		if bad {
			tc.skip(stmtID)
		}

	case ast.StmtConst:
		tc.checkConst(stmtID)

	case ast.StmtAssign:
		data, _ := tc.builder.Stmts.Assign(stmtID)
		target := tc.checkTarget(data.Target)
		value := tc.checkExpr(data.Value)
		if target && value.ok && data.Op != ast.AssignSet {
			// x op= v проверяем как x op v
			if op, ok := data.Op.BinaryOp(); ok {
				if folded := tc.foldBinary(op, valueInfo{ok: true}, value, stmt.Span); !folded.ok {
					value.ok = false
				}
			}
		}
		if !target || !value.ok {
			tc.skip(stmtID)
		}

	case ast.StmtIncDec:
		data, _ := tc.builder.Stmts.IncDec(stmtID)
		if !tc.checkTarget(data.Target) {
			tc.skip(stmtID)
		}

	case ast.StmtExpr:
		data, _ := tc.builder.Stmts.Expr(stmtID)
		if !tc.checkExpr(data.Expr).ok {
			tc.skip(stmtID)
		}

	case ast.StmtIf:
		data, _ := tc.builder.Stmts.If(stmtID)
		if !tc.checkExpr(data.Cond).ok {
			tc.skip(stmtID)
		}
		tc.checkStmt(data.Then)
		tc.checkStmt(data.Else)

	case ast.StmtWhile, ast.StmtDoWhile:
		data, _ := tc.builder.Stmts.Loop(stmtID)
		if !tc.checkExpr(data.Cond).ok {
			tc.skip(stmtID)
		}
		tc.loopDepth++
		tc.checkStmt(data.Body)
		tc.loopDepth--

	case ast.StmtFor:
		data, _ := tc.builder.Stmts.For(stmtID)
		tc.checkStmt(data.Init)
		if data.Cond.IsValid() && !tc.checkExpr(data.Cond).ok {
			tc.skip(stmtID)
		}
		tc.loopDepth++
		tc.checkStmt(data.Post)
		tc.checkStmt(data.Body)
		tc.loopDepth--

	case ast.StmtBreak:
		if tc.loopDepth == 0 {
			tc.report(diag.SemaBreakOutsideLoop, stmt.Span, "'break' outside of a loop")
			tc.skip(stmtID)
		}

	case ast.StmtContinue:
		if tc.loopDepth == 0 {
			tc.report(diag.SemaContinueOutsideLoop, stmt.Span, "'continue' outside of a loop")
			tc.skip(stmtID)
		}

	case ast.StmtReturn:
		data, _ := tc.builder.Stmts.Return(stmtID)
		bad := data.Value.IsValid() && !tc.checkExpr(data.Value).ok
		if !tc.inFn {
			tc.report(diag.SemaReturnOutsideFunction, stmt.Span, "'return' outside of a function")
			bad = true
		}
		if bad {
			tc.skip(stmtID)
		}
	}
}

// checkConst folds the initializer; a known value turns the constant into a
// compile-time symbol that emits no code.
func (tc *typeChecker) checkConst(stmtID ast.StmtID) {
	data, _ := tc.builder.Stmts.Const(stmtID)
	info := tc.checkExpr(data.Value)
	if !info.ok {
		tc.skip(stmtID)
		return
	}
	ids := tc.symbols.StmtSymbols[stmtID]
	if len(ids) != 1 {
		return
	}
	sym := tc.table.Symbols.Get(ids[0])
	if sym.IsError() {
		tc.skip(stmtID)
		return
	}
	if info.val.IsKnown() {
		sym.Value = info.val
		sym.Flags |= symbols.SymbolFlagFolded
	}
}

// checkTarget validates an assignment target: a variable, a parameter, or an
// index expression.
func (tc *typeChecker) checkTarget(target ast.ExprID) bool {
	inner := tc.builder.Exprs.Unparen(target)
	if _, ok := tc.builder.Exprs.Index(inner); ok {
		return tc.checkExpr(inner).ok
	}
	sym, ok := tc.symbols.Symbol(inner)
	if !ok || sym.IsError() {
		return false
	}
	switch sym.Kind {
	case symbols.SymbolVar, symbols.SymbolParam:
		return true
	}
	span := tc.builder.Exprs.Get(target).Span
	b := diag.ReportError(tc.reporter, diag.SemaAssignToConst, span,
		"cannot assign to "+sym.Kind.String()+" '"+tc.table.Strings.MustLookup(sym.Name)+"'")
	if sym.Span != zeroSpan {
		b.WithNote(sym.Span, "declared here")
	}
	b.Emit()
	tc.result.Errors++
	return false
}
