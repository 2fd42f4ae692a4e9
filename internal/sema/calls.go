package sema

import (
	"fmt"

	"epscript/internal/ast"
	"epscript/internal/diag"
	"epscript/internal/registry"
	"epscript/internal/source"
	"epscript/internal/symbols"
)

// CallKind tells the code generator how to lower a call.
type CallKind uint8

const (
	// CallFunction targets a function declared in the unit.
	CallFunction CallKind = iota
	// CallBuiltin targets a registered constant used as a callee.
	CallBuiltin
	// CallUnresolved targets an unknown name; the host resolves it at run time.
	CallUnresolved
	// CallComputed calls whatever value the callee expression produces.
	CallComputed
)

func (k CallKind) String() string {
	switch k {
	case CallFunction:
		return "function"
	case CallBuiltin:
		return "builtin"
	case CallUnresolved:
		return "unresolved"
	case CallComputed:
		return "computed"
	}
	return "invalid"
}

type CallInfo struct {
	Kind   CallKind
	Symbol symbols.SymbolID // для CallFunction / CallBuiltin
	Name   string           // имя для FUNC/CALLB/CALLD
	Argc   int
}

func (tc *typeChecker) checkCall(exprID ast.ExprID, span source.Span) valueInfo {
	data, _ := tc.builder.Exprs.Call(exprID)
	ok := true
	for _, arg := range data.Args {
		if !tc.checkExpr(arg).ok {
			ok = false
		}
	}

	info, callable := tc.classifyCallee(data.Target, len(data.Args), span)
	if !callable || !ok {
		return broken
	}
	info.Argc = len(data.Args)
	tc.result.Calls[exprID] = info
	return valueInfo{ok: true}
}

func (tc *typeChecker) classifyCallee(target ast.ExprID, argc int, span source.Span) (CallInfo, bool) {
	ident, isIdent := tc.builder.Exprs.Ident(target)
	if !isIdent {
		callee := tc.checkExpr(target)
		if !callee.ok {
			return CallInfo{}, false
		}
		if callee.val.IsKnown() {
			tc.report(diag.SemaNotCallable, tc.builder.Exprs.Get(target).Span, "expression is not callable")
			return CallInfo{}, false
		}
		return CallInfo{Kind: CallComputed}, true
	}

	sym, bound := tc.symbols.Symbol(target)
	if !bound {
		name := registry.Normalize(tc.builder.Strings.MustLookup(ident.Name))
		return CallInfo{Kind: CallUnresolved, Name: name}, true
	}
	symID := tc.symbols.ExprSymbols[target]
	if sym.IsError() {
		return CallInfo{}, false
	}

	switch sym.Kind {
	case symbols.SymbolFunction:
		if sym.Params != argc {
			name := tc.table.Strings.MustLookup(sym.Name)
			msg := fmt.Sprintf("function '%s' expects %d %s, got %d", name, sym.Params, plural(sym.Params, "argument"), argc)
			diag.ReportError(tc.reporter, diag.SemaArityMismatch, span, msg).
				WithNote(sym.Span, "declared here").
				Emit()
			tc.result.Errors++
			return CallInfo{}, false
		}
		return CallInfo{Kind: CallFunction, Symbol: symID, Name: sym.Storage}, true
	case symbols.SymbolBuiltin:
		return CallInfo{Kind: CallBuiltin, Symbol: symID, Name: sym.Storage}, true
	}

	if sym.Flags&symbols.SymbolFlagFolded != 0 {
		name := tc.table.Strings.MustLookup(sym.Name)
		b := diag.ReportError(tc.reporter, diag.SemaNotCallable, tc.builder.Exprs.Get(target).Span,
			fmt.Sprintf("constant '%s' is not callable", name))
		b.WithNote(sym.Span, "declared here").Emit()
		tc.result.Errors++
		return CallInfo{}, false
	}
	tc.checkExpr(target)
	return CallInfo{Kind: CallComputed, Symbol: symID}, true
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
