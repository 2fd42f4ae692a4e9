package sema

import (
	"fmt"

	"epscript/internal/ast"
	"epscript/internal/diag"
	"epscript/internal/source"
	"epscript/internal/symbols"
)

var zeroSpan source.Span

// valueInfo: ok=false - выражение содержит ошибку; val.Kind=ValueNone -
// значение известно только во время выполнения.
type valueInfo struct {
	val symbols.Value
	ok  bool
}

var broken = valueInfo{}

func known(v symbols.Value) valueInfo { return valueInfo{val: v, ok: true} }

func boolValue(b bool) symbols.Value {
	if b {
		return symbols.IntValue(1)
	}
	return symbols.IntValue(0)
}

func (tc *typeChecker) report(code diag.Code, span source.Span, msg string) {
	diag.ReportError(tc.reporter, code, span, msg).Emit()
	tc.result.Errors++
}

// checkExpr validates expr and folds it when every operand is known.
func (tc *typeChecker) checkExpr(exprID ast.ExprID) valueInfo {
	info := tc.evalExpr(exprID)
	if info.ok && info.val.IsKnown() {
		tc.result.Values[exprID] = info.val
	}
	return info
}

func (tc *typeChecker) evalExpr(exprID ast.ExprID) valueInfo {
	expr := tc.builder.Exprs.Get(exprID)
	if expr == nil {
		return broken
	}
	switch expr.Kind {
	case ast.ExprLit:
		lit, _ := tc.builder.Exprs.Literal(exprID)
		if lit.Kind == ast.ExprLitString {
			return known(symbols.StringValue(tc.builder.Strings.MustLookup(lit.Str)))
		}
		return known(symbols.IntValue(lit.Int))

	case ast.ExprIdent:
		sym, ok := tc.symbols.Symbol(exprID)
		if !ok || sym.IsError() {
			return broken
		}
		if sym.Flags&symbols.SymbolFlagFolded != 0 {
			return known(sym.Value)
		}
		return valueInfo{ok: true}

	case ast.ExprGroup:
		data, _ := tc.builder.Exprs.Group(exprID)
		return tc.checkExpr(data.Inner)

	case ast.ExprUnary:
		data, _ := tc.builder.Exprs.Unary(exprID)
		operand := tc.checkExpr(data.Operand)
		if !operand.ok {
			return broken
		}
		return tc.foldUnary(data.Op, operand, expr.Span)

	case ast.ExprBinary:
		data, _ := tc.builder.Exprs.Binary(exprID)
		left := tc.checkExpr(data.Left)
		right := tc.checkExpr(data.Right)
		if !left.ok || !right.ok {
			return broken
		}
		return tc.foldBinary(data.Op, left, right, expr.Span)

	case ast.ExprCall:
		return tc.checkCall(exprID, expr.Span)

	case ast.ExprIndex:
		data, _ := tc.builder.Exprs.Index(exprID)
		target := tc.checkExpr(data.Target)
		index := tc.checkExpr(data.Index)
		if !target.ok || !index.ok {
			return broken
		}
		if index.val.Kind == symbols.ValueString {
			tc.report(diag.SemaTypeMismatch, tc.builder.Exprs.Get(data.Index).Span, "index must be an integer, got a string")
			return broken
		}
		return valueInfo{ok: true}
	}
	return broken
}

func (tc *typeChecker) foldUnary(op ast.ExprUnaryOp, operand valueInfo, span source.Span) valueInfo {
	switch operand.val.Kind {
	case symbols.ValueString:
		tc.report(diag.SemaTypeMismatch, span, fmt.Sprintf("unary '%s' is not defined for strings", op))
		return broken
	case symbols.ValueNone:
		return operand
	}
	v := operand.val.Int
	switch op {
	case ast.ExprUnaryMinus:
		v = -v // dword: 0 - v по модулю 2^32
	case ast.ExprUnaryNot:
		return known(boolValue(v == 0))
	case ast.ExprUnaryBitNot:
		v = ^v
	}
	return known(symbols.IntValue(v))
}

// foldBinary applies dword arithmetic (wrap-around mod 2^32). Comparisons and
// logical operators yield 0/1; '+' on two strings concatenates.
func (tc *typeChecker) foldBinary(op ast.ExprBinaryOp, left, right valueInfo, span source.Span) valueInfo {
	lk, rk := left.val.Kind, right.val.Kind

	if lk == symbols.ValueString || rk == symbols.ValueString {
		if op != ast.ExprBinaryAdd {
			tc.report(diag.SemaTypeMismatch, span, fmt.Sprintf("operator '%s' is not defined for strings", op))
			return broken
		}
		if lk == symbols.ValueInt || rk == symbols.ValueInt {
			tc.report(diag.SemaTypeMismatch, span, "cannot add a string and an integer")
			return broken
		}
		if lk == symbols.ValueString && rk == symbols.ValueString {
			return known(symbols.StringValue(left.val.Str + right.val.Str))
		}
		return valueInfo{ok: true}
	}

	if (op == ast.ExprBinaryDiv || op == ast.ExprBinaryMod) && rk == symbols.ValueInt && right.val.Int == 0 {
		what := "division"
		if op == ast.ExprBinaryMod {
			what = "modulo"
		}
		tc.report(diag.SemaArithmetic, span, what+" by constant zero")
		return broken
	}

	// короткое замыкание по известной левой части
	if lk == symbols.ValueInt {
		switch {
		case op == ast.ExprBinaryLogicalAnd && left.val.Int == 0:
			return known(symbols.IntValue(0))
		case op == ast.ExprBinaryLogicalOr && left.val.Int != 0:
			return known(symbols.IntValue(1))
		}
	}

	if lk != symbols.ValueInt || rk != symbols.ValueInt {
		return valueInfo{ok: true}
	}
	return known(foldInts(op, left.val.Int, right.val.Int))
}

func foldInts(op ast.ExprBinaryOp, a, b uint32) symbols.Value {
	var v uint32
	switch op {
	case ast.ExprBinaryAdd:
		v = a + b
	case ast.ExprBinarySub:
		v = a - b
	case ast.ExprBinaryMul:
		v = a * b
	case ast.ExprBinaryDiv:
		v = a / b
	case ast.ExprBinaryMod:
		v = a % b
	case ast.ExprBinaryBitAnd:
		v = a & b
	case ast.ExprBinaryBitOr:
		v = a | b
	case ast.ExprBinaryBitXor:
		v = a ^ b
	case ast.ExprBinaryShiftLeft:
		v = a << b // сдвиг на >= 32 даёт 0
	case ast.ExprBinaryShiftRight:
		v = a >> b
	case ast.ExprBinaryLogicalAnd:
		return boolValue(a != 0 && b != 0)
	case ast.ExprBinaryLogicalOr:
		return boolValue(a != 0 || b != 0)
	case ast.ExprBinaryEq:
		return boolValue(a == b)
	case ast.ExprBinaryNotEq:
		return boolValue(a != b)
	case ast.ExprBinaryLess:
		return boolValue(a < b)
	case ast.ExprBinaryLessEq:
		return boolValue(a <= b)
	case ast.ExprBinaryGreater:
		return boolValue(a > b)
	case ast.ExprBinaryGreaterEq:
		return boolValue(a >= b)
	}
	return symbols.IntValue(v)
}
