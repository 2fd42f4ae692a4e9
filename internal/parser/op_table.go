package parser

import (
	"epscript/internal/ast"
	"epscript/internal/token"
)

// Таблица приоритетов для бинарных операторов, как в C.
// Чем больше число, тем выше приоритет; все левоассоциативны.
const (
	precLogicalOr      = 1  // ||
	precLogicalAnd     = 2  // &&
	precBitwiseOr      = 3  // |
	precBitwiseXor     = 4  // ^
	precBitwiseAnd     = 5  // &
	precEquality       = 6  // == !=
	precComparison     = 7  // < <= > >=
	precShift          = 8  // << >>
	precAdditive       = 9  // + -
	precMultiplicative = 10 // * / %
)

// binaryOps maps a token to its operator and precedence.
var binaryOps = map[token.Kind]struct {
	op   ast.ExprBinaryOp
	prec int
}{
	token.OrOr:    {ast.ExprBinaryLogicalOr, precLogicalOr},
	token.AndAnd:  {ast.ExprBinaryLogicalAnd, precLogicalAnd},
	token.Pipe:    {ast.ExprBinaryBitOr, precBitwiseOr},
	token.Caret:   {ast.ExprBinaryBitXor, precBitwiseXor},
	token.Amp:     {ast.ExprBinaryBitAnd, precBitwiseAnd},
	token.EqEq:    {ast.ExprBinaryEq, precEquality},
	token.BangEq:  {ast.ExprBinaryNotEq, precEquality},
	token.Lt:      {ast.ExprBinaryLess, precComparison},
	token.LtEq:    {ast.ExprBinaryLessEq, precComparison},
	token.Gt:      {ast.ExprBinaryGreater, precComparison},
	token.GtEq:    {ast.ExprBinaryGreaterEq, precComparison},
	token.Shl:     {ast.ExprBinaryShiftLeft, precShift},
	token.Shr:     {ast.ExprBinaryShiftRight, precShift},
	token.Plus:    {ast.ExprBinaryAdd, precAdditive},
	token.Minus:   {ast.ExprBinarySub, precAdditive},
	token.Star:    {ast.ExprBinaryMul, precMultiplicative},
	token.Slash:   {ast.ExprBinaryDiv, precMultiplicative},
	token.Percent: {ast.ExprBinaryMod, precMultiplicative},
}

// getBinaryOperatorPrec возвращает приоритет оператора или -1.
func getBinaryOperatorPrec(kind token.Kind) (ast.ExprBinaryOp, int) {
	if e, ok := binaryOps[kind]; ok {
		return e.op, e.prec
	}
	return 0, -1
}

// getUnaryOperator возвращает тип унарного оператора для токена
func getUnaryOperator(kind token.Kind) (ast.ExprUnaryOp, bool) {
	switch kind {
	case token.Plus:
		return ast.ExprUnaryPlus, true
	case token.Minus:
		return ast.ExprUnaryMinus, true
	case token.Bang:
		return ast.ExprUnaryNot, true
	case token.Tilde:
		return ast.ExprUnaryBitNot, true
	}
	return 0, false
}

var assignOps = map[token.Kind]ast.AssignOp{
	token.Assign:        ast.AssignSet,
	token.PlusAssign:    ast.AssignAdd,
	token.MinusAssign:   ast.AssignSub,
	token.StarAssign:    ast.AssignMul,
	token.SlashAssign:   ast.AssignDiv,
	token.PercentAssign: ast.AssignMod,
	token.AmpAssign:     ast.AssignBitAnd,
	token.PipeAssign:    ast.AssignBitOr,
	token.CaretAssign:   ast.AssignBitXor,
	token.ShlAssign:     ast.AssignShl,
	token.ShrAssign:     ast.AssignShr,
}
