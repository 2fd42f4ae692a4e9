package ast

import (
	"epscript/internal/source"
)

// ExprKind enumerates the different kinds of expressions.
type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprLit
	ExprCall
	ExprBinary
	ExprUnary
	ExprGroup
	ExprIndex
)

func (k ExprKind) String() string {
	switch k {
	case ExprIdent:
		return "Ident"
	case ExprLit:
		return "Lit"
	case ExprCall:
		return "Call"
	case ExprBinary:
		return "Binary"
	case ExprUnary:
		return "Unary"
	case ExprGroup:
		return "Group"
	case ExprIndex:
		return "Index"
	}
	return "Expr(?)"
}

// Expr represents an expression node in the AST.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// ExprBinaryOp enumerates binary operator kinds.
type ExprBinaryOp uint8

const (
	// Арифметические
	ExprBinaryAdd ExprBinaryOp = iota
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryMod

	// Битовые
	ExprBinaryBitAnd
	ExprBinaryBitOr
	ExprBinaryBitXor
	ExprBinaryShiftLeft
	ExprBinaryShiftRight

	// Логические (короткое замыкание)
	ExprBinaryLogicalAnd
	ExprBinaryLogicalOr

	// Сравнения
	ExprBinaryEq
	ExprBinaryNotEq
	ExprBinaryLess
	ExprBinaryLessEq
	ExprBinaryGreater
	ExprBinaryGreaterEq
)

var binaryOpText = [...]string{
	ExprBinaryAdd: "+", ExprBinarySub: "-", ExprBinaryMul: "*", ExprBinaryDiv: "/", ExprBinaryMod: "%",
	ExprBinaryBitAnd: "&", ExprBinaryBitOr: "|", ExprBinaryBitXor: "^",
	ExprBinaryShiftLeft: "<<", ExprBinaryShiftRight: ">>",
	ExprBinaryLogicalAnd: "&&", ExprBinaryLogicalOr: "||",
	ExprBinaryEq: "==", ExprBinaryNotEq: "!=", ExprBinaryLess: "<", ExprBinaryLessEq: "<=",
	ExprBinaryGreater: ">", ExprBinaryGreaterEq: ">=",
}

func (op ExprBinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// IsComparison reports ==, !=, <, <=, >, >=.
func (op ExprBinaryOp) IsComparison() bool {
	return op >= ExprBinaryEq && op <= ExprBinaryGreaterEq
}

func (op ExprBinaryOp) IsLogical() bool {
	return op == ExprBinaryLogicalAnd || op == ExprBinaryLogicalOr
}

type ExprUnaryOp uint8

const (
	ExprUnaryMinus ExprUnaryOp = iota
	ExprUnaryPlus
	ExprUnaryNot
	ExprUnaryBitNot
)

func (op ExprUnaryOp) String() string {
	switch op {
	case ExprUnaryMinus:
		return "-"
	case ExprUnaryPlus:
		return "+"
	case ExprUnaryNot:
		return "!"
	case ExprUnaryBitNot:
		return "~"
	}
	return "?"
}

type ExprLitKind uint8

const (
	ExprLitInt ExprLitKind = iota
	ExprLitString
	ExprLitTrue
	ExprLitFalse
)

type ExprIdentData struct {
	Name source.StringID
}

// ExprLiteralData: Int для чисел и bool (0/1), Str - уже раскодированная строка.
type ExprLiteralData struct {
	Kind ExprLitKind
	Int  uint32
	Str  source.StringID
}

type ExprBinaryData struct {
	Op    ExprBinaryOp
	Left  ExprID
	Right ExprID
}

type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

type ExprCallData struct {
	Target ExprID
	Args   []ExprID
}

type ExprIndexData struct {
	Target ExprID
	Index  ExprID
}

type ExprGroupData struct {
	Inner ExprID
}
