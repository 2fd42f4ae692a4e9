package codegen

import (
	"fmt"

	"epscript/internal/ast"
	"epscript/internal/sema"
	"epscript/internal/symbols"
)

var binaryOps = [...]Opcode{
	ast.ExprBinaryAdd:        OpAdd,
	ast.ExprBinarySub:        OpSub,
	ast.ExprBinaryMul:        OpMul,
	ast.ExprBinaryDiv:        OpDiv,
	ast.ExprBinaryMod:        OpMod,
	ast.ExprBinaryBitAnd:     OpBAnd,
	ast.ExprBinaryBitOr:      OpBOr,
	ast.ExprBinaryBitXor:     OpBXor,
	ast.ExprBinaryShiftLeft:  OpShl,
	ast.ExprBinaryShiftRight: OpShr,
	ast.ExprBinaryEq:         OpEq,
	ast.ExprBinaryNotEq:      OpNe,
	ast.ExprBinaryLess:       OpLt,
	ast.ExprBinaryLessEq:     OpLe,
	ast.ExprBinaryGreater:    OpGt,
	ast.ExprBinaryGreaterEq:  OpGe,
}

func binaryOpcode(op ast.ExprBinaryOp) Opcode {
	if int(op) < len(binaryOps) {
		return binaryOps[op]
	}
	return OpInvalid
}

// expr leaves exactly one value on the stack.
func (g *generator) expr(exprID ast.ExprID) {
	if g.err != nil {
		return
	}
	if v, ok := g.sem.Known(exprID); ok {
		g.value(v)
		return
	}
	expr := g.builder.Exprs.Get(exprID)
	if expr == nil {
		g.fail(fmt.Errorf("%w: missing expression %d", ErrMissingAnnotation, exprID))
		return
	}
	switch expr.Kind {
	case ast.ExprLit:
		// литералы всегда известны sema; сюда попадаем только без её результата
		lit, _ := g.builder.Exprs.Literal(exprID)
		switch lit.Kind {
		case ast.ExprLitInt:
			g.em.push(lit.Int)
		case ast.ExprLitString:
			g.em.named(OpPushS, g.builder.Strings.MustLookup(lit.Str))
		case ast.ExprLitTrue:
			g.em.push(1)
		default:
			g.em.push(0)
		}

	case ast.ExprIdent:
		g.load(exprID)

	case ast.ExprGroup:
		data, _ := g.builder.Exprs.Group(exprID)
		g.expr(data.Inner)

	case ast.ExprUnary:
		data, _ := g.builder.Exprs.Unary(exprID)
		g.expr(data.Operand)
		switch data.Op {
		case ast.ExprUnaryMinus:
			g.em.op(OpNeg)
		case ast.ExprUnaryNot:
			g.em.op(OpNot)
		case ast.ExprUnaryBitNot:
			g.em.op(OpBNot)
		}

	case ast.ExprBinary:
		data, _ := g.builder.Exprs.Binary(exprID)
		if data.Op.IsLogical() {
			g.logical(data)
			return
		}
		g.expr(data.Left)
		g.expr(data.Right)
		g.em.op(binaryOpcode(data.Op))

	case ast.ExprCall:
		g.call(exprID)

	case ast.ExprIndex:
		data, _ := g.builder.Exprs.Index(exprID)
		g.expr(data.Target)
		g.expr(data.Index)
		g.em.op(OpIndex)
	}
}

func (g *generator) value(v symbols.Value) {
	if v.Kind == symbols.ValueString {
		g.em.named(OpPushS, v.Str)
		return
	}
	g.em.push(v.Int)
}

func (g *generator) load(exprID ast.ExprID) {
	sym := g.symbol(exprID)
	if sym == nil {
		return
	}
	switch sym.Kind {
	case symbols.SymbolBuiltin:
		g.em.named(OpLoadC, sym.Storage)
	case symbols.SymbolFunction:
		g.em.named(OpLoadF, sym.Storage)
	default:
		g.em.named(OpLoad, sym.Storage)
	}
}

// logical lowers && and || with short-circuit jumps, normalising to 0/1.
func (g *generator) logical(data *ast.ExprBinaryData) {
	short, end := g.em.newLabel(), g.em.newLabel()
	test, shortVal, fallVal := OpJz, uint32(0), uint32(1)
	if data.Op == ast.ExprBinaryLogicalOr {
		test, shortVal, fallVal = OpJnz, 1, 0
	}
	g.expr(data.Left)
	g.em.jump(test, short)
	g.expr(data.Right)
	g.em.jump(test, short)
	g.em.push(fallVal)
	g.em.jump(OpJmp, end)
	g.em.bind(short)
	g.em.push(shortVal)
	g.em.bind(end)
}

func (g *generator) call(exprID ast.ExprID) {
	data, _ := g.builder.Exprs.Call(exprID)
	info, ok := g.sem.Calls[exprID]
	if !ok {
		g.fail(fmt.Errorf("%w: call %d is not classified", ErrMissingAnnotation, exprID))
		return
	}
	if info.Kind == sema.CallComputed {
		g.expr(data.Target)
	}
	for _, arg := range data.Args {
		g.expr(arg)
	}
	argc := len(data.Args)
	switch info.Kind {
	case sema.CallFunction:
		g.em.emit(Instr{Op: OpCall, Name: info.Name, Argc: argc})
	case sema.CallBuiltin:
		g.em.emit(Instr{Op: OpCallB, Name: info.Name, Argc: argc})
	case sema.CallUnresolved:
		g.em.emit(Instr{Op: OpCallD, Name: info.Name, Argc: argc})
	default:
		g.em.emit(Instr{Op: OpCallV, Argc: argc})
	}
}
