package ast

import (
	"epscript/internal/source"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtVar
	StmtConst
	StmtAssign
	StmtIncDec
	StmtExpr
	StmtIf
	StmtWhile
	StmtDoWhile
	StmtFor
	StmtBreak
	StmtContinue
	StmtReturn
	StmtEmpty
)

var stmtKindNames = [...]string{
	StmtBlock: "Block", StmtVar: "Var", StmtConst: "Const", StmtAssign: "Assign",
	StmtIncDec: "IncDec", StmtExpr: "Expr", StmtIf: "If", StmtWhile: "While",
	StmtDoWhile: "DoWhile", StmtFor: "For", StmtBreak: "Break", StmtContinue: "Continue",
	StmtReturn: "Return", StmtEmpty: "Empty",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return "Stmt(?)"
}

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID // NoPayloadID для break/continue/empty
}

type BlockStmt struct {
	Stmts []StmtID
}

type VarDecl struct {
	Name     source.StringID
	NameSpan source.Span
	Init     ExprID // NoExprID если без инициализации
}

type VarStmt struct {
	Static bool
	Decls  []VarDecl
}

type ConstStmt struct {
	Name     source.StringID
	NameSpan source.Span
	Value    ExprID
}

// AssignOp is '=' or one of the compound operators.
type AssignOp uint8

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignBitAnd
	AssignBitOr
	AssignBitXor
	AssignShl
	AssignShr
)

// BinaryOp returns the operator a compound assignment applies.
func (op AssignOp) BinaryOp() (ExprBinaryOp, bool) {
	switch op {
	case AssignAdd:
		return ExprBinaryAdd, true
	case AssignSub:
		return ExprBinarySub, true
	case AssignMul:
		return ExprBinaryMul, true
	case AssignDiv:
		return ExprBinaryDiv, true
	case AssignMod:
		return ExprBinaryMod, true
	case AssignBitAnd:
		return ExprBinaryBitAnd, true
	case AssignBitOr:
		return ExprBinaryBitOr, true
	case AssignBitXor:
		return ExprBinaryBitXor, true
	case AssignShl:
		return ExprBinaryShiftLeft, true
	case AssignShr:
		return ExprBinaryShiftRight, true
	}
	return 0, false
}

func (op AssignOp) String() string {
	if bin, ok := op.BinaryOp(); ok {
		return bin.String() + "="
	}
	return "="
}

type AssignStmt struct {
	Op     AssignOp
	Target ExprID
	Value  ExprID
}

type IncDecStmt struct {
	Target ExprID
	Inc    bool
}

type ExprStmt struct {
	Expr ExprID
}

type IfStmt struct {
	Cond ExprID
	Then StmtID
	Else StmtID // NoStmtID если нет else
}

// LoopStmt serves both while and do-while.
type LoopStmt struct {
	Cond ExprID
	Body StmtID
}

type ForStmt struct {
	Init StmtID // var / assign / expr, может отсутствовать
	Cond ExprID // NoExprID - бесконечный цикл
	Post StmtID
	Body StmtID
}

type ReturnStmt struct {
	Value ExprID
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Blocks  *Arena[BlockStmt]
	Vars    *Arena[VarStmt]
	Consts  *Arena[ConstStmt]
	Assigns *Arena[AssignStmt]
	IncDecs *Arena[IncDecStmt]
	Exprs   *Arena[ExprStmt]
	Ifs     *Arena[IfStmt]
	Loops   *Arena[LoopStmt]
	Fors    *Arena[ForStmt]
	Returns *Arena[ReturnStmt]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 7
	}
	small := capHint/8 + 1
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Blocks:  NewArena[BlockStmt](small),
		Vars:    NewArena[VarStmt](small),
		Consts:  NewArena[ConstStmt](small),
		Assigns: NewArena[AssignStmt](capHint / 2),
		IncDecs: NewArena[IncDecStmt](small),
		Exprs:   NewArena[ExprStmt](capHint / 2),
		Ifs:     NewArena[IfStmt](small),
		Loops:   NewArena[LoopStmt](small),
		Fors:    NewArena[ForStmt](small),
		Returns: NewArena[ReturnStmt](small),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) payload(id StmtID, kinds ...StmtKind) (uint32, bool) {
	st := s.Get(id)
	if st == nil {
		return 0, false
	}
	for _, k := range kinds {
		if st.Kind == k {
			return uint32(st.Payload), true
		}
	}
	return 0, false
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	return s.new(StmtBlock, span, s.Blocks.Allocate(BlockStmt{Stmts: append([]StmtID(nil), stmts...)}))
}

func (s *Stmts) Block(id StmtID) (*BlockStmt, bool) {
	p, ok := s.payload(id, StmtBlock)
	if !ok {
		return nil, false
	}
	return s.Blocks.Get(p), true
}

func (s *Stmts) NewVar(span source.Span, static bool, decls []VarDecl) StmtID {
	return s.new(StmtVar, span, s.Vars.Allocate(VarStmt{Static: static, Decls: append([]VarDecl(nil), decls...)}))
}

func (s *Stmts) Var(id StmtID) (*VarStmt, bool) {
	p, ok := s.payload(id, StmtVar)
	if !ok {
		return nil, false
	}
	return s.Vars.Get(p), true
}

func (s *Stmts) NewConst(span source.Span, data ConstStmt) StmtID {
	return s.new(StmtConst, span, s.Consts.Allocate(data))
}

func (s *Stmts) Const(id StmtID) (*ConstStmt, bool) {
	p, ok := s.payload(id, StmtConst)
	if !ok {
		return nil, false
	}
	return s.Consts.Get(p), true
}

func (s *Stmts) NewAssign(span source.Span, op AssignOp, target, value ExprID) StmtID {
	return s.new(StmtAssign, span, s.Assigns.Allocate(AssignStmt{Op: op, Target: target, Value: value}))
}

func (s *Stmts) Assign(id StmtID) (*AssignStmt, bool) {
	p, ok := s.payload(id, StmtAssign)
	if !ok {
		return nil, false
	}
	return s.Assigns.Get(p), true
}

func (s *Stmts) NewIncDec(span source.Span, target ExprID, inc bool) StmtID {
	return s.new(StmtIncDec, span, s.IncDecs.Allocate(IncDecStmt{Target: target, Inc: inc}))
}

func (s *Stmts) IncDec(id StmtID) (*IncDecStmt, bool) {
	p, ok := s.payload(id, StmtIncDec)
	if !ok {
		return nil, false
	}
	return s.IncDecs.Get(p), true
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	return s.new(StmtExpr, span, s.Exprs.Allocate(ExprStmt{Expr: expr}))
}

func (s *Stmts) Expr(id StmtID) (*ExprStmt, bool) {
	p, ok := s.payload(id, StmtExpr)
	if !ok {
		return nil, false
	}
	return s.Exprs.Get(p), true
}

func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	return s.new(StmtIf, span, s.Ifs.Allocate(IfStmt{Cond: cond, Then: then, Else: els}))
}

func (s *Stmts) If(id StmtID) (*IfStmt, bool) {
	p, ok := s.payload(id, StmtIf)
	if !ok {
		return nil, false
	}
	return s.Ifs.Get(p), true
}

func (s *Stmts) NewWhile(span source.Span, cond ExprID, body StmtID) StmtID {
	return s.new(StmtWhile, span, s.Loops.Allocate(LoopStmt{Cond: cond, Body: body}))
}

func (s *Stmts) NewDoWhile(span source.Span, body StmtID, cond ExprID) StmtID {
	return s.new(StmtDoWhile, span, s.Loops.Allocate(LoopStmt{Cond: cond, Body: body}))
}

// Loop returns the payload of a while or do-while statement.
func (s *Stmts) Loop(id StmtID) (*LoopStmt, bool) {
	p, ok := s.payload(id, StmtWhile, StmtDoWhile)
	if !ok {
		return nil, false
	}
	return s.Loops.Get(p), true
}

func (s *Stmts) NewFor(span source.Span, data ForStmt) StmtID {
	return s.new(StmtFor, span, s.Fors.Allocate(data))
}

func (s *Stmts) For(id StmtID) (*ForStmt, bool) {
	p, ok := s.payload(id, StmtFor)
	if !ok {
		return nil, false
	}
	return s.Fors.Get(p), true
}

func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	return s.new(StmtReturn, span, s.Returns.Allocate(ReturnStmt{Value: value}))
}

func (s *Stmts) Return(id StmtID) (*ReturnStmt, bool) {
	p, ok := s.payload(id, StmtReturn)
	if !ok {
		return nil, false
	}
	return s.Returns.Get(p), true
}

// NewSimple allocates break, continue or an empty statement.
func (s *Stmts) NewSimple(kind StmtKind, span source.Span) StmtID {
	return s.new(kind, span, 0)
}
