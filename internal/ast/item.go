package ast

import (
	"epscript/internal/source"
)

type ItemKind uint8

const (
	// ItemFn is a top-level "function name(params) { ... }".
	ItemFn ItemKind = iota
	// ItemStmt wraps a top-level statement (the unit's implicit main body).
	ItemStmt
)

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

type FnParam struct {
	Name source.StringID
	Span source.Span
}

type FnItem struct {
	Name     source.StringID
	NameSpan source.Span
	Params   []FnParam
	Body     StmtID // StmtBlock
}

type Items struct {
	Arena *Arena[Item]
	Fns   *Arena[FnItem]
	Stmts *Arena[StmtID]
}

func NewItems(capHint uint) *Items {
	return &Items{
		Arena: NewArena[Item](capHint),
		Fns:   NewArena[FnItem](capHint),
		Stmts: NewArena[StmtID](capHint),
	}
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) NewFn(span source.Span, name source.StringID, nameSpan source.Span, params []FnParam, body StmtID) ItemID {
	payload := i.Fns.Allocate(FnItem{
		Name:     name,
		NameSpan: nameSpan,
		Params:   append([]FnParam(nil), params...),
		Body:     body,
	})
	return ItemID(i.Arena.Allocate(Item{Kind: ItemFn, Span: span, Payload: PayloadID(payload)}))
}

func (i *Items) Fn(id ItemID) (*FnItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemFn {
		return nil, false
	}
	return i.Fns.Get(uint32(item.Payload)), true
}

func (i *Items) NewStmt(span source.Span, stmt StmtID) ItemID {
	payload := i.Stmts.Allocate(stmt)
	return ItemID(i.Arena.Allocate(Item{Kind: ItemStmt, Span: span, Payload: PayloadID(payload)}))
}

func (i *Items) Stmt(id ItemID) (StmtID, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemStmt {
		return NoStmtID, false
	}
	return *i.Stmts.Get(uint32(item.Payload)), true
}
