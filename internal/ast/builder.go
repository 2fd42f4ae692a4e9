package ast

import (
	"epscript/internal/source"
)

type Hints struct{ Items, Stmts, Exprs uint }

// Builder owns every arena of one parsed unit plus the name interner.
type Builder struct {
	Files   *Arena[File]
	Items   *Items
	Stmts   *Stmts
	Exprs   *Exprs
	Strings *source.Interner
}

func NewBuilder(hints Hints, strings *source.Interner) *Builder {
	if hints.Items == 0 {
		hints.Items = 1 << 5
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 7
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Files:   NewArena[File](1),
		Items:   NewItems(hints.Items),
		Stmts:   NewStmts(hints.Stmts),
		Exprs:   NewExprs(hints.Exprs),
		Strings: strings,
	}
}

func (b *Builder) NewFile(sp source.Span) FileID {
	return FileID(b.Files.Allocate(File{Span: sp}))
}

func (b *Builder) File(id FileID) *File {
	return b.Files.Get(uint32(id))
}

func (b *Builder) PushItem(file FileID, item ItemID) {
	f := b.File(file)
	f.Items = append(f.Items, item)
}

// Name resolves an interned identifier.
func (b *Builder) Name(id source.StringID) string {
	return b.Strings.MustLookup(id)
}
