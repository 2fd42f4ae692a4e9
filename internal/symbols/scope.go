package symbols

import (
	"epscript/internal/ast"
	"epscript/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	// ScopeConstants is the implicit outermost scope backed by the registry.
	ScopeConstants
	ScopeUnit     // top level of a compilation unit
	ScopeFunction // function parameters and body
	ScopeBlock    // { ... }
	ScopeFor      // for-header declarations
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeConstants:
		return "constants"
	case ScopeUnit:
		return "unit"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeFor:
		return "for"
	default:
		return "invalid"
	}
}

// ScopeOwnerKind distinguishes what AST element owns a scope.
type ScopeOwnerKind uint8

const (
	ScopeOwnerUnknown ScopeOwnerKind = iota
	ScopeOwnerFile
	ScopeOwnerItem
	ScopeOwnerStmt
)

// ScopeOwner references an AST construct associated with the scope.
type ScopeOwner struct {
	Kind ScopeOwnerKind
	File ast.FileID
	Item ast.ItemID
	Stmt ast.StmtID
}

// Scope models a lexical scope with a parent-child hierarchy.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Depth     int
	Owner     ScopeOwner
	Span      source.Span
	NameIndex map[source.StringID]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}
