package symbols

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"epscript/internal/registry"
	"epscript/internal/source"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// errorName is not a valid identifier, so no lookup ever hits it.
const errorName = "<error>"

// Table aggregates symbol-related arenas and shared resources of one unit.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Strings *source.Interner

	constants  *registry.Snapshot
	constScope ScopeID
	errSym     SymbolID
	storage    map[string]int // имя -> сколько раз уже выдано
}

// NewTable builds a fresh table. constants may be nil (no built-in names).
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner, constants *registry.Snapshot) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	t := &Table{
		Scopes:    NewScopes(scopeCap),
		Symbols:   NewSymbols(symCap),
		Strings:   strings,
		constants: constants,
		storage:   make(map[string]int),
	}
	t.constScope = t.Scopes.New(ScopeConstants, NoScopeID, ScopeOwner{}, source.Span{})
	t.errSym = t.insert(t.constScope, &Symbol{
		Name: strings.Intern(errorName),
		Kind: SymbolInvalid,
	})
	return t
}

// ConstantsScope returns the implicit registry-backed root scope.
func (t *Table) ConstantsScope() ScopeID { return t.constScope }

// ErrorSymbol returns the sentinel bound to references that failed to resolve.
func (t *Table) ErrorSymbol() SymbolID { return t.errSym }

// Constants returns the registry snapshot the table consults.
func (t *Table) Constants() *registry.Snapshot { return t.constants }

// IsBuiltinName reports whether the registry knows name.
func (t *Table) IsBuiltinName(name string) bool {
	return t.constants.Contains(name)
}

// builtin returns the symbol for a registered constant, creating it lazily.
func (t *Table) builtin(name source.StringID) (SymbolID, bool) {
	scope := t.Scopes.Get(t.constScope)
	if id, ok := scope.NameIndex[name]; ok {
		return id, true
	}
	text := t.Strings.MustLookup(name)
	if !t.constants.Contains(text) {
		return NoSymbolID, false
	}
	return t.insert(t.constScope, &Symbol{
		Name:    name,
		Kind:    SymbolBuiltin,
		Flags:   SymbolFlagBuiltin | SymbolFlagImmutable,
		Storage: text,
	}), true
}

func (t *Table) insert(scopeID ScopeID, sym *Symbol) SymbolID {
	scope := t.Scopes.Get(scopeID)
	sym.Scope = scopeID
	sym.Depth = scope.Depth
	id := t.Symbols.New(sym)
	scope.Symbols = append(scope.Symbols, id)
	scope.NameIndex[sym.Name] = id
	return id
}

// StorageName hands out x, x#2, x#3... so that shadowing declarations
// never share a slot.
func (t *Table) StorageName(name string) string {
	t.storage[name]++
	n := t.storage[name]
	if n == 1 {
		return name
	}
	return name + "#" + strconv.Itoa(n)
}

// Name resolves a symbol's identifier.
func (t *Table) Name(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return errorName
	}
	return t.Strings.MustLookup(sym.Name)
}
