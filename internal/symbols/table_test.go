package symbols

import (
	"errors"
	"testing"

	"epscript/internal/registry"
	"epscript/internal/source"
)

func TestStorageNames(t *testing.T) {
	table := NewTable(Hints{}, nil, nil)
	got := []string{
		table.StorageName("x"),
		table.StorageName("y"),
		table.StorageName("x"),
		table.StorageName("x"),
	}
	want := []string{"x", "y", "x#2", "x#3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("storage names = %v, want %v", got, want)
		}
	}
}

func TestErrorSymbolIsNeverFound(t *testing.T) {
	table := NewTable(Hints{}, nil, nil)
	res := NewResolver(table, table.ConstantsScope(), ResolverOptions{})
	if !table.Symbols.Get(table.ErrorSymbol()).IsError() {
		t.Fatal("error symbol must report IsError")
	}
	if _, ok := res.Lookup(table.Strings.Intern(errorName)); ok {
		t.Fatal("error symbol leaked into lookup")
	}
}

func TestBuiltinsResolveLazily(t *testing.T) {
	reg := registry.New()
	if err := reg.RegisterStrings("P1", "Marine"); err != nil {
		t.Fatal(err)
	}
	table := NewTable(Hints{}, nil, reg.Snapshot())
	res := NewResolver(table, table.ConstantsScope(), ResolverOptions{})
	unit := res.Enter(ScopeUnit, ScopeOwner{}, source.Span{})

	before := table.Symbols.Len()
	id, ok := res.Lookup(table.Strings.Intern("Marine"))
	if !ok {
		t.Fatal("registered constant not found")
	}
	sym := table.Symbols.Get(id)
	if sym.Kind != SymbolBuiltin || sym.Depth != 0 || sym.Storage != "Marine" {
		t.Fatalf("unexpected builtin symbol: %+v", sym)
	}
	again, _ := res.Lookup(table.Strings.Intern("Marine"))
	if again != id || table.Symbols.Len() != before+1 {
		t.Fatal("builtin symbol should be created once")
	}
	if _, ok := res.Lookup(table.Strings.Intern("Zergling")); ok {
		t.Fatal("unregistered name resolved")
	}

	res.Leave(unit)
	if err := res.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestResolverLifecycle(t *testing.T) {
	table := NewTable(Hints{}, nil, nil)
	res := NewResolver(table, table.ConstantsScope(), ResolverOptions{})
	unit := res.Enter(ScopeUnit, ScopeOwner{Kind: ScopeOwnerFile}, source.Span{})
	fn := res.Enter(ScopeFunction, ScopeOwner{Kind: ScopeOwnerItem}, source.Span{})

	name := table.Strings.Intern("value")
	if _, ok := res.Declare(Symbol{Name: name, Kind: SymbolVar}); !ok {
		t.Fatal("declare returned false")
	}
	if _, ok := res.Declare(Symbol{Name: name, Kind: SymbolVar}); ok {
		t.Fatal("redeclaration in the same scope must fail")
	}
	if got := table.Scopes.Get(fn).Depth; got != 2 {
		t.Fatalf("function scope depth = %d, want 2", got)
	}

	res.Leave(fn)
	if _, ok := res.Lookup(name); ok {
		t.Fatal("symbol visible after leaving its scope")
	}
	res.Leave(unit)
	if res.Depth() != 1 || res.Err() != nil {
		t.Fatalf("depth=%d err=%v", res.Depth(), res.Err())
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLeaveMismatchIsRecorded(t *testing.T) {
	table := NewTable(Hints{}, nil, nil)
	res := NewResolver(table, table.ConstantsScope(), ResolverOptions{})
	outer := res.Enter(ScopeUnit, ScopeOwner{}, source.Span{})
	res.Enter(ScopeBlock, ScopeOwner{}, source.Span{})

	res.Leave(outer)
	if !errors.Is(res.Err(), ErrScopeMismatch) {
		t.Fatalf("expected ErrScopeMismatch, got %v", res.Err())
	}
}
