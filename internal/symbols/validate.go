package symbols

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// Validate walks internal arenas checking structural invariants. Returns nil if
// everything is consistent; otherwise aggregates all detected issues.
func (t *Table) Validate() error {
	var errs []error

	for idx := 1; idx < len(t.Scopes.data); idx++ {
		scopeID, err := toScopeID(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scope := t.Scopes.data[idx]
		if scope.Kind == ScopeInvalid {
			errs = append(errs, fmt.Errorf("scope %d has invalid kind", scopeID))
		}
		if scope.Parent.IsValid() {
			if int(scope.Parent) >= len(t.Scopes.data) || scope.Parent == scopeID {
				errs = append(errs, fmt.Errorf("scope %d has invalid parent %d", scopeID, scope.Parent))
				continue
			}
			parent := t.Scopes.data[scope.Parent]
			if parent.Depth+1 != scope.Depth {
				errs = append(errs, fmt.Errorf("scope %d depth %d under parent depth %d", scopeID, scope.Depth, parent.Depth))
			}
			found := false
			for _, child := range parent.Children {
				if child == scopeID {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, fmt.Errorf("scope %d parent %d missing backlink", scopeID, scope.Parent))
			}
		}
		if len(scope.NameIndex) != len(scope.Symbols) {
			errs = append(errs, fmt.Errorf("scope %d indexes %d names for %d symbols", scopeID, len(scope.NameIndex), len(scope.Symbols)))
		}
		for name, id := range scope.NameIndex {
			sym := t.Symbols.Get(id)
			if sym == nil || sym.Scope != scopeID || sym.Name != name {
				errs = append(errs, fmt.Errorf("scope %d name index %d references foreign symbol %d", scopeID, name, id))
			}
		}
	}

	for idx := 1; idx < len(t.Symbols.data); idx++ {
		symbolID, err := toSymbolID(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		symbol := t.Symbols.data[idx]
		if !symbol.Scope.IsValid() || int(symbol.Scope) >= len(t.Scopes.data) {
			errs = append(errs, fmt.Errorf("symbol %d has invalid scope %d", symbolID, symbol.Scope))
			continue
		}
		if symbol.Kind.IsStorage() && symbol.Storage == "" {
			errs = append(errs, fmt.Errorf("symbol %d has no storage name", symbolID))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

func toScopeID(idx int) (ScopeID, error) {
	value, err := safecast.Conv[uint32](idx)
	if err != nil {
		return NoScopeID, fmt.Errorf("scope index %d overflow: %w", idx, err)
	}
	return ScopeID(value), nil
}

func toSymbolID(idx int) (SymbolID, error) {
	value, err := safecast.Conv[uint32](idx)
	if err != nil {
		return NoSymbolID, fmt.Errorf("symbol index %d overflow: %w", idx, err)
	}
	return SymbolID(value), nil
}
