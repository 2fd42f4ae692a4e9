package symbols

import (
	"errors"
	"fmt"

	"epscript/internal/diag"
	"epscript/internal/source"
)

// ErrScopeMismatch reports a broken Enter/Leave pairing.
var ErrScopeMismatch = errors.New("scope stack mismatch")

// ResolverOptions configures resolver construction.
type ResolverOptions struct {
	Reporter diag.Reporter
}

// Resolver drives scope management and declaration/lookup routines.
type Resolver struct {
	table    *Table
	reporter diag.Reporter
	stack    []ScopeID
	err      error
}

// NewResolver wires a resolver to table. If root is valid it becomes the
// current scope; otherwise scope-sensitive operations are no-ops.
func NewResolver(table *Table, root ScopeID, opts ResolverOptions) *Resolver {
	r := &Resolver{
		table:    table,
		reporter: opts.Reporter,
		stack:    make([]ScopeID, 0, 8),
	}
	if root.IsValid() {
		r.stack = append(r.stack, root)
	}
	return r
}

// CurrentScope returns the scope at the top of the stack.
func (r *Resolver) CurrentScope() ScopeID {
	if len(r.stack) == 0 {
		return NoScopeID
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the number of scopes on the stack.
func (r *Resolver) Depth() int { return len(r.stack) }

// Err returns the first internal invariant violation seen by the resolver.
func (r *Resolver) Err() error { return r.err }

// Enter creates a child scope, pushes it onto the stack, and returns its ID.
func (r *Resolver) Enter(kind ScopeKind, owner ScopeOwner, span source.Span) ScopeID {
	scope := r.table.Scopes.New(kind, r.CurrentScope(), owner, span)
	r.stack = append(r.stack, scope)
	return scope
}

// Leave pops the current scope. Popping anything other than expected is an
// internal invariant violation, recorded in Err.
func (r *Resolver) Leave(expected ScopeID) {
	if len(r.stack) == 0 {
		r.fail(fmt.Errorf("%w: leave %d on empty stack", ErrScopeMismatch, expected))
		return
	}
	top := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	if expected.IsValid() && top != expected {
		r.fail(fmt.Errorf("%w: closing scope %d while expecting %d", ErrScopeMismatch, top, expected))
	}
}

func (r *Resolver) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Declare installs a symbol into the current scope. A name already declared
// in the same scope is reported and the error symbol is returned with false.
func (r *Resolver) Declare(sym Symbol) (SymbolID, bool) {
	scopeID := r.CurrentScope()
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return r.table.errSym, false
	}
	if prev, ok := scope.NameIndex[sym.Name]; ok {
		r.reportRedeclaration(sym.Name, sym.Span, prev)
		return r.table.errSym, false
	}
	name := r.table.Strings.MustLookup(sym.Name)
	if r.table.IsBuiltinName(name) {
		r.reportShadowBuiltin(name, sym.Span)
	}
	if sym.Storage == "" {
		sym.Storage = r.table.StorageName(name)
	}
	return r.table.insert(scopeID, &sym), true
}

// Lookup walks the scope chain innermost first, then the registry.
func (r *Resolver) Lookup(name source.StringID) (SymbolID, bool) {
	scopeID := r.CurrentScope()
	for scopeID.IsValid() {
		scope := r.table.Scopes.Get(scopeID)
		if scope == nil {
			break
		}
		if id, ok := scope.NameIndex[name]; ok && id != r.table.errSym {
			return id, true
		}
		scopeID = scope.Parent
	}
	return r.table.builtin(name)
}

// LookupLocal checks only the current scope.
func (r *Resolver) LookupLocal(name source.StringID) (SymbolID, bool) {
	scope := r.table.Scopes.Get(r.CurrentScope())
	if scope == nil {
		return NoSymbolID, false
	}
	id, ok := scope.NameIndex[name]
	return id, ok
}

func (r *Resolver) reportRedeclaration(name source.StringID, span source.Span, prev SymbolID) {
	msg := fmt.Sprintf("'%s' is already declared in this scope", r.table.Strings.MustLookup(name))
	b := diag.ReportError(r.reporter, diag.SemaRedeclaration, span, msg)
	if sym := r.table.Symbols.Get(prev); sym != nil && sym.Span != (source.Span{}) {
		b.WithNote(sym.Span, "previous declaration here")
	}
	b.Emit()
}

func (r *Resolver) reportShadowBuiltin(name string, span source.Span) {
	msg := fmt.Sprintf("declaration of '%s' shadows a built-in constant", name)
	diag.ReportWarning(r.reporter, diag.SemaShadowBuiltin, span, msg).Emit()
}
