package symbols

import (
	"fmt"

	"epscript/internal/ast"
	"epscript/internal/diag"
	"epscript/internal/registry"
	"epscript/internal/source"
)

// ResolveOptions controls a resolve pass for a single AST file.
type ResolveOptions struct {
	Table     *Table
	Hints     Hints
	Constants *registry.Snapshot
	Reporter  diag.Reporter
	Validate  bool
}

// Result captures resolve artefacts for one file.
type Result struct {
	Table     *Table
	File      ast.FileID
	UnitScope ScopeID

	// ItemSymbols: функция -> её символ; ParamSymbols: функция -> параметры.
	ItemSymbols  map[ast.ItemID]SymbolID
	ParamSymbols map[ast.ItemID][]SymbolID
	// StmtSymbols: var/const -> объявленные символы, по одному на декларацию.
	StmtSymbols map[ast.StmtID][]SymbolID
	// ExprSymbols: идентификатор -> символ. Нерешённый вызываемый идентификатор
	// в карту не попадает (динамический вызов).
	ExprSymbols map[ast.ExprID]SymbolID

	// Err is an internal invariant violation; diagnostics never end up here.
	Err error
}

// Symbol returns the binding of an identifier expression.
func (r *Result) Symbol(expr ast.ExprID) (*Symbol, bool) {
	id, ok := r.ExprSymbols[expr]
	if !ok {
		return nil, false
	}
	return r.Table.Symbols.Get(id), true
}

// ResolveFile walks the AST file and populates the symbol table.
func ResolveFile(builder *ast.Builder, fileID ast.FileID, opts ResolveOptions) Result {
	table := opts.Table
	if table == nil {
		table = NewTable(opts.Hints, builder.Strings, opts.Constants)
	}

	result := Result{
		Table:        table,
		File:         fileID,
		ItemSymbols:  make(map[ast.ItemID]SymbolID),
		ParamSymbols: make(map[ast.ItemID][]SymbolID),
		StmtSymbols:  make(map[ast.StmtID][]SymbolID),
		ExprSymbols:  make(map[ast.ExprID]SymbolID),
	}

	file := builder.File(fileID)
	if file == nil {
		return result
	}

	resolver := NewResolver(table, table.ConstantsScope(), ResolverOptions{Reporter: opts.Reporter})
	unit := resolver.Enter(ScopeUnit, ScopeOwner{Kind: ScopeOwnerFile, File: fileID}, file.Span)
	result.UnitScope = unit

	fr := fileResolver{
		builder:  builder,
		result:   &result,
		resolver: resolver,
		reporter: opts.Reporter,
	}
	fr.hoistFunctions(file.Items)
	for _, itemID := range file.Items {
		fr.walkItem(itemID)
	}
	resolver.Leave(unit)

	result.Err = resolver.Err()
	if result.Err == nil && resolver.Depth() != 1 {
		result.Err = fmt.Errorf("%w: %d scopes left open", ErrScopeMismatch, resolver.Depth()-1)
	}
	if result.Err == nil && opts.Validate {
		result.Err = table.Validate()
	}
	return result
}

type fileResolver struct {
	builder  *ast.Builder
	result   *Result
	resolver *Resolver
	reporter diag.Reporter
}

// key normalises an identifier to NFC so canonically-equal spellings share a symbol.
func (fr *fileResolver) key(name source.StringID) source.StringID {
	text := fr.builder.Strings.MustLookup(name)
	if norm := registry.Normalize(text); norm != text {
		return fr.builder.Strings.Intern(norm)
	}
	return name
}

// hoistFunctions declares every top-level function up front, so calls may
// precede declarations.
func (fr *fileResolver) hoistFunctions(items []ast.ItemID) {
	for _, itemID := range items {
		fn, ok := fr.builder.Items.Fn(itemID)
		if !ok {
			continue
		}
		id, _ := fr.resolver.Declare(Symbol{
			Name:   fr.key(fn.Name),
			Kind:   SymbolFunction,
			Span:   fn.NameSpan,
			Flags:  SymbolFlagImmutable,
			Params: len(fn.Params),
		})
		fr.result.ItemSymbols[itemID] = id
	}
}

func (fr *fileResolver) walkItem(itemID ast.ItemID) {
	if stmt, ok := fr.builder.Items.Stmt(itemID); ok {
		fr.walkStmt(stmt)
		return
	}
	fn, ok := fr.builder.Items.Fn(itemID)
	if !ok {
		return
	}
	item := fr.builder.Items.Get(itemID)
	scope := fr.resolver.Enter(ScopeFunction, ScopeOwner{Kind: ScopeOwnerItem, Item: itemID}, item.Span)
	params := make([]SymbolID, 0, len(fn.Params))
	for _, p := range fn.Params {
		id, _ := fr.resolver.Declare(Symbol{
			Name: fr.key(p.Name),
			Kind: SymbolParam,
			Span: p.Span,
		})
		params = append(params, id)
	}
	fr.result.ParamSymbols[itemID] = params

	// тело функции разделяет область с параметрами
	if block, ok := fr.builder.Stmts.Block(fn.Body); ok {
		for _, stmt := range block.Stmts {
			fr.walkStmt(stmt)
		}
	}
	fr.resolver.Leave(scope)
}

func (fr *fileResolver) walkStmt(stmtID ast.StmtID) {
	stmt := fr.builder.Stmts.Get(stmtID)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtBlock:
		block, _ := fr.builder.Stmts.Block(stmtID)
		scope := fr.resolver.Enter(ScopeBlock, ScopeOwner{Kind: ScopeOwnerStmt, Stmt: stmtID}, stmt.Span)
		for _, inner := range block.Stmts {
			fr.walkStmt(inner)
		}
		fr.resolver.Leave(scope)

	case ast.StmtVar:
		data, _ := fr.builder.Stmts.Var(stmtID)
		var flags SymbolFlags
		if data.Static {
			flags |= SymbolFlagStatic
		}
		ids := make([]SymbolID, 0, len(data.Decls))
		for _, decl := range data.Decls {
			// инициализатор видит внешнее имя: var x = x;
			fr.walkExpr(decl.Init)
			id, _ := fr.resolver.Declare(Symbol{
				Name:  fr.key(decl.Name),
				Kind:  SymbolVar,
				Span:  decl.NameSpan,
				Flags: flags,
			})
			ids = append(ids, id)
		}
		fr.result.StmtSymbols[stmtID] = ids

	case ast.StmtConst:
		data, _ := fr.builder.Stmts.Const(stmtID)
		fr.walkExpr(data.Value)
		id, _ := fr.resolver.Declare(Symbol{
			Name:  fr.key(data.Name),
			Kind:  SymbolConst,
			Span:  data.NameSpan,
			Flags: SymbolFlagImmutable,
		})
		fr.result.StmtSymbols[stmtID] = []SymbolID{id}

	case ast.StmtAssign:
		data, _ := fr.builder.Stmts.Assign(stmtID)
		fr.walkExpr(data.Target)
		fr.walkExpr(data.Value)

	case ast.StmtIncDec:
		data, _ := fr.builder.Stmts.IncDec(stmtID)
		fr.walkExpr(data.Target)

	case ast.StmtExpr:
		data, _ := fr.builder.Stmts.Expr(stmtID)
		fr.walkExpr(data.Expr)

	case ast.StmtIf:
		data, _ := fr.builder.Stmts.If(stmtID)
		fr.walkExpr(data.Cond)
		fr.walkStmt(data.Then)
		fr.walkStmt(data.Else)

	case ast.StmtWhile, ast.StmtDoWhile:
		data, _ := fr.builder.Stmts.Loop(stmtID)
		if stmt.Kind == ast.StmtWhile {
			fr.walkExpr(data.Cond)
			fr.walkStmt(data.Body)
		} else {
			fr.walkStmt(data.Body)
			fr.walkExpr(data.Cond)
		}

	case ast.StmtFor:
		data, _ := fr.builder.Stmts.For(stmtID)
		scope := fr.resolver.Enter(ScopeFor, ScopeOwner{Kind: ScopeOwnerStmt, Stmt: stmtID}, stmt.Span)
		fr.walkStmt(data.Init)
		fr.walkExpr(data.Cond)
		fr.walkStmt(data.Post)
		fr.walkStmt(data.Body)
		fr.resolver.Leave(scope)

	case ast.StmtReturn:
		data, _ := fr.builder.Stmts.Return(stmtID)
		fr.walkExpr(data.Value)
	}
}

func (fr *fileResolver) walkExpr(exprID ast.ExprID) {
	expr := fr.builder.Exprs.Get(exprID)
	if expr == nil {
		return
	}
	switch expr.Kind {
	case ast.ExprIdent:
		data, _ := fr.builder.Exprs.Ident(exprID)
		if id, ok := fr.resolver.Lookup(fr.key(data.Name)); ok {
			fr.result.ExprSymbols[exprID] = id
			return
		}
		fr.reportUndeclared(data.Name, expr.Span)
		fr.result.ExprSymbols[exprID] = fr.result.Table.ErrorSymbol()

	case ast.ExprCall:
		data, _ := fr.builder.Exprs.Call(exprID)
		if ident, ok := fr.builder.Exprs.Ident(data.Target); ok {
			// неизвестная вызываемая функция - динамический вызов, без ошибки
			if id, found := fr.resolver.Lookup(fr.key(ident.Name)); found {
				fr.result.ExprSymbols[data.Target] = id
			}
		} else {
			fr.walkExpr(data.Target)
		}
		for _, arg := range data.Args {
			fr.walkExpr(arg)
		}

	case ast.ExprBinary:
		data, _ := fr.builder.Exprs.Binary(exprID)
		fr.walkExpr(data.Left)
		fr.walkExpr(data.Right)

	case ast.ExprUnary:
		data, _ := fr.builder.Exprs.Unary(exprID)
		fr.walkExpr(data.Operand)

	case ast.ExprGroup:
		data, _ := fr.builder.Exprs.Group(exprID)
		fr.walkExpr(data.Inner)

	case ast.ExprIndex:
		data, _ := fr.builder.Exprs.Index(exprID)
		fr.walkExpr(data.Target)
		fr.walkExpr(data.Index)
	}
}

func (fr *fileResolver) reportUndeclared(name source.StringID, span source.Span) {
	msg := fmt.Sprintf("undeclared name '%s'", fr.builder.Strings.MustLookup(name))
	diag.ReportError(fr.reporter, diag.SemaUndeclaredName, span, msg).Emit()
}
