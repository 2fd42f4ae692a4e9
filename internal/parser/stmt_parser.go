package parser

import (
	"epscript/internal/ast"
	"epscript/internal/diag"
	"epscript/internal/token"
)

// parseStmt разбирает один оператор. При ошибке сам восстанавливается
// (resyncStmt) и возвращает false; вызывающему остаётся только пропустить его.
func (p *Parser) parseStmt() (ast.StmtID, bool) {
	p.suppress = false
	stmt, ok := p.parseStmtInner()
	if !ok {
		p.resyncStmt()
		return ast.NoStmtID, false
	}
	return stmt, true
}

func (p *Parser) parseStmtInner() (ast.StmtID, bool) {
	switch p.lx.Peek().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwVar, token.KwStatic:
		return p.parseVarStmt(true)
	case token.KwConst:
		return p.parseConstStmt()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwDo:
		return p.parseDoWhileStmt()
	case token.KwFor:
		return p.parseForStmt()
	case token.KwBreak:
		return p.parseJumpStmt(ast.StmtBreak)
	case token.KwContinue:
		return p.parseJumpStmt(ast.StmtContinue)
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwFunction:
		return p.parseNestedFn()
	case token.Semicolon:
		tok := p.advance()
		return p.arenas.Stmts.NewSimple(ast.StmtEmpty, tok.Span), true
	}

	stmt, ok := p.parseSimpleStmt()
	if !ok {
		return ast.NoStmtID, false
	}
	if !p.expectSemicolon() {
		return ast.NoStmtID, false
	}
	p.extendStmtSpan(stmt)
	return stmt, true
}

func (p *Parser) expectSemicolon() bool {
	_, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';'")
	return ok
}

// extendStmtSpan включает в span оператора завершающую ';'.
func (p *Parser) extendStmtSpan(stmt ast.StmtID) {
	st := p.arenas.Stmts.Get(stmt)
	st.Span = st.Span.Cover(p.lastSpan)
}

// parseBlock: "{" { stmt } "}". Ошибка во вложенном операторе не ломает блок.
func (p *Parser) parseBlock() (ast.StmtID, bool) {
	open, ok := p.expect(token.LBrace, diag.SynExpectLBrace, "expected '{'")
	if !ok {
		return ast.NoStmtID, false
	}
	var stmts []ast.StmtID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if stmt, ok := p.parseStmt(); ok {
			stmts = append(stmts, stmt)
		}
	}
	if !p.at(token.RBrace) {
		// блок считается законченным, чтобы не терять уже разобранное
		p.report(diag.SynUnclosedBrace, diag.SevError, p.getDiagnosticSpan(), "expected '}' to close block",
			diag.Note{Span: open.Span, Msg: "block opened here"})
		return p.arenas.Stmts.NewBlock(open.Span.Cover(p.lastSpan), stmts), true
	}
	closeTok := p.advance()
	return p.arenas.Stmts.NewBlock(open.Span.Cover(closeTok.Span), stmts), true
}

// parseSimpleStmt: expr [assignop expr] | expr "++" | expr "--"
func (p *Parser) parseSimpleStmt() (ast.StmtID, bool) {
	target, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	targetSpan := p.arenas.Exprs.Get(target).Span
	tok := p.lx.Peek()

	if op, isAssign := assignOps[tok.Kind]; isAssign {
		if !p.checkAssignTarget(target) {
			return ast.NoStmtID, false
		}
		p.advance()
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		span := targetSpan.Cover(p.arenas.Exprs.Get(value).Span)
		return p.arenas.Stmts.NewAssign(span, op, target, value), true
	}

	if tok.Kind == token.PlusPlus || tok.Kind == token.MinusMinus {
		if !p.checkAssignTarget(target) {
			return ast.NoStmtID, false
		}
		p.advance()
		return p.arenas.Stmts.NewIncDec(targetSpan.Cover(tok.Span), target, tok.Kind == token.PlusPlus), true
	}

	return p.arenas.Stmts.NewExpr(targetSpan, target), true
}

// checkAssignTarget: присваивать можно только имени или элементу a[i].
func (p *Parser) checkAssignTarget(target ast.ExprID) bool {
	inner := p.arenas.Exprs.Unparen(target)
	switch p.arenas.Exprs.Get(inner).Kind {
	case ast.ExprIdent, ast.ExprIndex:
		return true
	}
	p.report(diag.SynBadAssignTarget, diag.SevError, p.arenas.Exprs.Get(target).Span, "cannot assign to this expression")
	return false
}

// parseVarStmt: ["static"] "var" IDENT ["=" expr] {"," IDENT ["=" expr]} [";"]
func (p *Parser) parseVarStmt(withSemi bool) (ast.StmtID, bool) {
	start := p.lx.Peek().Span
	static := false
	if p.at(token.KwStatic) {
		p.advance()
		static = true
	}
	if _, ok := p.expect(token.KwVar, diag.SynUnexpectedToken, "expected 'var' after 'static'"); !ok {
		return ast.NoStmtID, false
	}

	var decls []ast.VarDecl
	for {
		name, nameSpan, ok := p.parseIdent("variable name")
		if !ok {
			return ast.NoStmtID, false
		}
		decl := ast.VarDecl{Name: name, NameSpan: nameSpan, Init: ast.NoExprID}
		if p.at(token.Assign) {
			p.advance()
			decl.Init, ok = p.parseExpr()
			if !ok {
				return ast.NoStmtID, false
			}
		}
		decls = append(decls, decl)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if withSemi && !p.expectSemicolon() {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewVar(start.Cover(p.lastSpan), static, decls), true
}

// parseConstStmt: "const" IDENT "=" expr ";"
func (p *Parser) parseConstStmt() (ast.StmtID, bool) {
	start := p.advance().Span
	name, nameSpan, ok := p.parseIdent("constant name")
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Assign, diag.SynExpectAssign, "constant requires an initializer '='"); !ok {
		return ast.NoStmtID, false
	}
	value, ok := p.parseExpr()
	if !ok || !p.expectSemicolon() {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewConst(start.Cover(p.lastSpan), ast.ConstStmt{
		Name:     name,
		NameSpan: nameSpan,
		Value:    value,
	}), true
}
