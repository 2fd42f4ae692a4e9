package parser

import (
	"epscript/internal/ast"
	"epscript/internal/diag"
	"epscript/internal/token"
)

// parseParenCond: "(" expr ")"
func (p *Parser) parseParenCond(after string) (ast.ExprID, bool) {
	if _, ok := p.expect(token.LParen, diag.SynExpectLParen, "expected '(' after '"+after+"'"); !ok {
		return ast.NoExprID, false
	}
	cond, ok := p.parseExpr()
	if ok {
		_, ok = p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after condition")
	}
	if !ok {
		p.resyncParen(false)
		return ast.NoExprID, false
	}
	return cond, true
}

// parseNestedStmt разбирает тело if/while/for. Ошибка внутри тела уже
// восстановлена parseStmt, поэтому снаружи подставляем пустой оператор.
func (p *Parser) parseNestedStmt() ast.StmtID {
	stmt, ok := p.parseStmt()
	if !ok {
		return p.arenas.Stmts.NewSimple(ast.StmtEmpty, p.lastSpan.AtEnd())
	}
	return stmt
}

// if "(" expr ")" stmt [else stmt]
func (p *Parser) parseIfStmt() (ast.StmtID, bool) {
	start := p.advance().Span
	cond, ok := p.parseParenCond("if")
	if !ok {
		return ast.NoStmtID, false
	}
	then := p.parseNestedStmt()
	els := ast.NoStmtID
	if p.at(token.KwElse) {
		p.advance()
		els = p.parseNestedStmt()
	}
	return p.arenas.Stmts.NewIf(start.Cover(p.lastSpan), cond, then, els), true
}

func (p *Parser) parseWhileStmt() (ast.StmtID, bool) {
	start := p.advance().Span
	cond, ok := p.parseParenCond("while")
	if !ok {
		return ast.NoStmtID, false
	}
	body := p.parseNestedStmt()
	return p.arenas.Stmts.NewWhile(start.Cover(p.lastSpan), cond, body), true
}

// do stmt while "(" expr ")" ";"
func (p *Parser) parseDoWhileStmt() (ast.StmtID, bool) {
	start := p.advance().Span
	body := p.parseNestedStmt()
	if _, ok := p.expect(token.KwWhile, diag.SynExpectWhile, "expected 'while' after do-block"); !ok {
		return ast.NoStmtID, false
	}
	cond, ok := p.parseParenCond("while")
	if !ok || !p.expectSemicolon() {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewDoWhile(start.Cover(p.lastSpan), body, cond), true
}

// for "(" [init] ";" [cond] ";" [post] ")" stmt
func (p *Parser) parseForStmt() (ast.StmtID, bool) {
	start := p.advance().Span
	if _, ok := p.expect(token.LParen, diag.SynExpectLParen, "expected '(' after 'for'"); !ok {
		return ast.NoStmtID, false
	}

	data := ast.ForStmt{Cond: ast.NoExprID}
	var ok bool
	switch {
	case p.at(token.Semicolon):
	case p.atOr(token.KwVar, token.KwStatic):
		if data.Init, ok = p.parseVarStmt(false); !ok {
			return p.failForHeader()
		}
	default:
		if data.Init, ok = p.parseSimpleStmt(); !ok {
			return p.failForHeader()
		}
	}
	if !p.expectSemicolon() {
		return p.failForHeader()
	}

	if !p.at(token.Semicolon) {
		if data.Cond, ok = p.parseExpr(); !ok {
			return p.failForHeader()
		}
	}
	if !p.expectSemicolon() {
		return p.failForHeader()
	}

	if !p.at(token.RParen) {
		if data.Post, ok = p.parseSimpleStmt(); !ok {
			return p.failForHeader()
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after for clauses"); !ok {
		return p.failForHeader()
	}

	data.Body = p.parseNestedStmt()
	return p.arenas.Stmts.NewFor(start.Cover(p.lastSpan), data), true
}

func (p *Parser) parseJumpStmt(kind ast.StmtKind) (ast.StmtID, bool) {
	start := p.advance().Span
	if !p.expectSemicolon() {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewSimple(kind, start.Cover(p.lastSpan)), true
}

// return [expr] ";"
func (p *Parser) parseReturnStmt() (ast.StmtID, bool) {
	start := p.advance().Span
	value := ast.NoExprID
	if !p.at(token.Semicolon) {
		var ok bool
		if value, ok = p.parseExpr(); !ok {
			return ast.NoStmtID, false
		}
	}
	if !p.expectSemicolon() {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewReturn(start.Cover(p.lastSpan), value), true
}

// failForHeader восстанавливается после ошибки внутри "for (...)".
func (p *Parser) failForHeader() (ast.StmtID, bool) {
	p.resyncParen(true)
	return ast.NoStmtID, false
}
