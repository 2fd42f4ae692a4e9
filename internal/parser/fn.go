package parser

import (
	"epscript/internal/ast"
	"epscript/internal/diag"
	"epscript/internal/token"
)

// parseFnItem: "function" IDENT "(" [IDENT {"," IDENT}] ")" block
func (p *Parser) parseFnItem() (ast.ItemID, bool) {
	start := p.advance().Span
	name, nameSpan, ok := p.parseIdent("function name")
	if !ok {
		return ast.NoItemID, false
	}
	params, ok := p.parseFnParams()
	if !ok {
		return ast.NoItemID, false
	}
	if !p.at(token.LBrace) {
		p.err(diag.SynExpectLBrace, "expected '{' to start function body, got "+p.describePeek())
		return ast.NoItemID, false
	}

	p.fnDepth++
	body, ok := p.parseBlock()
	p.fnDepth--
	if !ok {
		return ast.NoItemID, false
	}
	span := start.Cover(p.arenas.Stmts.Get(body).Span)
	return p.arenas.Items.NewFn(span, name, nameSpan, params, body), true
}

func (p *Parser) parseFnParams() ([]ast.FnParam, bool) {
	if _, ok := p.expect(token.LParen, diag.SynExpectLParen, "expected '(' after function name"); !ok {
		return nil, false
	}
	var params []ast.FnParam
	if !p.at(token.RParen) {
		for {
			name, sp, ok := p.parseIdent("parameter name")
			if !ok {
				return nil, false
			}
			params = append(params, ast.FnParam{Name: name, Span: sp})
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after parameters"); !ok {
		return nil, false
	}
	return params, true
}

// parseNestedFn: объявление функции внутри оператора запрещено. Разбираем его
// целиком, чтобы тело не дало каскада ошибок, и отбрасываем.
func (p *Parser) parseNestedFn() (ast.StmtID, bool) {
	start := p.lx.Peek().Span
	msg := "function declarations are only allowed at top level"
	if p.fnDepth > 0 {
		msg = "nested functions are not allowed"
	}
	p.report(diag.SynFnNotAllowed, diag.SevError, start, msg)
	p.suppress = true
	if _, ok := p.parseFnItem(); !ok {
		p.resyncFn()
	}
	return p.arenas.Stmts.NewSimple(ast.StmtEmpty, start.Cover(p.lastSpan)), true
}
