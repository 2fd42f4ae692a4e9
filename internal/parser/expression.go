package parser

import (
	"epscript/internal/ast"
	"epscript/internal/diag"
	"epscript/internal/lexer"
	"epscript/internal/source"
	"epscript/internal/token"
)

// parseExpr - главная точка входа для парсинга выражений
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseBinaryExpr(0)
}

// parseBinaryExpr - precedence climbing; minPrec - минимальный приоритет для текущего уровня
func (p *Parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}

	for {
		op, prec := getBinaryOperatorPrec(p.lx.Peek().Kind)
		if prec < 0 || prec < minPrec {
			break
		}
		p.advance()

		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			return ast.NoExprID, false
		}
		span := p.arenas.Exprs.Get(left).Span.Cover(p.arenas.Exprs.Get(right).Span)
		left = p.arenas.Exprs.NewBinary(span, op, left, right)
	}
	return left, true
}

// parseUnaryExpr собирает префиксы и применяет их справа налево
func (p *Parser) parseUnaryExpr() (ast.ExprID, bool) {
	type prefixOp struct {
		op   ast.ExprUnaryOp
		span source.Span
	}
	var prefixes []prefixOp
	for {
		op, ok := getUnaryOperator(p.lx.Peek().Kind)
		if !ok {
			break
		}
		tok := p.advance()
		prefixes = append(prefixes, prefixOp{op: op, span: tok.Span})
	}

	expr, ok := p.parsePostfixExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for i := len(prefixes) - 1; i >= 0; i-- {
		span := prefixes[i].span.Cover(p.arenas.Exprs.Get(expr).Span)
		expr = p.arenas.Exprs.NewUnary(span, prefixes[i].op, expr)
	}
	return expr, true
}

// parsePostfixExpr: вызовы f(a, b) и индексация a[i]
func (p *Parser) parsePostfixExpr() (ast.ExprID, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		switch p.lx.Peek().Kind {
		case token.LParen:
			expr, ok = p.parseCallExpr(expr)
		case token.LBracket:
			expr, ok = p.parseIndexExpr(expr)
		default:
			return expr, true
		}
		if !ok {
			return ast.NoExprID, false
		}
	}
}

func (p *Parser) parseCallExpr(target ast.ExprID) (ast.ExprID, bool) {
	p.advance() // (
	var args []ast.ExprID
	if !p.at(token.RParen) {
		for {
			arg, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			args = append(args, arg)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close argument list")
	if !ok {
		return ast.NoExprID, false
	}
	span := p.arenas.Exprs.Get(target).Span.Cover(closeTok.Span)
	return p.arenas.Exprs.NewCall(span, target, args), true
}

func (p *Parser) parseIndexExpr(target ast.ExprID) (ast.ExprID, bool) {
	p.advance() // [
	index, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' after index")
	if !ok {
		return ast.NoExprID, false
	}
	span := p.arenas.Exprs.Get(target).Span.Cover(closeTok.Span)
	return p.arenas.Exprs.NewIndex(span, target, index), true
}

// parsePrimaryExpr парсит основные (атомарные) выражения
func (p *Parser) parsePrimaryExpr() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return p.arenas.Exprs.NewIdent(tok.Span, p.arenas.Strings.Intern(tok.Text)), true

	case token.IntLit:
		p.advance()
		v, _ := lexer.ParseDword(tok.Text) // ошибку уже выдал лексер
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.ExprLiteralData{Kind: ast.ExprLitInt, Int: v}), true

	case token.StringLit:
		p.advance()
		str := p.arenas.Strings.Intern(lexer.Unquote(tok.Text))
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.ExprLiteralData{Kind: ast.ExprLitString, Str: str}), true

	case token.KwTrue:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.ExprLiteralData{Kind: ast.ExprLitTrue, Int: 1}), true

	case token.KwFalse:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.ExprLiteralData{Kind: ast.ExprLitFalse}), true

	case token.LParen:
		open := p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'")
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewGroup(open.Span.Cover(closeTok.Span), inner), true
	}

	p.err(diag.SynExpectExpression, "expected expression, got "+p.describePeek())
	return ast.NoExprID, false
}
