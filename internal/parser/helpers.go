package parser

import (
	"epscript/internal/diag"
	"epscript/internal/source"
	"epscript/internal/token"
)

// advance - съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	if tok.IsRecovered() {
		// лексер уже отчитался об этом месте
		p.suppress = true
	}
	p.lastRecovered = tok.IsRecovered()
	return tok
}

// getDiagnosticSpan - на EOF указываем сразу за последним съеденным токеном.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return p.lastSpan.AtEnd()
	}
	return peek.Span
}

// expect - ожидаем конкретный токен. Если нет - репортим и возвращаем (peek,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.err(code, msg+", got "+p.describePeek())
	return p.lx.Peek(), false
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

// report пропускает ошибку, если оператор уже подавлен, или если виноват
// токен, который лексер пометил как Recovered (в том числе незакрытая строка,
// съевшая остаток файла). Первая ошибка включает подавление.
func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string, notes ...diag.Note) bool {
	if sev == diag.SevError {
		peek := p.lx.Peek()
		if p.suppress || peek.IsRecovered() || peek.Kind == token.EOF && p.lastRecovered {
			p.suppress = true
			return false
		}
		p.suppress = true
		p.opts.CurrentErrors++
	}
	if p.opts.Reporter == nil {
		return false
	}
	if sev == diag.SevError && p.opts.MaxErrors > 0 && p.opts.CurrentErrors > p.opts.MaxErrors {
		return false // достигли максимального количества ошибок
	}
	p.opts.Reporter.Report(code, sev, sp, msg, notes)
	return true
}

// resyncUntil прокручивает токены до одного из stop (не съедая его) или EOF.
func (p *Parser) resyncUntil(stop ...token.Kind) {
	for !p.at(token.EOF) && !p.atOr(stop...) {
		p.advance()
	}
}

// resyncStmt - восстановление после ошибки в операторе: до ';' (съедаем),
// '}' или ключевого слова, начинающего оператор. Встреченный '{' - тело
// сломанного оператора: его съедаем целиком вместе с веткой else.
func (p *Parser) resyncStmt() {
	for {
		tok := p.lx.Peek()
		switch {
		case tok.Kind == token.EOF, tok.Kind == token.RBrace, tok.StartsStatement():
			p.suppress = false
			return
		case tok.Kind == token.Semicolon:
			p.advance()
			p.suppress = false
			return
		case tok.Kind == token.LBrace:
			p.skipBlock()
			if !p.at(token.KwElse) {
				p.suppress = false
				return
			}
		}
		p.advance()
	}
}

// resyncParen докручивает сломанный заголовок if/while/for до парной ')'
// и съедает её. ';' останавливает только вне заголовка for.
func (p *Parser) resyncParen(forHeader bool) {
	depth := 1
	for {
		tok := p.lx.Peek()
		switch {
		case tok.Kind == token.EOF, tok.Kind == token.LBrace, tok.Kind == token.RBrace, tok.StartsStatement():
			return
		case tok.Kind == token.Semicolon && !forHeader:
			return
		}
		switch p.advance().Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// resyncFn - восстановление после ошибки в заголовке функции: тело
// пропускаем целиком, иначе его операторы и '}' дадут каскад ошибок.
func (p *Parser) resyncFn() {
	p.resyncUntil(token.LBrace, token.Semicolon, token.KwFunction)
	switch {
	case p.at(token.Semicolon):
		p.advance()
	case p.at(token.LBrace):
		p.skipBlock()
	}
	p.suppress = false
}

// skipBlock съедает сбалансированный блок { ... } вместе с закрывающей '}'.
func (p *Parser) skipBlock() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.advance().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}
