package parser

import (
	"slices"

	"epscript/internal/ast"
	"epscript/internal/diag"
	"epscript/internal/lexer"
	"epscript/internal/source"
	"epscript/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   ast.FileID
	Errors uint // синтаксические ошибки, включая подавленные лимитом
}

// Parser - состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     ast.FileID
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики

	// suppress включается после первой ошибки в операторе и после съеденного
	// Recovered-токена; сбрасывается на границе следующего оператора.
	suppress      bool
	lastRecovered bool
	fnDepth       int
}

// ParseFile - входная точка для разбора одного файла.
func ParseFile(lx *lexer.Lexer, arenas *ast.Builder, opts Options) Result {
	f := lx.File()
	start := source.Span{File: f.ID}
	p := Parser{
		lx:       lx,
		arenas:   arenas,
		file:     arenas.NewFile(start),
		opts:     opts,
		lastSpan: start,
	}
	p.parseItems()
	return Result{File: p.file, Errors: p.opts.CurrentErrors}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// parseItems - основной цикл верхнего уровня: пока не EOF - item.
func (p *Parser) parseItems() {
	for !p.at(token.EOF) && !p.opts.Enough() {
		before := p.lx.Peek().Span.Start
		var (
			item ast.ItemID
			ok   bool
		)
		if p.at(token.KwFunction) {
			p.suppress = false
			item, ok = p.parseFnItem()
			if !ok {
				p.resyncFn()
			}
		} else {
			var stmt ast.StmtID
			stmt, ok = p.parseStmt()
			if ok {
				item = p.arenas.Items.NewStmt(p.arenas.Stmts.Get(stmt).Span, stmt)
			}
		}
		if ok {
			p.arenas.PushItem(p.file, item)
		}
		p.ensureProgress(before)
	}
	file := p.arenas.File(p.file)
	file.Span = file.Span.Cover(p.lastSpan)
}

// ensureProgress съедает токен, если после восстановления мы остались на месте
// (например, лишняя '}' на верхнем уровне, о которой уже сообщили).
func (p *Parser) ensureProgress(before uint32) {
	tok := p.lx.Peek()
	if tok.Kind != token.EOF && tok.Span.Start == before {
		p.advance()
		p.suppress = false
	}
}

// parseIdent ожидает Ident и интернирует его.
func (p *Parser) parseIdent(what string) (source.StringID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.arenas.Strings.Intern(tok.Text), tok.Span, true
	}
	p.err(diag.SynExpectIdentifier, "expected "+what+", got "+p.describePeek())
	return source.NoStringID, p.getDiagnosticSpan(), false
}

func (p *Parser) describePeek() string {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Ident, token.IntLit, token.StringLit:
		return tok.Kind.Describe() + " '" + tok.Text + "'"
	}
	return tok.Kind.Describe()
}
