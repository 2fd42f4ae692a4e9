package lexer

import (
	"epscript/internal/diag"
	"epscript/internal/token"
)

const utf8RuneSelf = 0x80

// scanIdentOrKeyword сканирует идентификатор и проверяет через LookupKeyword.
// Token.Text - ровно исходный срез.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.peekRune()
	if r < utf8RuneSelf {
		lx.cursor.Bump()
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	} else {
		if !isIdentStartRune(r) || sz == 0 {
			return lx.scanUnknown()
		}
		lx.bumpRune()
	}
	// хвост может смешивать ASCII и Unicode
	for {
		r2, sz2 := lx.peekRune()
		if sz2 == 0 || !isIdentContinueRune(r2) {
			break
		}
		lx.bumpRune()
	}

	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)
	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text}
}

// scanUnknown consumes one whole rune that cannot start any token.
func (lx *Lexer) scanUnknown() token.Token {
	start := lx.cursor.Mark()
	if _, sz := lx.peekRune(); sz > 1 {
		lx.bumpRune()
	} else {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)
	lx.errLex(diag.LexUnknownChar, sp, "unknown character "+quoteChar(text))
	return token.Token{Kind: token.Invalid, Span: sp, Text: text, Flags: token.Recovered}
}
