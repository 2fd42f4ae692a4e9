package lexer

import (
	"strings"

	"epscript/internal/diag"
	"epscript/internal/token"
)

// scanString читает "..." или '...'. Перевод строки или EOF до закрывающей
// кавычки - LexUnterminatedString; токен всё равно StringLit (Recovered).
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	quote := lx.cursor.Bump()
	var flags token.Flags

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case quote:
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp), Flags: flags}
		case '\n':
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexUnterminatedString, sp, "newline in string literal")
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp), Flags: token.Recovered}
		case '\\':
			escStart := lx.cursor.Mark()
			lx.cursor.Bump()
			if !lx.scanEscape() {
				lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(escStart), "invalid escape sequence")
				flags |= token.Recovered
			}
		default:
			lx.cursor.Bump()
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
	return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp), Flags: token.Recovered}
}

// scanEscape съедает escape после '\'. Перевод строки и EOF не трогаем
// и ошибкой escape не считаем: незакрытую строку репортит scanString.
func (lx *Lexer) scanEscape() bool {
	if lx.cursor.EOF() {
		return true
	}
	switch b := lx.cursor.Peek(); b {
	case 'n', 't', 'r', '0', '\\', '"', '\'':
		lx.cursor.Bump()
		return true
	case 'x':
		lx.cursor.Bump()
		for range 2 {
			if !isHex(lx.cursor.Peek()) {
				return false
			}
			lx.cursor.Bump()
		}
		return true
	case '\n':
		return true
	default:
		lx.bumpRune()
		return false
	}
}

// Unquote decodes a string literal token text. Invalid escapes are kept
// verbatim; a missing closing quote is tolerated.
func Unquote(text string) string {
	if len(text) == 0 {
		return ""
	}
	quote := text[0]
	body := text[1:]
	if len(body) > 0 && body[len(body)-1] == quote && !escapedTail(body) {
		body = body[:len(body)-1]
	}
	if strings.IndexByte(body, '\\') < 0 {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := body[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '\\', '"', '\'':
			b.WriteByte(e)
		case 'x':
			if i+2 < len(body) && isHex(body[i+1]) && isHex(body[i+2]) {
				b.WriteByte(unhex(body[i+1])<<4 | unhex(body[i+2]))
				i += 2
			} else {
				b.WriteString(`\x`)
			}
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return b.String()
}

// escapedTail reports whether the last byte of s is escaped by an odd run of backslashes.
func escapedTail(s string) bool {
	n := 0
	for i := len(s) - 2; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

func unhex(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}
