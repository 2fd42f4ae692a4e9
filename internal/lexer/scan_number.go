package lexer

import (
	"strconv"
	"strings"

	"epscript/internal/diag"
	"epscript/internal/token"
)

// scanNumber: десятичные [0-9]+ и шестнадцатеричные 0x[0-9a-fA-F]+.
// Значение обязано помещаться в dword. Хвост из букв/цифр ("12ab", "0xZ")
// съедается целиком и репортится как LexBadNumber; токен остаётся IntLit
// с флагом Recovered, чтобы парсер не плодил каскадных ошибок.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	hex := false

	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '0' && (b1 == 'x' || b1 == 'X') {
		hex = true
		lx.cursor.Bump()
		lx.cursor.Bump()
		for isHex(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	} else {
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}

	digitsEnd := lx.cursor.Mark()
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	tok := token.Token{Kind: token.IntLit, Span: sp, Text: lx.text(sp)}

	switch {
	case lx.cursor.Mark() != digitsEnd:
		lx.errLex(diag.LexBadNumber, sp, "malformed number "+strconv.Quote(tok.Text))
		tok.Flags |= token.Recovered
	case hex && sp.Len() == 2:
		lx.errLex(diag.LexBadNumber, sp, "expected hexadecimal digits after '0x'")
		tok.Flags |= token.Recovered
	default:
		if _, ok := ParseDword(tok.Text); !ok {
			lx.errLex(diag.LexBadNumber, sp, "number "+tok.Text+" does not fit in 32 bits")
			tok.Flags |= token.Recovered
		}
	}
	return tok
}

// ParseDword decodes an integer literal into its 32-bit value.
func ParseDword(text string) (uint32, bool) {
	base := 10
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		base = 16
		text = text[2:]
	}
	v, err := strconv.ParseUint(text, base, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
