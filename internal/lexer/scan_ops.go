package lexer

import (
	"epscript/internal/token"
)

// Жадность: сначала 3-символьные, затем 2-символьные, затем 1-символьные.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: k, Span: sp, Text: lx.text(sp)}
	}

	switch {
	case lx.try3('<', '<', '='):
		return emit(token.ShlAssign)
	case lx.try3('>', '>', '='):
		return emit(token.ShrAssign)
	case lx.try2('&', '&'):
		return emit(token.AndAnd)
	case lx.try2('|', '|'):
		return emit(token.OrOr)
	case lx.try2('=', '='):
		return emit(token.EqEq)
	case lx.try2('!', '='):
		return emit(token.BangEq)
	case lx.try2('<', '='):
		return emit(token.LtEq)
	case lx.try2('>', '='):
		return emit(token.GtEq)
	case lx.try2('<', '<'):
		return emit(token.Shl)
	case lx.try2('>', '>'):
		return emit(token.Shr)
	case lx.try2('+', '+'):
		return emit(token.PlusPlus)
	case lx.try2('-', '-'):
		return emit(token.MinusMinus)
	case lx.try2('+', '='):
		return emit(token.PlusAssign)
	case lx.try2('-', '='):
		return emit(token.MinusAssign)
	case lx.try2('*', '='):
		return emit(token.StarAssign)
	case lx.try2('/', '='):
		return emit(token.SlashAssign)
	case lx.try2('%', '='):
		return emit(token.PercentAssign)
	case lx.try2('&', '='):
		return emit(token.AmpAssign)
	case lx.try2('|', '='):
		return emit(token.PipeAssign)
	case lx.try2('^', '='):
		return emit(token.CaretAssign)
	}

	switch lx.cursor.Peek() {
	case '+':
		lx.cursor.Bump()
		return emit(token.Plus)
	case '-':
		lx.cursor.Bump()
		return emit(token.Minus)
	case '*':
		lx.cursor.Bump()
		return emit(token.Star)
	case '/':
		lx.cursor.Bump()
		return emit(token.Slash)
	case '%':
		lx.cursor.Bump()
		return emit(token.Percent)
	case '=':
		lx.cursor.Bump()
		return emit(token.Assign)
	case '!':
		lx.cursor.Bump()
		return emit(token.Bang)
	case '<':
		lx.cursor.Bump()
		return emit(token.Lt)
	case '>':
		lx.cursor.Bump()
		return emit(token.Gt)
	case '&':
		lx.cursor.Bump()
		return emit(token.Amp)
	case '|':
		lx.cursor.Bump()
		return emit(token.Pipe)
	case '^':
		lx.cursor.Bump()
		return emit(token.Caret)
	case '~':
		lx.cursor.Bump()
		return emit(token.Tilde)
	case ';':
		lx.cursor.Bump()
		return emit(token.Semicolon)
	case ',':
		lx.cursor.Bump()
		return emit(token.Comma)
	case '(':
		lx.cursor.Bump()
		return emit(token.LParen)
	case ')':
		lx.cursor.Bump()
		return emit(token.RParen)
	case '{':
		lx.cursor.Bump()
		return emit(token.LBrace)
	case '}':
		lx.cursor.Bump()
		return emit(token.RBrace)
	case '[':
		lx.cursor.Bump()
		return emit(token.LBracket)
	case ']':
		lx.cursor.Bump()
		return emit(token.RBracket)
	}
	return lx.scanUnknown()
}
