package token

import (
	"epscript/internal/source"
)

// Flags carries lexer side information about a token.
type Flags uint8

const (
	// Recovered marks a token synthesized after a lexical error was reported.
	// Later phases stay silent about it.
	Recovered Flags = 1 << iota
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Flags   Flags
	Leading []Trivia
}

func (t Token) IsRecovered() bool { return t.Flags&Recovered != 0 }

// IsLiteral reports whether the token is an integer, boolean or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, StringLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwFunction && t.Kind <= KwFalse
}

// IsAssignOp reports '=' and every compound assignment operator.
func (t Token) IsAssignOp() bool {
	return t.Kind >= Assign && t.Kind <= ShrAssign
}

// StartsStatement reports keywords the parser resynchronises on.
func (t Token) StartsStatement() bool {
	switch t.Kind {
	case KwFunction, KwVar, KwStatic, KwConst, KwIf, KwWhile, KwDo, KwFor,
		KwBreak, KwContinue, KwReturn:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }
