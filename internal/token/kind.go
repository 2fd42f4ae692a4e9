package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input. The lexer repeats it forever.
	EOF

	Ident

	KwFunction // function
	KwVar      // var
	KwStatic   // static
	KwConst    // const
	KwIf       // if
	KwElse     // else
	KwWhile    // while
	KwDo       // do
	KwFor      // for
	KwBreak    // break
	KwContinue // continue
	KwReturn   // return
	KwTrue     // true
	KwFalse    // false

	// IntLit is a decimal or 0x-prefixed dword literal.
	IntLit
	// StringLit keeps the quotes in Text; the lexer does not unescape.
	StringLit

	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	AmpAssign     // &=
	PipeAssign    // |=
	CaretAssign   // ^=
	ShlAssign     // <<=
	ShrAssign     // >>=
	PlusPlus      // ++
	MinusMinus    // --
	EqEq          // ==
	Bang          // !
	BangEq        // !=
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	Shl           // <<
	Shr           // >>
	Amp           // &
	Pipe          // |
	Caret         // ^
	Tilde         // ~
	AndAnd        // &&
	OrOr          // ||
	Semicolon     // ;
	Comma         // ,
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]

	kindCount
)

var kindNames = [kindCount]string{
	Invalid: "Invalid", EOF: "EOF", Ident: "Ident",
	KwFunction: "KwFunction", KwVar: "KwVar", KwStatic: "KwStatic", KwConst: "KwConst",
	KwIf: "KwIf", KwElse: "KwElse", KwWhile: "KwWhile", KwDo: "KwDo", KwFor: "KwFor",
	KwBreak: "KwBreak", KwContinue: "KwContinue", KwReturn: "KwReturn",
	KwTrue: "KwTrue", KwFalse: "KwFalse",
	IntLit: "IntLit", StringLit: "StringLit",
	Plus: "Plus", Minus: "Minus", Star: "Star", Slash: "Slash", Percent: "Percent",
	Assign: "Assign", PlusAssign: "PlusAssign", MinusAssign: "MinusAssign",
	StarAssign: "StarAssign", SlashAssign: "SlashAssign", PercentAssign: "PercentAssign",
	AmpAssign: "AmpAssign", PipeAssign: "PipeAssign", CaretAssign: "CaretAssign",
	ShlAssign: "ShlAssign", ShrAssign: "ShrAssign", PlusPlus: "PlusPlus", MinusMinus: "MinusMinus",
	EqEq: "EqEq", Bang: "Bang", BangEq: "BangEq", Lt: "Lt", LtEq: "LtEq", Gt: "Gt", GtEq: "GtEq",
	Shl: "Shl", Shr: "Shr", Amp: "Amp", Pipe: "Pipe", Caret: "Caret", Tilde: "Tilde",
	AndAnd: "AndAnd", OrOr: "OrOr", Semicolon: "Semicolon", Comma: "Comma",
	LParen: "LParen", RParen: "RParen", LBrace: "LBrace", RBrace: "RBrace",
	LBracket: "LBracket", RBracket: "RBracket",
}

var kindLexemes = map[Kind]string{
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Assign: "=",
	PlusAssign: "+=", MinusAssign: "-=", StarAssign: "*=", SlashAssign: "/=", PercentAssign: "%=",
	AmpAssign: "&=", PipeAssign: "|=", CaretAssign: "^=", ShlAssign: "<<=", ShrAssign: ">>=",
	PlusPlus: "++", MinusMinus: "--", EqEq: "==", Bang: "!", BangEq: "!=",
	Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=", Shl: "<<", Shr: ">>",
	Amp: "&", Pipe: "|", Caret: "^", Tilde: "~", AndAnd: "&&", OrOr: "||",
	Semicolon: ";", Comma: ",", LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
	LBracket: "[", RBracket: "]",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Describe renders the kind for messages: "';'", "identifier", "'while'".
func (k Kind) Describe() string {
	if lx, ok := kindLexemes[k]; ok {
		return "'" + lx + "'"
	}
	for kw, kind := range keywords {
		if kind == k {
			return "'" + kw + "'"
		}
	}
	switch k {
	case Ident:
		return "identifier"
	case IntLit:
		return "integer literal"
	case StringLit:
		return "string literal"
	case EOF:
		return "end of file"
	}
	return "invalid token"
}
