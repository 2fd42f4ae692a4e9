package token

var keywords = map[string]Kind{
	"function": KwFunction,
	"var":      KwVar,
	"static":   KwStatic,
	"const":    KwConst,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"do":       KwDo,
	"for":      KwFor,
	"break":    KwBreak,
	"continue": KwContinue,
	"return":   KwReturn,
	"true":     KwTrue,
	"false":    KwFalse,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
