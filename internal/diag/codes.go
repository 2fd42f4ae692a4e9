package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexBadEscape                Code = 1005

	// Парсерные
	SynInfo             Code = 2000
	SynUnexpectedToken  Code = 2001
	SynUnclosedParen    Code = 2002
	SynUnclosedBrace    Code = 2003
	SynUnclosedBracket  Code = 2004
	SynExpectSemicolon  Code = 2005
	SynExpectIdentifier Code = 2006
	SynExpectExpression Code = 2007
	SynExpectLParen     Code = 2008
	SynExpectLBrace     Code = 2009
	SynExpectAssign     Code = 2010
	SynExpectWhile      Code = 2011
	SynFnNotAllowed     Code = 2012
	SynBadAssignTarget  Code = 2013
	SynTooManyErrors    Code = 2014

	// Семантические
	SemaInfo                  Code = 3000
	SemaUndeclaredName        Code = 3001
	SemaRedeclaration         Code = 3002
	SemaArityMismatch         Code = 3003
	SemaArithmetic            Code = 3004
	SemaTypeMismatch          Code = 3005
	SemaAssignToConst         Code = 3006
	SemaBreakOutsideLoop      Code = 3007
	SemaContinueOutsideLoop   Code = 3008
	SemaReturnOutsideFunction Code = 3009
	SemaNotCallable           Code = 3010
	SemaShadowBuiltin         Code = 3011

	// IO / проект
	IOLoadFileError    Code = 4001
	IOInvalidEncoding  Code = 4002
	ProjManifestError  Code = 5001
	ProjConstantsError Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed number",
	LexBadEscape:                "Invalid escape sequence",

	SynInfo:             "Syntax information",
	SynUnexpectedToken:  "Unexpected token",
	SynUnclosedParen:    "Unclosed parenthesis",
	SynUnclosedBrace:    "Unclosed brace",
	SynUnclosedBracket:  "Unclosed bracket",
	SynExpectSemicolon:  "Expected semicolon",
	SynExpectIdentifier: "Expected identifier",
	SynExpectExpression: "Expected expression",
	SynExpectLParen:     "Expected '('",
	SynExpectLBrace:     "Expected '{'",
	SynExpectAssign:     "Expected '='",
	SynExpectWhile:      "Expected 'while' after do-block",
	SynFnNotAllowed:     "Function declaration is only allowed at top level",
	SynBadAssignTarget:  "Invalid assignment target",
	SynTooManyErrors:    "Too many errors",

	SemaInfo:                  "Semantic information",
	SemaUndeclaredName:        "Undeclared name",
	SemaRedeclaration:         "Redeclaration",
	SemaArityMismatch:         "Argument count mismatch",
	SemaArithmetic:            "Arithmetic error in constant expression",
	SemaTypeMismatch:          "Operand type mismatch",
	SemaAssignToConst:         "Cannot assign to immutable name",
	SemaBreakOutsideLoop:      "'break' outside of a loop",
	SemaContinueOutsideLoop:   "'continue' outside of a loop",
	SemaReturnOutsideFunction: "'return' outside of a function",
	SemaNotCallable:           "Value is not callable",
	SemaShadowBuiltin:         "Declaration shadows a built-in constant",

	IOLoadFileError:    "I/O load file error",
	IOInvalidEncoding:  "Source is not valid UTF-8",
	ProjManifestError:  "Invalid project manifest",
	ProjConstantsError: "Invalid constants list",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Phase reports which pipeline stage owns the code ("lex", "syntax", "sema", "io", "project").
func (c Code) Phase() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return "lex"
	case ic >= 2000 && ic < 3000:
		return "syntax"
	case ic >= 3000 && ic < 4000:
		return "sema"
	case ic >= 4000 && ic < 5000:
		return "io"
	case ic >= 5000 && ic < 6000:
		return "project"
	}
	return "unknown"
}
