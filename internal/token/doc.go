// Package token defines lexical token kinds and trivia for epScript.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - Comments and whitespace never appear in the main stream; they are kept
//     as leading Trivia of the next token.
//   - Built-in constant names are plain identifiers; the resolver, not the
//     lexer, decides they are constants.
package token
