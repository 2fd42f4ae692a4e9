package fuzztests

import (
	"testing"

	"epscript/internal/diag"
	"epscript/internal/lexer"
	"epscript/internal/source"
	"epscript/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.eps", input))

		bag := diag.NewBag(64)
		lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
		// каждый токен съедает хотя бы байт, иначе лексер застрял
		for i := 0; i <= len(file.Content)+1; i++ {
			tok := lx.Next()
			if tok.Kind == token.EOF {
				return
			}
			if tok.Span.End > file.Size() {
				t.Fatalf("token %s ends past the file: %d > %d", tok.Kind, tok.Span.End, file.Size())
			}
		}
		t.Fatalf("lexer did not reach EOF on %q", input)
	})
}
