package fuzztests

import (
	"os"
	"path/filepath"
	"testing"
)

const maxFuzzInput = 1 << 16 // 64 KiB

var languageSeeds = []string{
	"",
	"var a = 1;",
	"var a, b = 2, c;\na += b * c;",
	"const N = 4 * 8; var t = N >> 1;",
	"function f(x, y) { return x + y; }\nf(1, 2);",
	"for (var i = 0; i < 10; i++) { if (i == 3) continue; if (i == 7) break; }",
	"do { a--; } while (a > 0);",
	"while (true) { print(\"tick\"); }",
	"var s = \"a\\n\\\"b\\\"\"; s[0] = 1;",
	"x = y ? 1 : 2;",
	"/* unterminated",
	"\"unterminated",
	"var = ;",
	"function (",
	"{{{{{{{{",
	"a = b = c = d;",
	"var t; t[1][2] += FOO(BAR, 3);",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
	matches, err := filepath.Glob(filepath.Join("testdata", "*.eps"))
	if err != nil {
		return
	}
	for _, path := range matches {
		// #nosec G304 -- path comes from the package testdata glob
		src, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f.Add(clamp(src))
	}
}

func clamp(src []byte) []byte {
	if len(src) <= maxFuzzInput {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxFuzzInput]...)
}
