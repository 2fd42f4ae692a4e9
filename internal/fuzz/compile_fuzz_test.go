package fuzztests

import (
	"context"
	"testing"
	"time"

	"epscript/internal/driver"
	"epscript/internal/registry"
)

// compileTimeout bounds one compilation; hitting it means an endless recovery loop.
const compileTimeout = 5 * time.Second

func FuzzCompile(f *testing.F) {
	addCorpusSeeds(f)
	constants := registry.New()
	if err := constants.Register([]byte("FOO"), []byte("print")); err != nil {
		f.Fatal(err)
	}
	snapshot := constants.Snapshot()

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input)

		ctx, cancel := context.WithTimeout(context.Background(), compileTimeout)
		defer cancel()

		type outcome struct {
			res *driver.Result
			err error
		}
		done := make(chan outcome, 1)
		go func() {
			res, err := driver.Compile(ctx, "fuzz.eps", input, driver.Options{Constants: snapshot, MaxDiagnostics: 64})
			done <- outcome{res, err}
		}()

		select {
		case out := <-done:
			if out.err != nil {
				return
			}
			if out.res.State == driver.StateDone && out.res.Program == nil {
				t.Fatalf("no program after a finished compile of %q", input)
			}
		case <-ctx.Done():
			t.Fatalf("compile hang detected after %v\ninput (%d bytes): %q", compileTimeout, len(input), truncate(input, 200))
		}
	})
}

func truncate(data []byte, maxLen int) []byte {
	if len(data) <= maxLen {
		return data
	}
	return data[:maxLen]
}
