// Package epscript compiles epScript trigger scripts into stack-machine
// programs.
//
// The package-level functions form the host interface: a process-wide debug
// switch, a process-wide constant registry, and Compile. Hosts that need
// isolated vocabularies use a Compiler with its own registry.
package epscript

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"epscript/internal/codegen"
	"epscript/internal/diag"
	"epscript/internal/driver"
	"epscript/internal/registry"
	"epscript/internal/source"
	"epscript/internal/trace"
)

// ErrInvalidEncoding is returned when a constant name or a source is not
// valid UTF-8.
var ErrInvalidEncoding = registry.ErrInvalidEncoding

// ErrorKind classifies a CompileError.
type ErrorKind uint8

const (
	InvalidEncoding ErrorKind = iota + 1
	InternalInvariantViolation
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidEncoding:
		return "InvalidEncoding"
	case InternalInvariantViolation:
		return "InternalInvariantViolation"
	}
	return "Unknown"
}

// CompileError reports a compilation that could not complete. Diagnostics in
// the source are not CompileErrors; see GetErrorCount.
type CompileError struct {
	Kind     ErrorKind
	Filename string
	Err      error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("epscript: %s: %s: %v", e.Filename, e.Kind, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidEncoding) hold for encoding failures.
func (e *CompileError) Is(target error) bool {
	return target == ErrInvalidEncoding && e.Kind == InvalidEncoding
}

// lastErrors хранит число ошибок последней завершённой компиляции.
var lastErrors atomic.Int64

// SetDebugMode toggles phase tracing to stderr for every later compilation.
func SetDebugMode(enabled bool) { trace.SetDebug(enabled) }

// RegisterConstants adds NUL-separated names to the process-wide registry.
// On invalid UTF-8 nothing is registered.
func RegisterConstants(blob []byte) error {
	return registry.Default().RegisterNullSeparated(blob)
}

// GetErrorCount returns the error count of the most recently completed
// compilation, or 0 if none has completed.
func GetErrorCount() int { return int(lastErrors.Load()) }

// Compile compiles source with the process-wide registry and returns the
// program text. The text is empty when nothing was emitted.
func Compile(filename string, src []byte) (string, error) {
	return defaultCompiler.Compile(filename, src)
}

var defaultCompiler = NewCompiler(registry.Default())

// Compiler compiles against an explicit constant registry.
type Compiler struct {
	reg        *registry.Registry
	maxDiags   int
	lastErrors atomic.Int64
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithMaxDiagnostics bounds the diagnostics kept per compilation.
func WithMaxDiagnostics(n int) Option {
	return func(c *Compiler) { c.maxDiags = n }
}

// NewCompiler returns a Compiler bound to reg; nil means an empty registry.
func NewCompiler(reg *registry.Registry, opts ...Option) *Compiler {
	if reg == nil {
		reg = registry.New()
	}
	c := &Compiler{reg: reg}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the registry the compiler reads.
func (c *Compiler) Registry() *registry.Registry { return c.reg }

// ErrorCount returns the error count of this compiler's last compilation.
func (c *Compiler) ErrorCount() int { return int(c.lastErrors.Load()) }

// Compile compiles src and returns the program text.
func (c *Compiler) Compile(filename string, src []byte) (string, error) {
	out, err := c.CompileDetailed(context.Background(), filename, src)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

// Output is the detailed result of a compilation.
type Output struct {
	Text    string
	Program *codegen.Program
	// Diagnostics are sorted by position. Their spans index the normalised
	// text held in FileSet (BOM stripped, CRLF folded to LF); SourceRange
	// converts them to offsets in the bytes passed to CompileDetailed.
	Diagnostics []diag.Diagnostic
	FileSet     *source.FileSet
	Errors      int
}

// SourceRange returns the byte range of span in the original source.
func (o *Output) SourceRange(span source.Span) (start, end uint32) {
	f := o.FileSet.Get(span.File)
	return f.OriginalOffset(span.Start), f.OriginalOffset(span.End)
}

// CompileDetailed compiles src and returns the program with its diagnostics.
func (c *Compiler) CompileDetailed(ctx context.Context, filename string, src []byte) (*Output, error) {
	res, err := driver.Compile(ctx, filename, src, driver.Options{
		Constants:      c.reg.Snapshot(),
		MaxDiagnostics: c.maxDiags,
	})
	if err != nil {
		return nil, wrapFatal(filename, err)
	}
	n := int64(res.Errors)
	c.lastErrors.Store(n)
	lastErrors.Store(n)
	return &Output{
		Text:        res.Output,
		Program:     res.Program,
		Diagnostics: res.Bag.Items(),
		FileSet:     res.FileSet,
		Errors:      res.Errors,
	}, nil
}

func wrapFatal(filename string, err error) error {
	kind := InternalInvariantViolation
	if errors.Is(err, driver.ErrInvalidEncoding) {
		kind = InvalidEncoding
	}
	return &CompileError{Kind: kind, Filename: filename, Err: err}
}
