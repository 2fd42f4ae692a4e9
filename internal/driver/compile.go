package driver

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"unicode/utf8"

	"fortio.org/safecast"

	"epscript/internal/ast"
	"epscript/internal/codegen"
	"epscript/internal/diag"
	"epscript/internal/lexer"
	"epscript/internal/observ"
	"epscript/internal/parser"
	"epscript/internal/registry"
	"epscript/internal/sema"
	"epscript/internal/source"
	"epscript/internal/symbols"
	"epscript/internal/token"
	"epscript/internal/trace"
)

// Stage определяет, до какой фазы доводить компиляцию.
type Stage string

const (
	StageTokenize Stage = "tokenize"
	StageSyntax   Stage = "syntax"
	StageSema     Stage = "sema"
	StageAll      Stage = "all"
)

// ParseStage validates a --stage flag value.
func ParseStage(s string) (Stage, error) {
	switch st := Stage(s); st {
	case StageTokenize, StageSyntax, StageSema, StageAll:
		return st, nil
	case "":
		return StageAll, nil
	}
	return "", fmt.Errorf("unknown stage %q (expected: tokenize|syntax|sema|all)", s)
}

// Options configure one compilation.
type Options struct {
	// Constants is the built-in name vocabulary; nil means none.
	Constants *registry.Snapshot
	// MaxDiagnostics bounds the bag; 0 - без ограничения. Errors are counted
	// even past the bound.
	MaxDiagnostics int
	Stage          Stage
	// Timer, если задан, получает длительности фаз.
	Timer *observ.Timer
}

// Result is everything a compilation produced. Fields of phases that did
// not run stay nil.
type Result struct {
	State   State
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Builder *ast.Builder
	FileID  ast.FileID
	Symbols *symbols.Result
	Sema    *sema.Result
	Program *codegen.Program
	// Output is the text serialisation of Program; empty when nothing was emitted.
	Output string
	// Bag holds the diagnostics sorted by source position.
	Bag *diag.Bag
	// Errors counts error diagnostics, including those the bag dropped.
	Errors int
}

// CompileFile loads path from disk and compiles it.
func CompileFile(ctx context.Context, path string, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return CompileLoaded(ctx, fs, fileID, opts)
}

// Compile runs the full pipeline over an in-memory source. The error is
// always a *FatalError; diagnostics never surface as errors.
func Compile(ctx context.Context, name string, src []byte, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual(name, src)
	return CompileLoaded(ctx, fs, fileID, opts)
}

// CompileLoaded compiles a file already stored in fs. Callers that hash or
// cache sources load them first and hand the set over.
func CompileLoaded(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts Options) (res *Result, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = trace.WithTracer(ctx, trace.Resolve(ctx))
	if opts.Stage == "" {
		opts.Stage = StageAll
	}

	c := &compilation{
		ctx:  ctx,
		opts: opts,
		result: &Result{
			State:   StateIdle,
			FileSet: fs,
			File:    fs.Get(fileID),
			Bag:     diag.NewBag(opts.MaxDiagnostics),
		},
	}
	c.counter = &diag.CountingReporter{Next: diag.BagReporter{Bag: c.result.Bag}}
	// повтор той же ошибки на том же месте не считается
	c.reporter = diag.NewDedupReporter(c.counter)

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "compile")
	c.ctx = ctx
	defer func() {
		if r := recover(); r != nil {
			perr := fmt.Errorf("panic: %v", r)
			if trace.Debug() {
				perr = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
			}
			c.fail(fatal(FatalInternal, c.result.State, perr))
		}
		span.WithExtra("errors", strconv.Itoa(c.result.Errors)).End(c.result.State.String())
		res = c.result
		if c.err != nil {
			err = c.err
		}
	}()

	c.run()
	if c.err != nil {
		return c.result, c.err
	}
	return c.result, nil
}

type compilation struct {
	ctx      context.Context
	opts     Options
	result   *Result
	counter  *diag.CountingReporter
	reporter diag.Reporter
	err      *FatalError
}

func (c *compilation) transition(to State) {
	from := c.result.State
	if !validTransition(from, to) {
		panic(fmt.Errorf("driver: invalid transition %s -> %s", from, to))
	}
	c.result.State = to
	trace.Point(trace.FromContext(c.ctx), trace.ScopePass, "state", from.String()+" -> "+to.String(), trace.CurrentSpan(c.ctx).SpanID)
}

func (c *compilation) fail(err *FatalError) {
	if c.err == nil {
		c.err = err
	}
	c.result.Errors = c.counter.Errors
	if !c.result.State.Terminal() {
		c.transition(StateFailed)
	}
}

// phase runs fn inside a trace span and a timer entry.
func (c *compilation) phase(name string, fn func() string) {
	_, span := trace.Start(c.ctx, trace.ScopePass, name)
	done := c.opts.Timer.Track(name)
	note := fn()
	done(note)
	span.End(note)
}

func (c *compilation) run() {
	res := c.result
	file := res.File

	c.transition(StateLexing)
	if !utf8.Valid(file.Content) {
		c.fail(fatal(FatalInvalidEncoding, StateLexing, nil))
		return
	}
	c.phase("lex", func() string {
		lx := lexer.New(file, lexer.Options{Reporter: c.reporter})
		res.Tokens = lx.All()
		return "tokens=" + strconv.Itoa(len(res.Tokens))
	})
	if c.opts.Stage == StageTokenize {
		c.finish()
		return
	}

	c.transition(StateParsing)
	maxErrors, err := safecast.Conv[uint](c.opts.MaxDiagnostics)
	if err != nil {
		c.fail(fatal(FatalInternal, StateParsing, err))
		return
	}
	c.phase("parse", func() string {
		res.Builder = ast.NewBuilder(ast.Hints{}, nil)
		// лексические ошибки уже выданы на фазе lex
		parsed := parser.ParseFile(lexer.New(file, lexer.Options{}), res.Builder, parser.Options{
			MaxErrors: maxErrors,
			Reporter:  c.reporter,
		})
		res.FileID = parsed.File
		return "items=" + strconv.Itoa(len(res.Builder.File(parsed.File).Items))
	})
	if c.opts.Stage == StageSyntax {
		c.finish()
		return
	}

	c.transition(StateResolving)
	c.phase("resolve", func() string {
		syms := symbols.ResolveFile(res.Builder, res.FileID, symbols.ResolveOptions{
			Constants: c.opts.Constants,
			Reporter:  c.reporter,
			Validate:  true,
		})
		res.Symbols = &syms
		return "symbols=" + strconv.Itoa(syms.Table.Symbols.Len())
	})
	if res.Symbols.Err != nil {
		c.fail(fatal(FatalInternal, StateResolving, res.Symbols.Err))
		return
	}
	c.phase("sema", func() string {
		sem := sema.Check(res.Builder, res.FileID, sema.Options{Reporter: c.reporter, Symbols: res.Symbols})
		res.Sema = &sem
		return "folded=" + strconv.Itoa(len(sem.Values))
	})
	if c.opts.Stage == StageSema {
		c.finish()
		return
	}

	c.transition(StateGenerating)
	var genErr error
	c.phase("codegen", func() string {
		res.Program, genErr = codegen.Generate(res.Builder, res.FileID, res.Symbols, res.Sema)
		return "instrs=" + strconv.Itoa(res.Program.Len())
	})
	if genErr != nil {
		c.fail(fatal(FatalInternal, StateGenerating, genErr))
		return
	}
	res.Output = res.Program.Text()
	c.finish()
}

// finish sorts diagnostics and moves to Done. Stopping after an earlier
// stage (Options.Stage) also ends in Done.
func (c *compilation) finish() {
	c.result.Bag.Sort()
	c.result.Errors = c.counter.Errors
	c.transition(StateDone)
}
