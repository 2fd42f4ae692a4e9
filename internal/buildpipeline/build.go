package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"epscript/internal/diagfmt"
	"epscript/internal/driver"
	"epscript/internal/observ"
	"epscript/internal/project"
	"epscript/internal/registry"
	"epscript/internal/source"
	"epscript/internal/trace"
	"epscript/internal/version"
)

// BuildRequest configures a multi-file build.
type BuildRequest struct {
	Files []string
	// Root is the project root; artifact paths mirror the layout below it.
	Root   string
	OutDir string
	// NoWrite compiles without writing artifacts (epsc diag over a project).
	NoWrite        bool
	Emit           diagfmt.EmitFormat
	Jobs           int
	MaxDiagnostics int
	Constants      *registry.Snapshot
	Cache          *DiskCache
	Progress       ProgressSink
	// Timer, если задан, общий для всех воркеров.
	Timer *observ.Timer
}

// FileResult is the outcome of one source file.
type FileResult struct {
	Path    string
	OutPath string
	// Result is nil for cache hits and for files that failed to load.
	Result  *driver.Result
	Errors  int
	Cached  bool
	Err     error
	Timings Timings
}

// Failed reports files that produced errors or a fatal failure.
func (r *FileResult) Failed() bool {
	return r.Err != nil || r.Errors > 0
}

// BuildResult aggregates the build. Files keep the request order.
type BuildResult struct {
	Files   []FileResult
	Errors  int
	Failed  int
	Cached  int
	Timings Timings
	Elapsed time.Duration
}

// ErrBuildFailed is returned by (*BuildResult).Err when any file failed.
var ErrBuildFailed = errors.New("build failed")

func (r *BuildResult) Err() error {
	if r.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d files, %d errors", ErrBuildFailed, r.Failed, len(r.Files), r.Errors)
}

// Build compiles every file concurrently. Per-file failures are recorded in
// the result; the returned error is reserved for cancellation and bad requests.
func Build(ctx context.Context, req *BuildRequest) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return nil, fmt.Errorf("missing build request")
	}
	if !req.NoWrite && req.OutDir == "" {
		return nil, fmt.Errorf("missing output directory")
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "build")
	span.WithExtra("files", strconv.Itoa(len(req.Files))).WithExtra("jobs", strconv.Itoa(jobs))

	res := &BuildResult{Files: make([]FileResult, len(req.Files))}
	emitQueued(req.Progress, req.Files)
	emit(req.Progress, Event{Stage: StageBuild, Status: StatusWorking})

	constantsKey := project.HashStrings(req.Constants.Names()...)
	toolKey := project.HashStrings(version.Version, strconv.Itoa(int(cacheSchemaVersion)))

	// индексы уникальны для каждой горутины, мьютекс не нужен
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(req.Files))))
	for i, path := range req.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w := worker{req: req, constantsKey: constantsKey, toolKey: toolKey}
			res.Files[i] = w.run(gctx, path)
			return nil
		})
	}
	err := g.Wait()

	for i := range res.Files {
		fr := &res.Files[i]
		res.Errors += fr.Errors
		if fr.Failed() {
			res.Failed++
		}
		if fr.Cached {
			res.Cached++
		}
		for _, stage := range []Stage{StageLoad, StageCompile, StageWrite} {
			res.Timings.Add(stage, fr.Timings.Duration(stage))
		}
	}
	res.Elapsed = time.Since(start)
	res.Timings.Set(StageBuild, res.Elapsed)

	status := StatusDone
	if err != nil || res.Failed > 0 {
		status = StatusError
	}
	emit(req.Progress, Event{Stage: StageBuild, Status: status, Errors: res.Errors, Err: err, Elapsed: res.Elapsed})
	span.WithExtra("errors", strconv.Itoa(res.Errors)).WithExtra("cached", strconv.Itoa(res.Cached)).End(string(status))
	if err != nil {
		return res, fmt.Errorf("build interrupted: %w", err)
	}
	return res, nil
}

type worker struct {
	req          *BuildRequest
	constantsKey project.Digest
	toolKey      project.Digest
}

func (w worker) run(ctx context.Context, path string) (fr FileResult) {
	fr.Path = path
	ctx, span := trace.Start(ctx, trace.ScopeUnit, path)
	defer func() {
		detail := "ok"
		switch {
		case fr.Err != nil:
			detail = "fatal"
		case fr.Cached:
			detail = "cached"
		case fr.Errors > 0:
			detail = strconv.Itoa(fr.Errors) + " errors"
		}
		span.End(detail)
	}()

	sink := w.req.Progress
	stageStart := time.Now()
	emit(sink, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	fs := source.NewFileSetWithBase(w.req.Root)
	fileID, err := fs.Load(path)
	fr.Timings.Set(StageLoad, time.Since(stageStart))
	if err != nil {
		fr.Err = fmt.Errorf("load %s: %w", path, err)
		emit(sink, Event{File: path, Stage: StageLoad, Status: StatusError, Err: fr.Err})
		return fr
	}
	if !w.req.NoWrite {
		fr.OutPath = project.OutputPath(w.req.Root, w.req.OutDir, path, w.req.Emit.Ext())
	}
	key := project.Combine(project.Digest(fs.Get(fileID).Hash), w.constantsKey, w.toolKey)

	if w.req.Cache != nil && !w.req.NoWrite {
		payload, hit, cerr := w.req.Cache.Get(key)
		if cerr != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeUnit, "cache_error", cerr.Error(), span.ID())
		}
		if hit {
			fr.Cached = true
			w.write(&fr, func() ([]byte, error) {
				return diagfmt.EncodeProgram(payload.Program, w.req.Emit)
			})
			if fr.Err == nil {
				emit(sink, Event{File: path, Stage: StageWrite, Status: StatusCached, Elapsed: fr.Timings.Sum(StageLoad, StageWrite)})
			}
			return fr
		}
	}

	stageStart = time.Now()
	emit(sink, Event{File: path, Stage: StageCompile, Status: StatusWorking})
	result, err := driver.CompileLoaded(ctx, fs, fileID, driver.Options{
		Constants:      w.req.Constants,
		MaxDiagnostics: w.req.MaxDiagnostics,
		Timer:          w.req.Timer,
	})
	fr.Timings.Set(StageCompile, time.Since(stageStart))
	fr.Result = result
	if result != nil {
		fr.Errors = result.Errors
	}
	if err != nil {
		fr.Err = err
		emit(sink, Event{File: path, Stage: StageCompile, Status: StatusError, Err: err})
		return fr
	}
	if fr.Errors > 0 {
		emit(sink, Event{File: path, Stage: StageCompile, Status: StatusError, Errors: fr.Errors})
		return fr
	}
	if w.req.NoWrite {
		emit(sink, Event{File: path, Stage: StageCompile, Status: StatusDone, Elapsed: fr.Timings.Sum(StageLoad, StageCompile)})
		return fr
	}

	w.write(&fr, func() ([]byte, error) {
		return diagfmt.EncodeProgram(result.Program, w.req.Emit)
	})
	if fr.Err != nil {
		return fr
	}
	if w.req.Cache != nil {
		perr := w.req.Cache.Put(key, &CachePayload{Source: path, Hash: key, Program: result.Program})
		if perr != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeUnit, "cache_error", perr.Error(), span.ID())
		}
	}
	emit(sink, Event{File: path, Stage: StageWrite, Status: StatusDone, Elapsed: fr.Timings.Sum(StageLoad, StageCompile, StageWrite)})
	return fr
}

func (w worker) write(fr *FileResult, encode func() ([]byte, error)) {
	stageStart := time.Now()
	defer func() { fr.Timings.Set(StageWrite, time.Since(stageStart)) }()

	data, err := encode()
	if err == nil {
		err = os.MkdirAll(filepath.Dir(fr.OutPath), 0o755)
	}
	if err == nil {
		err = os.WriteFile(fr.OutPath, data, 0o600)
	}
	if err != nil {
		fr.Err = fmt.Errorf("write %s: %w", fr.OutPath, err)
		emit(w.req.Progress, Event{File: fr.Path, Stage: StageWrite, Status: StatusError, Err: fr.Err})
	}
}
