package buildpipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"epscript/internal/codegen"
	"epscript/internal/diagfmt"
	"epscript/internal/registry"
	"epscript/internal/trace"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *recordingSink) count(status Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.File != "" && e.Status == status {
			n++
		}
	}
	return n
}

func writeSources(t *testing.T, root string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for name, body := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestBuildWritesArtifacts(t *testing.T) {
	root := t.TempDir()
	files := writeSources(t, root, map[string]string{
		"a.eps":     "var x = 1 + 2;",
		"sub/b.eps": "function f(a) { return a; } f(1);",
		"c.eps":     "var y = UNKNOWN;",
	})
	sink := &recordingSink{}
	res, err := Build(context.Background(), &BuildRequest{
		Files:    files,
		Root:     root,
		OutDir:   filepath.Join(root, "build"),
		Jobs:     2,
		Progress: sink,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed != 1 || res.Errors != 1 || len(res.Files) != 3 {
		t.Fatalf("failed=%d errors=%d files=%d", res.Failed, res.Errors, len(res.Files))
	}
	if !errors.Is(res.Err(), ErrBuildFailed) {
		t.Fatalf("Err() = %v", res.Err())
	}

	data, err := os.ReadFile(filepath.Join(root, "build", "a.eps.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "PUSH 3") {
		t.Fatalf("unexpected artifact:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(root, "build", "sub", "b.eps.txt")); err != nil {
		t.Fatalf("nested artifact missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "build", "c.eps.txt")); !os.IsNotExist(err) {
		t.Fatalf("failed file must not produce an artifact: %v", err)
	}
	if sink.count(StatusQueued) != 3 || sink.count(StatusDone) != 2 || sink.count(StatusError) != 1 {
		t.Fatalf("unexpected events: %+v", sink.events)
	}
}

func TestBuildCache(t *testing.T) {
	root := t.TempDir()
	files := writeSources(t, root, map[string]string{"main.eps": "var x = FOO;"})
	cache, err := OpenDiskCache(filepath.Join(root, ".cache"))
	if err != nil {
		t.Fatal(err)
	}
	reg := registry.New()
	if err := reg.RegisterStrings("FOO"); err != nil {
		t.Fatal(err)
	}
	req := &BuildRequest{
		Files:     files,
		Root:      root,
		OutDir:    filepath.Join(root, "out"),
		Emit:      diagfmt.EmitMsgpack,
		Constants: reg.Snapshot(),
		Cache:     cache,
	}

	first, err := Build(context.Background(), req)
	if err != nil || first.Failed != 0 || first.Cached != 0 {
		t.Fatalf("first build: %+v, %v", first, err)
	}
	second, err := Build(context.Background(), req)
	if err != nil || second.Cached != 1 || second.Files[0].Result != nil {
		t.Fatalf("second build should hit the cache: %+v, %v", second, err)
	}

	data, err := os.ReadFile(filepath.Join(root, "out", "main.epc"))
	if err != nil {
		t.Fatal(err)
	}
	prog, err := codegen.DecodeMsgpack(data)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prog.Text(), "LOADC FOO") {
		t.Fatalf("unexpected program:\n%s", prog.Text())
	}

	// другой набор констант - другой ключ
	if err := reg.RegisterStrings("BAR"); err != nil {
		t.Fatal(err)
	}
	req.Constants = reg.Snapshot()
	third, err := Build(context.Background(), req)
	if err != nil || third.Cached != 0 {
		t.Fatalf("constants change must miss the cache: %+v, %v", third, err)
	}
}

func TestBuildNoWrite(t *testing.T) {
	root := t.TempDir()
	files := writeSources(t, root, map[string]string{"a.eps": "var x;"})
	res, err := Build(context.Background(), &BuildRequest{Files: files, Root: root, NoWrite: true})
	if err != nil || res.Failed != 0 || res.Files[0].OutPath != "" || res.Files[0].Result == nil {
		t.Fatalf("unexpected result: %+v, %v", res, err)
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 1 {
		t.Fatalf("NoWrite must not create files, got %d entries", len(entries))
	}
}

func TestBuildMissingFileAndFatal(t *testing.T) {
	root := t.TempDir()
	bad := filepath.Join(root, "bad.eps")
	if err := os.WriteFile(bad, []byte{'v', 'a', 'r', ' ', 0xff, ';'}, 0o600); err != nil {
		t.Fatal(err)
	}
	res, err := Build(context.Background(), &BuildRequest{
		Files:  []string{filepath.Join(root, "missing.eps"), bad},
		Root:   root,
		OutDir: filepath.Join(root, "out"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed != 2 || res.Files[0].Err == nil || res.Files[1].Err == nil {
		t.Fatalf("both files should fail: %+v", res.Files)
	}
}

func TestBuildCancelled(t *testing.T) {
	root := t.TempDir()
	files := writeSources(t, root, map[string]string{"a.eps": "var x;"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, &BuildRequest{Files: files, Root: root, OutDir: filepath.Join(root, "out")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestBuildTraceSpans(t *testing.T) {
	root := t.TempDir()
	files := writeSources(t, root, map[string]string{"a.eps": "var x;", "b.eps": "var y;"})
	var buf bytes.Buffer
	tracer := trace.NewStreamTracer(&buf, trace.LevelDetail, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tracer)
	if _, err := Build(ctx, &BuildRequest{Files: files, Root: root, NoWrite: true}); err != nil {
		t.Fatal(err)
	}
	if err := tracer.Flush(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "→ build") || strings.Count(out, ".eps") < 4 {
		t.Fatalf("unexpected trace:\n%s", out)
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := [32]byte{1, 2, 3}
	if _, hit, err := cache.Get(key); hit || err != nil {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}
	prog := &codegen.Program{Instrs: []codegen.Instr{{Op: codegen.OpPush, Value: 7}, {Op: codegen.OpPop}}}
	if err := cache.Put(key, &CachePayload{Source: "x.eps", Hash: key, Program: prog}); err != nil {
		t.Fatal(err)
	}
	got, hit, err := cache.Get(key)
	if err != nil || !hit || got.Program.Text() != prog.Text() {
		t.Fatalf("round trip: hit=%v err=%v", hit, err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := cache.Get(key); hit {
		t.Fatal("DropAll must clear entries")
	}
	var nilCache *DiskCache
	if err := nilCache.Put(key, &CachePayload{}); err != nil {
		t.Fatal(err)
	}
}
