package ui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"epscript/internal/buildpipeline"
)

func TestApplyEventTracksFiles(t *testing.T) {
	root := filepath.Join("proj")
	a, b := filepath.Join(root, "a.eps"), filepath.Join(root, "src", "b.eps")
	m := newProgressModel("build", root, []string{a, b}, nil)

	m.applyEvent(buildpipeline.Event{File: a, Stage: buildpipeline.StageCompile, Status: buildpipeline.StatusWorking})
	if m.items[0].status != "compiling" {
		t.Fatalf("status = %q", m.items[0].status)
	}
	m.applyEvent(buildpipeline.Event{File: a, Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusDone})
	m.applyEvent(buildpipeline.Event{File: b, Stage: buildpipeline.StageCompile, Status: buildpipeline.StatusError, Errors: 3})
	if got := m.percent(); got != 1.0 {
		t.Fatalf("percent = %v, want 1", got)
	}
	m.applyEvent(buildpipeline.Event{File: "unknown.eps", Status: buildpipeline.StatusDone})

	view := m.View()
	for _, want := range []string{"a.eps", "src/b.eps", "done", "3 errors"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view misses %q:\n%s", want, view)
		}
	}
}

func TestBuildStageLabel(t *testing.T) {
	m := newProgressModel("build", "", []string{"x.eps"}, nil)
	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageBuild, Status: buildpipeline.StatusWorking})
	if m.stageLabel != "building" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
	m.applyEvent(buildpipeline.Event{File: "x.eps", Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusCached})
	if m.items[0].status != "cached" || m.percent() != 1.0 {
		t.Fatalf("cached item: %+v", m.items[0])
	}
}

func TestDoneMsgQuits(t *testing.T) {
	events := make(chan buildpipeline.Event)
	close(events)
	m := newProgressModel("build", "", []string{"x.eps"}, events)
	if msg := m.listenForEvent()(); msg != (doneMsg{}) {
		t.Fatalf("closed channel should yield doneMsg, got %T", msg)
	}
	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Fatal("doneMsg must mark the model done and quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if !strings.Contains(m.View(), "done: build") {
		t.Fatalf("view:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	got := truncate("日本語のファイル名.eps", 10)
	if runewidth.StringWidth(got) > 10 || !strings.HasSuffix(got, "...") {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}
