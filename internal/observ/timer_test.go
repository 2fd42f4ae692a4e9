package observ

import (
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	cur := time.Unix(0, 0)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)

	endLex := tm.Track("lex")
	endLex("12 tokens")
	parse := tm.Begin("parse")
	tm.End(parse, "")
	tm.End(42, "ignored")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].DurationMS != 2 || report.TotalMS != 4 {
		t.Fatalf("unexpected report %+v", report)
	}
	summary := tm.Summary()
	if !strings.Contains(summary, "// 12 tokens") || !strings.Contains(summary, "total") {
		t.Fatalf("unexpected summary:\n%s", summary)
	}
}

func TestNilTimerIsSafe(t *testing.T) {
	var tm *Timer
	tm.Track("x")("")
	if len(tm.Report().Phases) != 0 {
		t.Fatal("nil timer must report nothing")
	}
}
