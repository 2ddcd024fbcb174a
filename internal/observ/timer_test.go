package observ

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	load := tm.Begin("load")
	tm.End(load, "2 units")
	if err := tm.Time("codegen", func() error { return errors.New("boom") }); err == nil {
		t.Fatal("Time dropped the error")
	}
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(r.Phases))
	}
	if r.Phases[0].DurationMS != 1 || r.Phases[0].Note != "2 units" {
		t.Fatalf("load = %+v", r.Phases[0])
	}
	if r.Phases[1].Note != "failed" {
		t.Fatalf("codegen note = %q", r.Phases[1].Note)
	}
	if r.TotalMS != 2 {
		t.Fatalf("total = %v, want 2", r.TotalMS)
	}

	s := tm.Summary()
	for _, want := range []string{"timings:", "load", "// 2 units", "total"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary misses %q:\n%s", want, s)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || len(r.Phases) != 0 {
		t.Fatalf("empty report = %+v", r)
	}
}
