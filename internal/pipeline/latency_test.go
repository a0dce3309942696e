package pipeline

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestLatencySnapshotPercentiles(t *testing.T) {
	l := NewLatency(time.Hour)
	for _, ms := range []int{500, 100, 300, 200, 400} {
		l.Observe(PhaseRender, time.Duration(ms)*time.Millisecond)
	}

	got := l.Snapshot()
	want := map[string]LatencySnapshot{
		PhaseRender: {Count: 5, MinMs: 100, MaxMs: 500, AvgMs: 300, P50Ms: 300, P95Ms: 480, P99Ms: 496},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestLatencyPhasesAreSeparate(t *testing.T) {
	l := NewLatency(time.Hour)
	l.Observe(PhaseParse, 10*time.Millisecond)
	l.Observe(PhaseRender, 2*time.Millisecond)
	l.Observe(PhaseRender, 4*time.Millisecond)

	snap := l.Snapshot()
	if snap[PhaseParse].Count != 1 {
		t.Errorf("expected 1 parse timing, got %d", snap[PhaseParse].Count)
	}
	if snap[PhaseRender].Count != 2 || snap[PhaseRender].AvgMs != 3 {
		t.Errorf("unexpected render snapshot: %+v", snap[PhaseRender])
	}
}

func TestLatencyPrunesExpiredTimings(t *testing.T) {
	l := NewLatency(10 * time.Millisecond)
	l.Observe(PhaseParse, 100*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if snap := l.Snapshot(); len(snap) != 0 {
		t.Fatalf("expected empty snapshot after prune, got %v", snap)
	}

	l.Observe(PhaseParse, 200*time.Millisecond)
	snap := l.Snapshot()[PhaseParse]
	if snap.Count != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected one fresh 200ms timing, got %+v", snap)
	}
}

func TestLatencyClampsNegativeDuration(t *testing.T) {
	l := NewLatency(time.Hour)
	l.Observe(PhaseParse, -time.Second)
	snap := l.Snapshot()[PhaseParse]
	if snap.Count != 1 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped zero timing, got %+v", snap)
	}
}

func TestConverterRecordsLatency(t *testing.T) {
	conv := testConverter()
	if _, err := conv.Convert("a.md", []byte("# A")); err != nil {
		t.Fatalf("convert: %v", err)
	}
	snap := conv.Latency().Snapshot()
	for _, phase := range []string{PhaseParse, PhaseRender} {
		if snap[phase].Count != 1 {
			t.Errorf("%s: expected 1 timing, got %d", phase, snap[phase].Count)
		}
	}
}
