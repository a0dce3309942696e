package pipeline

import (
	"slices"
	"sync"
	"time"
)

// Phase names recorded by the converter.
const (
	PhaseParse  = "parse"
	PhaseRender = "render"
)

type timing struct {
	at time.Time
	ms float64
}

// LatencySnapshot aggregates the timings of one phase.
type LatencySnapshot struct {
	Count int     `json:"count"`
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Latency keeps per-phase conversion timings that are younger than window.
type Latency struct {
	mu     sync.Mutex
	window time.Duration
	phases map[string][]timing
}

func NewLatency(window time.Duration) *Latency {
	if window <= 0 {
		window = time.Hour
	}
	return &Latency{window: window, phases: make(map[string][]timing)}
}

// Observe records one timing for phase. Negative durations count as zero.
func (l *Latency) Observe(phase string, d time.Duration) {
	d = max(d, 0)
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(now)
	l.phases[phase] = append(l.phases[phase], timing{at: now, ms: float64(d) / float64(time.Millisecond)})
}

// Snapshot aggregates every phase that has timings inside the window.
func (l *Latency) Snapshot() map[string]LatencySnapshot {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(now)

	out := make(map[string]LatencySnapshot, len(l.phases))
	for phase, ts := range l.phases {
		values := make([]float64, len(ts))
		var sum float64
		for i, t := range ts {
			values[i] = t.ms
			sum += t.ms
		}
		slices.Sort(values)
		out[phase] = LatencySnapshot{
			Count: len(values),
			MinMs: values[0],
			MaxMs: values[len(values)-1],
			AvgMs: sum / float64(len(values)),
			P50Ms: percentile(values, 50),
			P95Ms: percentile(values, 95),
			P99Ms: percentile(values, 99),
		}
	}
	return out
}

func (l *Latency) pruneLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	for phase, ts := range l.phases {
		kept := ts[:0]
		for _, t := range ts {
			if !t.at.Before(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(l.phases, phase)
			continue
		}
		l.phases[phase] = kept
	}
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := float64(len(sorted)-1) * pct / 100
	lo := int(pos)
	if pct <= 0 {
		return sorted[0]
	}
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}
