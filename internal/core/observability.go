package core

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"sheetcore/pkg/domain"
)

// MetricsRecorder observes pipeline phase timings and run outcomes. Safe for
// concurrent use.
type MetricsRecorder interface {
	ObservePhase(phase string, d time.Duration)
	CountProblems(sev domain.Severity, n int)
	CountRun(ok bool)
}

// Pipeline phase labels.
const (
	PhaseExpand   = "expand"
	PhaseResolve  = "resolve"
	PhaseValidate = "validate"
)

// NopMetricsRecorder discards all observations.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) ObservePhase(string, time.Duration) {}
func (NopMetricsRecorder) CountProblems(domain.Severity, int) {}
func (NopMetricsRecorder) CountRun(bool)                      {}

var expvarSeq uint64

// ExpvarMetricsRecorder publishes aggregate phase timings and problem counts
// via expvar, for deployments that prefer process-local metrics without
// external dependencies. Durations accumulate in milliseconds per phase.
type ExpvarMetricsRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	problems  map[domain.Severity]int64
	runs      map[string]int64
}

// ExpvarMetricsSnapshot captures a read-only view of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	DurationsMS map[string]float64        `json:"durations_ms_total"`
	Problems    map[domain.Severity]int64 `json:"problems_total"`
	Runs        map[string]int64          `json:"runs_total"`
	RecordedAt  time.Time                 `json:"recorded_at"`
}

// NewExpvarMetricsRecorder constructs an expvar-backed recorder published
// under the supplied name. When name is empty, a unique one is generated.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("sheetcore_metrics_%d", id)
	}
	rec := &ExpvarMetricsRecorder{
		name:      name,
		durations: make(map[string]float64),
		problems:  make(map[domain.Severity]int64),
		runs:      make(map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

func (r *ExpvarMetricsRecorder) ObservePhase(phase string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations[phase] += float64(d) / float64(time.Millisecond)
}

func (r *ExpvarMetricsRecorder) CountProblems(sev domain.Severity, n int) {
	if n == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.problems[sev] += int64(n)
}

func (r *ExpvarMetricsRecorder) CountRun(ok bool) {
	outcome := "error"
	if ok {
		outcome = "success"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[outcome]++
}

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := ExpvarMetricsSnapshot{
		DurationsMS: make(map[string]float64, len(r.durations)),
		Problems:    make(map[domain.Severity]int64, len(r.problems)),
		Runs:        make(map[string]int64, len(r.runs)),
		RecordedAt:  time.Now().UTC(),
	}
	for k, v := range r.durations {
		snap.DurationsMS[k] = v
	}
	for k, v := range r.problems {
		snap.Problems[k] = v
	}
	for k, v := range r.runs {
		snap.Runs[k] = v
	}
	return snap
}
