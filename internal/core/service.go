package core

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"sheetcore/internal/blob"
	"sheetcore/internal/table"
	"sheetcore/pkg/domain"
)

// Service runs the manifest preparation pipeline: schema check and lane
// expansion, index resolution against the merged lookups, then lane
// validation. Lookups are built once and read-only for the service lifetime.
type Service struct {
	lookups Lookups
	engine  *domain.RulesEngine
	metrics MetricsRecorder
}

// Option configures a Service.
type Option func(*Service)

// WithRulesEngine replaces the default validation rule set.
func WithRulesEngine(engine *domain.RulesEngine) Option {
	return func(s *Service) { s.engine = engine }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// NewService constructs a service over merged index lookups.
func NewService(lookups Lookups, opts ...Option) *Service {
	s := &Service{
		lookups: lookups,
		engine:  NewDefaultRulesEngine(),
		metrics: NopMetricsRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prepare materializes the input sheet into resolved rows plus the run
// result. Fatal schema or lane-cell defects abort with an error and no
// output; resolution and validation findings accumulate in the result. The
// returned problems are sorted deterministically.
func (s *Service) Prepare(ctx context.Context, tbl *table.Table) ([]domain.SampleRow, domain.Result, error) {
	start := time.Now()
	rows, err := ExpandSheet(tbl)
	s.metrics.ObservePhase(PhaseExpand, time.Since(start))
	if err != nil {
		s.metrics.CountRun(false)
		return nil, domain.Result{}, err
	}

	start = time.Now()
	resolved, result := ResolveIndexes(rows, s.lookups)
	s.metrics.ObservePhase(PhaseResolve, time.Since(start))

	start = time.Now()
	verdict, err := s.engine.Evaluate(ctx, NewSheetView(resolved))
	s.metrics.ObservePhase(PhaseValidate, time.Since(start))
	if err != nil {
		s.metrics.CountRun(false)
		return nil, domain.Result{}, err
	}
	result.Merge(verdict)
	domain.SortProblems(result.Problems)

	for _, sev := range []domain.Severity{domain.SeverityError, domain.SeverityWarn, domain.SeverityInfo} {
		s.metrics.CountProblems(sev, result.Count(sev))
	}
	s.metrics.CountRun(!result.HasErrors())
	return resolved, result, nil
}

// resolvedColumns is the output sheet header.
var resolvedColumns = []string{ColLane, ColSampleID, ColProjectID, ColI7ID, ColI5ID, ColI7, ColI5, ColLibraryType, ColMismatches}

// ResolvedTable renders resolved rows, sorted by lane then project, into the
// output table including each lane's decided mismatch tolerance.
func ResolvedTable(rows []domain.SampleRow, laneMismatches map[int]int) *table.Table {
	sorted := make([]domain.SampleRow, len(rows))
	copy(sorted, rows)
	domain.SortRows(sorted)

	out := table.New(resolvedColumns)
	for _, r := range sorted {
		mm, ok := laneMismatches[r.Lane]
		if !ok {
			mm = domain.DefaultBarcodeMismatches
		}
		// Append only errors on width mismatch, which cannot happen here.
		_ = out.Append([]string{
			strconv.Itoa(r.Lane),
			r.SampleID,
			r.ProjectID,
			r.I7ID,
			r.I5ID,
			r.I7Seq,
			r.I5Seq,
			r.LibraryType,
			strconv.Itoa(mm),
		})
	}
	return out
}

// PublishResolved writes the resolved sheet as CSV to the blob store under
// key, replacing any previous artifact.
func (s *Service) PublishResolved(ctx context.Context, store blob.Store, key string, rows []domain.SampleRow, laneMismatches map[int]int) (blob.Info, error) {
	var buf bytes.Buffer
	if err := table.WriteDelimited(&buf, ResolvedTable(rows, laneMismatches), table.DelimiterFor(key)); err != nil {
		return blob.Info{}, err
	}
	return store.Put(ctx, key, &buf, blob.PutOptions{ContentType: "text/csv"})
}
