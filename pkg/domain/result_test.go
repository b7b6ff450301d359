package domain

import (
	"context"
	"testing"
)

func TestResultMergeAndErrors(t *testing.T) {
	var result Result
	result.Merge(Result{Problems: []Problem{{Severity: SeverityWarn, Code: "w"}}})
	if result.HasErrors() {
		t.Fatalf("expected no errors after warn merge")
	}
	result.Merge(Result{Problems: []Problem{{Severity: SeverityError, Code: "e"}}})
	if !result.HasErrors() {
		t.Fatalf("expected errors after error merge")
	}
	if got := result.Count(SeverityWarn); got != 1 {
		t.Fatalf("expected 1 warn, got %d", got)
	}
}

func TestResultMergeEmptyInput(t *testing.T) {
	original := Result{Problems: []Problem{{Severity: SeverityWarn, Code: "existing"}}}
	original.Merge(Result{})
	if len(original.Problems) != 1 || original.Problems[0].Code != "existing" {
		t.Fatalf("expected original problems to remain, got %+v", original.Problems)
	}
}

func TestResultTightenLaneOnlyLowers(t *testing.T) {
	var result Result
	result.TightenLane(1, DefaultBarcodeMismatches)
	result.TightenLane(1, 0)
	result.TightenLane(1, DefaultBarcodeMismatches)
	if got := result.LaneMismatches[1]; got != 0 {
		t.Fatalf("expected lane 1 tolerance 0, got %d", got)
	}

	other := Result{LaneMismatches: map[int]int{1: 1, 2: 0}}
	result.Merge(other)
	if got := result.LaneMismatches[1]; got != 0 {
		t.Fatalf("merge raised lane 1 tolerance to %d", got)
	}
	if got := result.LaneMismatches[2]; got != 0 {
		t.Fatalf("expected lane 2 tolerance 0, got %d", got)
	}
}

func TestSortProblemsDeterministic(t *testing.T) {
	problems := []Problem{
		{Severity: SeverityWarn, Code: "B", Lane: 2},
		{Severity: SeverityError, Code: "Z", Lane: 3, SampleID: "s2"},
		{Severity: SeverityError, Code: "Z", Lane: 3, SampleID: "s1"},
		{Severity: SeverityError, Code: "A", Lane: 1},
		{Severity: SeverityInfo, Code: "A", Lane: 1},
	}
	SortProblems(problems)
	want := []struct {
		sev  Severity
		code string
		sid  string
	}{
		{SeverityError, "A", ""},
		{SeverityError, "Z", "s1"},
		{SeverityError, "Z", "s2"},
		{SeverityWarn, "B", ""},
		{SeverityInfo, "A", ""},
	}
	for i, w := range want {
		if problems[i].Severity != w.sev || problems[i].Code != w.code || problems[i].SampleID != w.sid {
			t.Fatalf("position %d: got %+v, want %+v", i, problems[i], w)
		}
	}
}

func TestSortRowsByLaneThenProject(t *testing.T) {
	rows := []SampleRow{
		{Lane: 2, ProjectID: "P1", SampleID: "c"},
		{Lane: 1, ProjectID: "P2", SampleID: "b"},
		{Lane: 1, ProjectID: "P1", SampleID: "a"},
	}
	SortRows(rows)
	if rows[0].SampleID != "a" || rows[1].SampleID != "b" || rows[2].SampleID != "c" {
		t.Fatalf("unexpected order: %+v", rows)
	}
}

type staticRule struct{ name string }

func (r staticRule) Name() string { return r.name }

func (r staticRule) Evaluate(_ context.Context, _ SheetView) (Result, error) {
	return Result{Problems: []Problem{{Severity: SeverityWarn, Code: r.name}}}, nil
}

type stubView struct{ rows []SampleRow }

func (v stubView) Rows() []SampleRow { return v.rows }

func (v stubView) Lanes() []int {
	seen := map[int]bool{}
	var lanes []int
	for _, r := range v.rows {
		if !seen[r.Lane] {
			seen[r.Lane] = true
			lanes = append(lanes, r.Lane)
		}
	}
	return lanes
}

func (v stubView) LaneRows(lane int) []SampleRow {
	var out []SampleRow
	for _, r := range v.rows {
		if r.Lane == lane {
			out = append(out, r)
		}
	}
	return out
}

func TestRulesEngineSeedsDefaultTolerance(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(staticRule{"policy"})
	view := stubView{rows: []SampleRow{{Lane: 2, SampleID: "s"}}}
	res, err := engine.Evaluate(context.Background(), view)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Problems) != 1 || res.Problems[0].Code != "policy" {
		t.Fatalf("expected policy problem, got %+v", res.Problems)
	}
	if got := res.LaneMismatches[2]; got != DefaultBarcodeMismatches {
		t.Fatalf("expected default tolerance for lane 2, got %d", got)
	}
}
