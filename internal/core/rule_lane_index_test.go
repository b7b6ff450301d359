package core

import (
	"strings"
	"testing"

	"sheetcore/pkg/domain"
)

func TestLaneIndexRuleMissingI7SkipsLane(t *testing.T) {
	rows := []domain.SampleRow{
		{Lane: 1, SampleID: "S1"},
		{Lane: 1, SampleID: "S2", I7Seq: "AAAA", I5Seq: "CCCC"},
		{Lane: 1, SampleID: "S3", I7Seq: "AAAA", I5Seq: "CCCC"},
	}
	res := evaluateRule(t, NewLaneIndexRule(), rows)
	got := byCode(res, domain.CodeI7Missing)
	if len(got) != 1 {
		t.Fatalf("expected one I7_MISSING problem, got %+v", res.Problems)
	}
	if !strings.Contains(got[0].Message, "S1") {
		t.Fatalf("missing sample not named: %s", got[0].Message)
	}
	// Distance and duplicate checks are skipped for an incomplete lane.
	if len(res.Problems) != 1 {
		t.Fatalf("incomplete lane must produce only I7_MISSING: %+v", res.Problems)
	}
}

func TestLaneIndexRuleDualDistanceOneTightens(t *testing.T) {
	rows := []domain.SampleRow{
		{Lane: 3, SampleID: "S1", I7Seq: "AAAAAAAA", I5Seq: "CCCCCCCC"},
		{Lane: 3, SampleID: "S2", I7Seq: "AAAAAAAT", I5Seq: "CCCCCCCC"},
	}
	res := evaluateRule(t, NewLaneIndexRule(), rows)
	got := byCode(res, domain.CodeDualLanePairTooSimilarHamming1)
	if len(got) != 1 || got[0].Severity != domain.SeverityWarn {
		t.Fatalf("expected one HAMMING_1 warn, got %+v", res.Problems)
	}
	if mm, ok := res.LaneMismatches[3]; !ok || mm != 0 {
		t.Fatalf("lane 3 tolerance must tighten to 0, got %v (present=%v)", mm, ok)
	}
}

func TestLaneIndexRuleDualDistanceTwoWarns(t *testing.T) {
	rows := []domain.SampleRow{
		{Lane: 1, SampleID: "S1", I7Seq: "AAAAAAAA", I5Seq: "CCCCCCCC"},
		{Lane: 1, SampleID: "S2", I7Seq: "AAAAAATT", I5Seq: "CCCCCCCC"},
	}
	res := evaluateRule(t, NewLaneIndexRule(), rows)
	if got := byCode(res, domain.CodeDualLanePairSimilarHamming2); len(got) != 1 {
		t.Fatalf("expected HAMMING_2 warn, got %+v", res.Problems)
	}
	if mm := res.LaneMismatches[1]; mm != 0 {
		t.Fatalf("expected tightened tolerance, got %d", mm)
	}
}

func TestLaneIndexRuleDualDistanceSafe(t *testing.T) {
	rows := []domain.SampleRow{
		{Lane: 1, SampleID: "S1", I7Seq: "AAAAAAAA", I5Seq: "CCCCCCCC"},
		{Lane: 1, SampleID: "S2", I7Seq: "TTTTAAAA", I5Seq: "GGGCCCCC"},
	}
	res := evaluateRule(t, NewLaneIndexRule(), rows)
	if len(res.Problems) != 0 {
		t.Fatalf("effective distance 4 must be silent, got %+v", res.Problems)
	}
	if len(res.LaneMismatches) != 0 {
		t.Fatalf("no tightening expected, got %v", res.LaneMismatches)
	}
}

func TestLaneIndexRuleEffectiveDistanceIsMax(t *testing.T) {
	// d_i7 = 1 but d_i5 = 4, so the effective pair distance is safe.
	rows := []domain.SampleRow{
		{Lane: 1, SampleID: "S1", I7Seq: "AAAAAAAA", I5Seq: "CCCCCCCC"},
		{Lane: 1, SampleID: "S2", I7Seq: "AAAAAAAT", I5Seq: "GGGGCCCC"},
	}
	res := evaluateRule(t, NewLaneIndexRule(), rows)
	if len(res.Problems) != 0 {
		t.Fatalf("max(d_i7,d_i5)=4 must be silent, got %+v", res.Problems)
	}
}

func TestLaneIndexRuleDualPairDuplicateAfterTrimming(t *testing.T) {
	rows := []domain.SampleRow{
		{Lane: 2, SampleID: "S1", I7Seq: "AAAAG", I5Seq: "CCCC"},
		{Lane: 2, SampleID: "S2", I7Seq: "AAAA", I5Seq: "CCCCT"},
	}
	res := evaluateRule(t, NewLaneIndexRule(), rows)
	got := byCode(res, domain.CodeIndexDuplicateInLane)
	if len(got) != 1 {
		t.Fatalf("expected one duplicate-pair problem, got %+v", res.Problems)
	}
	if !strings.Contains(got[0].Message, "S1") || !strings.Contains(got[0].Message, "S2") {
		t.Fatalf("both samples must be named: %s", got[0].Message)
	}
}

func TestLaneIndexRuleSingleI7Exclusivity(t *testing.T) {
	rows := []domain.SampleRow{
		{Lane: 1, SampleID: "single", I7Seq: "AAAA"},
		{Lane: 1, SampleID: "dual", I7Seq: "AAAAG", I5Seq: "CCCC"},
	}
	res := evaluateRule(t, NewLaneIndexRule(), rows)
	got := byCode(res, domain.CodeSingleI7DuplicateInLane)
	if len(got) != 1 {
		t.Fatalf("expected one exclusivity problem, got %+v", res.Problems)
	}
	if !strings.Contains(got[0].Message, "single") || !strings.Contains(got[0].Message, "dual") {
		t.Fatalf("both sharers must be named: %s", got[0].Message)
	}
	// Trimmed distance 0: the mixed-lane decision also fires.
	if len(byCode(res, domain.CodeMixedLaneI7TooSimilar)) != 1 {
		t.Fatalf("expected mixed-lane warn at distance 0, got %+v", res.Problems)
	}
	if mm := res.LaneMismatches[1]; mm != 0 {
		t.Fatalf("expected tightened tolerance, got %d", mm)
	}
}

func TestLaneIndexRuleMixedLaneDistanceTwo(t *testing.T) {
	rows := []domain.SampleRow{
		{Lane: 5, SampleID: "single", I7Seq: "AAAAAAAA"},
		{Lane: 5, SampleID: "dual", I7Seq: "AAAAAATT", I5Seq: "CCCCCCCC"},
	}
	res := evaluateRule(t, NewLaneIndexRule(), rows)
	got := byCode(res, domain.CodeMixedLaneI7SimilarHamming2)
	if len(got) != 1 || got[0].Lane != 5 {
		t.Fatalf("expected mixed-lane HAMMING_2 warn, got %+v", res.Problems)
	}
	if mm := res.LaneMismatches[5]; mm != 0 {
		t.Fatalf("expected tightened tolerance, got %d", mm)
	}
}

func TestLaneIndexRuleSingleOnlyLane(t *testing.T) {
	rows := []domain.SampleRow{
		{Lane: 1, SampleID: "S1", I7Seq: "AAAAAAAA"},
		{Lane: 1, SampleID: "S2", I7Seq: "AAAAAAAT"},
	}
	res := evaluateRule(t, NewLaneIndexRule(), rows)
	if got := byCode(res, domain.CodeSingleLaneI7TooSimilarHamming1); len(got) != 1 {
		t.Fatalf("expected single-lane HAMMING_1 warn, got %+v", res.Problems)
	}
	if mm := res.LaneMismatches[1]; mm != 0 {
		t.Fatalf("expected tightened tolerance, got %d", mm)
	}
}

func TestTrimToMinKeepsAbsent(t *testing.T) {
	out := trimToMin([]string{"AAAAG", "", "TTTT"})
	if out[0] != "AAAA" || out[1] != "" || out[2] != "TTTT" {
		t.Fatalf("unexpected trim result %v", out)
	}
}

func TestMinPairwiseHammingDedupes(t *testing.T) {
	// Identical sequences collapse before comparison; distance is between
	// distinct values only.
	min, ok := minPairwiseHamming([]string{"AAAA", "AAAA", "AATT"})
	if !ok || min != 2 {
		t.Fatalf("got min=%d ok=%v, want 2 true", min, ok)
	}
	if _, ok := minPairwiseHamming([]string{"AAAA", "AAAA"}); ok {
		t.Fatalf("a single distinct value has no pairwise distance")
	}
}
