package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"sheetcore/pkg/domain"
)

// NewLaneIndexRule returns the rule enforcing per-lane barcode distinctness
// and deciding each lane's mismatch tolerance.
func NewLaneIndexRule() domain.Rule {
	return laneIndexRule{}
}

type laneIndexRule struct{}

func (laneIndexRule) Name() string { return "lane_index" }

func (laneIndexRule) Evaluate(_ context.Context, view domain.SheetView) (domain.Result, error) {
	var res domain.Result
	for _, lane := range view.Lanes() {
		checkLane(&res, lane, view.LaneRows(lane))
	}
	return res, nil
}

// checkLane runs the index checks for one lane's rows. Distance checks need a
// complete i7 set, so a lane with missing i7 sequences is reported and skipped.
func checkLane(res *domain.Result, lane int, rows []domain.SampleRow) {
	var missing []string
	for _, r := range rows {
		if r.I7Seq == "" {
			missing = append(missing, r.SampleID)
		}
	}
	if len(missing) > 0 {
		res.Add(domain.Problem{
			Severity: domain.SeverityError,
			Code:     domain.CodeI7Missing,
			Message:  fmt.Sprintf("lane %d: missing i7 for samples: %s", lane, strings.Join(missing, ", ")),
			Lane:     lane,
		})
		return
	}

	var singleIdx, dualIdx []int
	for i, r := range rows {
		if r.SingleIndex() {
			singleIdx = append(singleIdx, i)
		} else {
			dualIdx = append(dualIdx, i)
		}
	}

	// Trim to the lane-wide minimum length per side so Hamming distances stay
	// well-defined across barcodes of different native length.
	i7Trim := trimToMin(rowSeqs(rows, func(r domain.SampleRow) string { return r.I7Seq }))
	i5Trim := trimToMin(rowSeqs(rows, func(r domain.SampleRow) string { return r.I5Seq }))

	checkDualPairUniqueness(res, lane, rows, dualIdx, i7Trim, i5Trim)
	checkSingleI7Exclusivity(res, lane, rows, singleIdx, i7Trim)

	switch {
	case len(singleIdx) > 0 && len(dualIdx) > 0:
		decideMixedLane(res, lane, singleIdx, dualIdx, i7Trim)
	case len(dualIdx) > 0:
		decideDualLane(res, lane, dualIdx, i7Trim, i5Trim)
	case len(singleIdx) > 0:
		decideSingleLane(res, lane, i7Trim)
	}
}

func checkDualPairUniqueness(res *domain.Result, lane int, rows []domain.SampleRow, dualIdx []int, i7Trim, i5Trim []string) {
	pairRows := make(map[string][]int)
	for _, i := range dualIdx {
		key := i7Trim[i] + "+" + i5Trim[i]
		pairRows[key] = append(pairRows[key], i)
	}
	for _, key := range sortedKeys(pairRows) {
		idxs := pairRows[key]
		if len(idxs) < 2 {
			continue
		}
		sids := make([]string, 0, len(idxs))
		for _, i := range idxs {
			sids = append(sids, rows[i].SampleID)
		}
		res.Add(domain.Problem{
			Severity: domain.SeverityError,
			Code:     domain.CodeIndexDuplicateInLane,
			Message:  fmt.Sprintf("lane %d: duplicate index pair (after trimming) %s, samples: %s", lane, key, strings.Join(sids, ", ")),
			Lane:     lane,
		})
	}
}

func checkSingleI7Exclusivity(res *domain.Result, lane int, rows []domain.SampleRow, singleIdx []int, i7Trim []string) {
	i7Rows := make(map[string][]int)
	for i := range rows {
		i7Rows[i7Trim[i]] = append(i7Rows[i7Trim[i]], i)
	}
	for _, i := range singleIdx {
		idxs := i7Rows[i7Trim[i]]
		if len(idxs) < 2 {
			continue
		}
		sids := make([]string, 0, len(idxs))
		for _, j := range idxs {
			sids = append(sids, rows[j].SampleID)
		}
		res.Add(domain.Problem{
			Severity: domain.SeverityError,
			Code:     domain.CodeSingleI7DuplicateInLane,
			Message:  fmt.Sprintf("lane %d: single-index i7 (after trimming) %s is also used by other sample(s): %s", lane, i7Trim[i], strings.Join(sids, ", ")),
			Lane:     lane,
		})
	}
}

// decideMixedLane tightens the tolerance when a single-index i7 sits too close
// to any dual-index i7 in the same lane.
func decideMixedLane(res *domain.Result, lane int, singleIdx, dualIdx []int, i7Trim []string) {
	single := pick(i7Trim, singleIdx)
	dual := pick(i7Trim, dualIdx)
	min, ok := minHammingBetween(single, dual)
	if !ok {
		return
	}
	var code string
	switch {
	case min == domain.HammingWarnTighten:
		code = domain.CodeMixedLaneI7TooSimilarHamming1
	case min == domain.HammingWarn:
		code = domain.CodeMixedLaneI7SimilarHamming2
	case min < domain.HammingOKMin:
		code = domain.CodeMixedLaneI7TooSimilar
	default:
		return
	}
	res.TightenLane(lane, 0)
	res.Add(domain.Problem{
		Severity: domain.SeverityWarn,
		Code:     code,
		Message:  fmt.Sprintf("lane %d: lane includes single-index sample(s); min i7 Hamming (single vs dual) is %d, setting barcode mismatches to 0", lane, min),
		Lane:     lane,
	})
}

// decideDualLane tightens the tolerance when the minimum effective pair
// distance max(d_i7, d_i5) over all dual row pairs is below the safe bound.
func decideDualLane(res *domain.Result, lane int, dualIdx []int, i7Trim, i5Trim []string) {
	i7 := pick(i7Trim, dualIdx)
	i5 := pick(i5Trim, dualIdx)
	min := -1
	for i := 0; i < len(i7); i++ {
		for j := i + 1; j < len(i7); j++ {
			d7, ok7 := Hamming(i7[i], i7[j])
			d5, ok5 := Hamming(i5[i], i5[j])
			if !ok7 || !ok5 {
				continue
			}
			eff := d7
			if d5 > eff {
				eff = d5
			}
			if min < 0 || eff < min {
				min = eff
			}
		}
	}
	if min < 0 {
		return
	}
	var code string
	switch min {
	case domain.HammingWarnTighten:
		code = domain.CodeDualLanePairTooSimilarHamming1
	case domain.HammingWarn:
		code = domain.CodeDualLanePairSimilarHamming2
	default:
		return
	}
	res.TightenLane(lane, 0)
	res.Add(domain.Problem{
		Severity: domain.SeverityWarn,
		Code:     code,
		Message:  fmt.Sprintf("lane %d: dual-index samples; min effective pair distance max(d_i7,d_i5) is %d, setting barcode mismatches to 0", lane, min),
		Lane:     lane,
	})
}

// decideSingleLane tightens the tolerance when distinct single-index i7
// barcodes are too close to each other.
func decideSingleLane(res *domain.Result, lane int, i7Trim []string) {
	min, ok := minPairwiseHamming(i7Trim)
	if !ok {
		return
	}
	var code string
	switch min {
	case domain.HammingWarnTighten:
		code = domain.CodeSingleLaneI7TooSimilarHamming1
	case domain.HammingWarn:
		code = domain.CodeSingleLaneI7SimilarHamming2
	default:
		return
	}
	res.TightenLane(lane, 0)
	res.Add(domain.Problem{
		Severity: domain.SeverityWarn,
		Code:     code,
		Message:  fmt.Sprintf("lane %d: single-index samples; min i7 Hamming after trimming is %d, setting barcode mismatches to 0", lane, min),
		Lane:     lane,
	})
}

func rowSeqs(rows []domain.SampleRow, get func(domain.SampleRow) string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = get(r)
	}
	return out
}

// trimToMin cuts every non-absent sequence to the minimum non-absent length.
// Absent entries stay absent so row indices keep lining up.
func trimToMin(seqs []string) []string {
	min := -1
	for _, s := range seqs {
		if s == "" {
			continue
		}
		if min < 0 || len(s) < min {
			min = len(s)
		}
	}
	if min < 0 {
		return append([]string(nil), seqs...)
	}
	out := make([]string, len(seqs))
	for i, s := range seqs {
		if s == "" {
			continue
		}
		out[i] = s[:min]
	}
	return out
}

// minPairwiseHamming returns the minimum Hamming distance among distinct
// sequences. ok is false with fewer than two distinct comparable values.
func minPairwiseHamming(seqs []string) (int, bool) {
	uniq := make(map[string]struct{}, len(seqs))
	for _, s := range seqs {
		uniq[s] = struct{}{}
	}
	distinct := make([]string, 0, len(uniq))
	for s := range uniq {
		distinct = append(distinct, s)
	}
	sort.Strings(distinct)
	min := -1
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			d, ok := Hamming(distinct[i], distinct[j])
			if !ok {
				continue
			}
			if min < 0 || d < min {
				min = d
			}
		}
	}
	return min, min >= 0
}

// minHammingBetween returns the minimum Hamming distance between any sequence
// of a and any sequence of b.
func minHammingBetween(a, b []string) (int, bool) {
	min := -1
	for _, x := range a {
		for _, y := range b {
			d, ok := Hamming(x, y)
			if !ok {
				continue
			}
			if min < 0 || d < min {
				min = d
			}
		}
	}
	return min, min >= 0
}

func pick(values []string, idxs []int) []string {
	out := make([]string, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, values[i])
	}
	return out
}
