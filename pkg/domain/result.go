package domain

// Result aggregates the problems of a run together with the per-lane barcode
// mismatch tolerance decided by validation.
type Result struct {
	Problems []Problem
	// LaneMismatches maps lane number to the allowed barcode mismatch count.
	LaneMismatches map[int]int
}

// Add appends a problem to the result.
func (r *Result) Add(p Problem) {
	r.Problems = append(r.Problems, p)
}

// TightenLane lowers a lane's mismatch tolerance. Tolerances only ever move
// downward; an attempt to raise one is ignored.
func (r *Result) TightenLane(lane, mismatches int) {
	if r.LaneMismatches == nil {
		r.LaneMismatches = make(map[int]int)
	}
	if cur, ok := r.LaneMismatches[lane]; !ok || mismatches < cur {
		r.LaneMismatches[lane] = mismatches
	}
}

// Merge appends problems from another result and folds its lane tolerances in,
// keeping the tighter value per lane.
func (r *Result) Merge(other Result) {
	if len(other.Problems) > 0 {
		r.Problems = append(r.Problems, other.Problems...)
	}
	for lane, mm := range other.LaneMismatches {
		r.TightenLane(lane, mm)
	}
}

// HasErrors returns true if the result contains ERROR-level problems.
func (r Result) HasErrors() bool {
	for _, p := range r.Problems {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of problems at the given severity.
func (r Result) Count(sev Severity) int {
	n := 0
	for _, p := range r.Problems {
		if p.Severity == sev {
			n++
		}
	}
	return n
}
