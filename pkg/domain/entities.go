// Package domain defines the samplesheet entities shared across the core
// engine, the kit catalogs and the command surface.
package domain

import "sort"

// Severity captures diagnostic outcomes.
type Severity string

// Problem severities determine whether a run may still write its output.
const (
	// SeverityError blocks the output write.
	SeverityError Severity = "ERROR"
	// SeverityWarn is surfaced but allows the write.
	SeverityWarn Severity = "WARN"
	SeverityInfo Severity = "INFO"
)

// Stable problem codes emitted by the resolver.
const (
	CodePairTableNotProvided = "PAIR_TABLE_NOT_PROVIDED"
	CodePairIDNotFound       = "PAIR_ID_NOT_FOUND"
	CodeI7IDEmpty            = "I7_ID_EMPTY"
	CodeI7IDNotFound         = "I7_ID_NOT_FOUND"
	CodeI5IDNotFound         = "I5_ID_NOT_FOUND"
	CodeI7NotResolved        = "I7_NOT_RESOLVED"
)

// Stable problem codes emitted by the lane validator.
const (
	CodeSampleIDInvalid          = "SAMPLE_ID_INVALID"
	CodeSampleIDDuplicateInLane  = "SAMPLE_ID_DUPLICATE_IN_LANE"
	CodeSampleIDProjectCollision = "SAMPLE_ID_PROJECT_COLLISION"
	CodeI7Missing                = "I7_MISSING"
	CodeIndexDuplicateInLane     = "INDEX_DUPLICATE_IN_LANE"
	CodeSingleI7DuplicateInLane  = "SINGLE_I7_DUPLICATE_IN_LANE"

	CodeMixedLaneI7TooSimilarHamming1 = "MIXED_LANE_I7_TOO_SIMILAR_HAMMING_1"
	CodeMixedLaneI7SimilarHamming2    = "MIXED_LANE_I7_SIMILAR_HAMMING_2"
	CodeMixedLaneI7TooSimilar         = "MIXED_LANE_I7_TOO_SIMILAR"

	CodeDualLanePairTooSimilarHamming1 = "DUAL_LANE_PAIR_TOO_SIMILAR_HAMMING_1"
	CodeDualLanePairSimilarHamming2    = "DUAL_LANE_PAIR_SIMILAR_HAMMING_2"

	CodeSingleLaneI7TooSimilarHamming1 = "SINGLE_LANE_I7_TOO_SIMILAR_HAMMING_1"
	CodeSingleLaneI7SimilarHamming2    = "SINGLE_LANE_I7_SIMILAR_HAMMING_2"
)

// DefaultBarcodeMismatches is the tolerance granted to a lane whose barcodes
// are far enough apart. Validation may only tighten it, never raise it.
const DefaultBarcodeMismatches = 1

// Hamming distance thresholds applied per lane after trimming.
const (
	HammingWarnTighten = 1
	HammingWarn        = 2
	HammingOKMin       = 3
)

// Problem reports a finding from resolution or validation. Immutable once
// created; Lane is 0 when the problem is not bound to a lane.
type Problem struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Lane     int      `json:"lane,omitempty"`
	SampleID string   `json:"sample_id,omitempty"`
}

// SampleRow is one sample bound to exactly one lane. The expander creates the
// rows, the resolver fills I7Seq/I5Seq, and validation reads them only.
type SampleRow struct {
	Lane        int    `json:"lane"`
	SampleID    string `json:"sample_id"`
	ProjectID   string `json:"project_id"`
	I7ID        string `json:"i7_id,omitempty"`
	I5ID        string `json:"i5_id,omitempty"`
	I7Seq       string `json:"i7,omitempty"`
	I5Seq       string `json:"i5,omitempty"`
	LibraryType string `json:"library_type,omitempty"`
}

// SingleIndex reports whether the row carries no i5 barcode.
func (r SampleRow) SingleIndex() bool { return r.I5Seq == "" }

// IndexEntry is one row of a single-index kit table.
type IndexEntry struct {
	ID       string `json:"id"`
	Sequence string `json:"sequence"`
}

// PairIndexEntry is one row of a paired kit table where i7 and i5 share an ID.
type PairIndexEntry struct {
	PairID string `json:"pair_id"`
	I7     string `json:"i7"`
	I5     string `json:"i5"`
}

// SequencePair holds the two sequences bound to one paired kit ID.
type SequencePair struct {
	I7 string `json:"i7"`
	I5 string `json:"i5"`
}

// Lookup maps a single-index ID to its sequence. Built once per run by
// merging kit tables, read-only afterwards.
type Lookup map[string]string

// PairLookup maps a paired kit ID to its sequence pair.
type PairLookup map[string]SequencePair

var severityRank = map[Severity]int{SeverityError: 0, SeverityWarn: 1, SeverityInfo: 2}

// SortProblems orders problems deterministically for display: by severity,
// then lane, code and sample ID.
func SortProblems(problems []Problem) {
	sort.SliceStable(problems, func(i, j int) bool {
		a, b := problems[i], problems[j]
		if severityRank[a.Severity] != severityRank[b.Severity] {
			return severityRank[a.Severity] < severityRank[b.Severity]
		}
		if a.Lane != b.Lane {
			return a.Lane < b.Lane
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.SampleID < b.SampleID
	})
}

// SortRows orders resolved rows for serialization: lane ascending, then
// project, then sample ID for a stable sheet.
func SortRows(rows []SampleRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Lane != rows[j].Lane {
			return rows[i].Lane < rows[j].Lane
		}
		if rows[i].ProjectID != rows[j].ProjectID {
			return rows[i].ProjectID < rows[j].ProjectID
		}
		return rows[i].SampleID < rows[j].SampleID
	})
}
