package core

import (
	"fmt"

	"sheetcore/pkg/domain"
)

// Lookups holds the merged, read-only index lookups for one run. Pair is
// empty when no paired kit table was supplied; an empty map counts as not
// provided.
type Lookups struct {
	I7   domain.Lookup
	I5   domain.Lookup
	Pair domain.PairLookup
}

// ResolveIndexes fills missing i7/i5 sequences from the merged lookups.
// Precedence per row, first applicable rule wins:
//
//  1. both sequences already present: keep as-is, no lookup
//  2. i7_id == i5_id, both present: resolve through the paired kit lookup
//  3. independent i7/i5 resolution; i5 is only attempted when an i5_id exists
//  4. i7 must be resolved by now, i5 may stay absent (single-index sample)
//
// Failures accumulate as ERROR problems; rows keep flowing. The input slice
// is not mutated.
func ResolveIndexes(rows []domain.SampleRow, lookups Lookups) ([]domain.SampleRow, domain.Result) {
	out := make([]domain.SampleRow, len(rows))
	copy(out, rows)
	var res domain.Result

	for i := range out {
		row := &out[i]
		row.I7Seq = NormalizeSeq(row.I7Seq)
		row.I5Seq = NormalizeSeq(row.I5Seq)
		row.I7ID = NormalizeID(row.I7ID)
		row.I5ID = NormalizeID(row.I5ID)

		fail := func(code, format string, args ...any) {
			res.Add(domain.Problem{
				Severity: domain.SeverityError,
				Code:     code,
				Message:  fmt.Sprintf(format, args...),
				Lane:     row.Lane,
				SampleID: row.SampleID,
			})
		}

		if row.I7Seq != "" && row.I5Seq != "" {
			continue
		}

		if row.I7ID != "" && row.I7ID == row.I5ID {
			if len(lookups.Pair) == 0 {
				fail(domain.CodePairTableNotProvided,
					"paired index IDs provided (i7_id == i5_id), but no paired kit table was loaded")
				continue
			}
			pair, ok := lookups.Pair[row.I7ID]
			if !ok {
				fail(domain.CodePairIDNotFound,
					"pair ID %q not found in paired kit table", row.I7ID)
				continue
			}
			row.I7Seq = NormalizeSeq(pair.I7)
			row.I5Seq = NormalizeSeq(pair.I5)
			continue
		}

		if row.I7Seq == "" {
			switch {
			case row.I7ID == "":
				fail(domain.CodeI7IDEmpty, "missing i7 sequence and i7_id is empty")
			default:
				if seq, ok := lookups.I7[row.I7ID]; ok {
					row.I7Seq = NormalizeSeq(seq)
				} else {
					fail(domain.CodeI7IDNotFound, "i7_id %q not found in i7 kit table", row.I7ID)
				}
			}
		}
		// An absent i5_id with an absent i5 sequence is a valid single-index
		// sample; an unresolvable i5_id is reported but does not fail the row.
		if row.I5Seq == "" && row.I5ID != "" {
			if seq, ok := lookups.I5[row.I5ID]; ok {
				row.I5Seq = NormalizeSeq(seq)
			} else {
				fail(domain.CodeI5IDNotFound, "i5_id %q not found in i5 kit table", row.I5ID)
			}
		}

		if row.I7Seq == "" {
			fail(domain.CodeI7NotResolved, "could not resolve required i7 sequence")
		}
	}
	return out, res
}
