package core

import (
	"regexp"
	"strconv"
	"strings"

	"sheetcore/internal/table"
	"sheetcore/pkg/domain"
)

// Canonical sample sheet column names. Inputs must use them verbatim; there
// is no renaming or guessing.
const (
	ColLane        = "lane"
	ColSampleID    = "sample_id"
	ColProjectID   = "project_id"
	ColI7          = "i7"
	ColI5          = "i5"
	ColI7ID        = "i7_id"
	ColI5ID        = "i5_id"
	ColLibraryType = "library_type"
	ColMismatches  = "barcode_mismatches"
)

// RequiredColumns lists the columns every input sheet must expose.
var RequiredColumns = []string{ColLane, ColSampleID, ColProjectID, ColI7, ColI5, ColI7ID, ColI5ID}

// laneCellPattern accepts digits 1-8 separated by commas and/or whitespace,
// no leading or trailing separators. Duplicates are checked separately.
var laneCellPattern = regexp.MustCompile(`^[1-8](?:[,\s]+[1-8])*$`)

var laneSplitPattern = regexp.MustCompile(`[,\s]+`)

// CheckRequiredColumns fails fast when any required sheet column is absent,
// naming every missing column.
func CheckRequiredColumns(tbl *table.Table) error {
	var missing []string
	for _, c := range RequiredColumns {
		if !tbl.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return inputErrorf(ErrCodeMissingColumns, "sample sheet",
			"missing required columns: %s (found: %s)",
			enumerate(missing), strings.Join(tbl.Columns(), ", "))
	}
	return nil
}

// ExpandSheet verifies the schema and expands multi-lane cells into one
// SampleRow per lane. Text fields are trimmed, index IDs normalized with
// blanks kept as "", and sequences canonicalized.
func ExpandSheet(tbl *table.Table) ([]domain.SampleRow, error) {
	if err := CheckRequiredColumns(tbl); err != nil {
		return nil, err
	}

	var rows []domain.SampleRow
	for i := 0; i < tbl.Len(); i++ {
		lanes, err := parseLaneCell(i, tbl.Cell(i, ColLane))
		if err != nil {
			return nil, err
		}
		base := domain.SampleRow{
			SampleID:  strings.TrimSpace(tbl.Cell(i, ColSampleID)),
			ProjectID: strings.TrimSpace(tbl.Cell(i, ColProjectID)),
			I7ID:      NormalizeID(tbl.Cell(i, ColI7ID)),
			I5ID:      NormalizeID(tbl.Cell(i, ColI5ID)),
			I7Seq:     NormalizeSeq(tbl.Cell(i, ColI7)),
			I5Seq:     NormalizeSeq(tbl.Cell(i, ColI5)),
		}
		if tbl.HasColumn(ColLibraryType) {
			base.LibraryType = strings.TrimSpace(tbl.Cell(i, ColLibraryType))
		}
		for _, lane := range lanes {
			row := base
			row.Lane = lane
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// parseLaneCell validates one lane cell and returns its lane numbers in
// textual order. row is the zero-based sheet row, reported one-based.
func parseLaneCell(row int, cell string) ([]int, error) {
	v := strings.TrimSpace(cell)
	if v == "" || strings.EqualFold(v, "nan") {
		return nil, inputErrorf(ErrCodeLaneEmpty, "sample sheet",
			"lane is empty at row %d", row+1)
	}
	if !laneCellPattern.MatchString(v) {
		return nil, inputErrorf(ErrCodeLaneFormatInvalid, "sample sheet",
			"invalid lane cell %q at row %d: expected digits 1-8 separated by commas or spaces", v, row+1)
	}
	parts := laneSplitPattern.Split(v, -1)
	lanes := make([]int, 0, len(parts))
	seen := make(map[int]struct{}, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			// unreachable after the pattern match, kept for safety
			return nil, inputErrorf(ErrCodeLaneFormatInvalid, "sample sheet",
				"invalid lane number %q at row %d", p, row+1)
		}
		if _, dup := seen[n]; dup {
			return nil, inputErrorf(ErrCodeLaneDuplicateInCell, "sample sheet",
				"duplicate lane number %d within lane cell %q at row %d", n, v, row+1)
		}
		seen[n] = struct{}{}
		lanes = append(lanes, n)
	}
	return lanes, nil
}
