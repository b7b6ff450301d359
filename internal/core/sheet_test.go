package core

import (
	"strings"
	"testing"

	"sheetcore/internal/table"
)

func sheetTable(t *testing.T, columns []string, rows ...[]string) *table.Table {
	t.Helper()
	tbl := table.New(columns)
	for _, row := range rows {
		if err := tbl.Append(row); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return tbl
}

func TestCheckRequiredColumnsNamesAllMissing(t *testing.T) {
	tbl := sheetTable(t, []string{ColLane, ColSampleID, ColProjectID})
	err := CheckRequiredColumns(tbl)
	inputErr := assertInputError(t, err, ErrCodeMissingColumns)
	for _, want := range []string{ColI7, ColI5, ColI7ID, ColI5ID} {
		if !strings.Contains(inputErr.Message, want) {
			t.Fatalf("missing column %s not named in %s", want, inputErr.Message)
		}
	}
}

func TestExpandSheetMultiLane(t *testing.T) {
	tbl := sheetTable(t,
		[]string{ColLane, ColSampleID, ColProjectID, ColI7, ColI5, ColI7ID, ColI5ID},
		[]string{"1,2, 4", " S1 ", " P1 ", " ac gt ", "nan", " D701 ", "nan"},
	)
	rows, err := ExpandSheet(tbl)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, lane := range []int{1, 2, 4} {
		row := rows[i]
		if row.Lane != lane {
			t.Fatalf("row %d lane = %d, want %d", i, row.Lane, lane)
		}
		if row.SampleID != "S1" || row.ProjectID != "P1" {
			t.Fatalf("row %d fields not trimmed: %+v", i, row)
		}
		if row.I7Seq != "ACGT" || row.I5Seq != "" {
			t.Fatalf("row %d sequences not normalized: %+v", i, row)
		}
		if row.I7ID != "D701" || row.I5ID != "" {
			t.Fatalf("row %d IDs not normalized: %+v", i, row)
		}
	}
}

func TestExpandSheetLibraryTypePassthrough(t *testing.T) {
	tbl := sheetTable(t,
		[]string{ColLane, ColSampleID, ColProjectID, ColI7, ColI5, ColI7ID, ColI5ID, ColLibraryType},
		[]string{"3", "S1", "P1", "ACGT", "TTGG", "", "", " 10x GEX "},
	)
	rows, err := ExpandSheet(tbl)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if rows[0].LibraryType != "10x GEX" {
		t.Fatalf("library type not carried: %+v", rows[0])
	}
}

func TestParseLaneCell(t *testing.T) {
	cases := []struct {
		cell string
		code string // "" means success
	}{
		{"1", ""},
		{"1,2 3", ""},
		{"8", ""},
		{"", ErrCodeLaneEmpty},
		{"nan", ErrCodeLaneEmpty},
		{"0", ErrCodeLaneFormatInvalid},
		{"9", ErrCodeLaneFormatInvalid},
		{"1,", ErrCodeLaneFormatInvalid},
		{"1;2", ErrCodeLaneFormatInvalid},
		{"lane 1", ErrCodeLaneFormatInvalid},
		{"1,1,2", ErrCodeLaneDuplicateInCell},
	}
	for _, c := range cases {
		lanes, err := parseLaneCell(0, c.cell)
		if c.code == "" {
			if err != nil {
				t.Fatalf("parseLaneCell(%q): %v", c.cell, err)
			}
			if len(lanes) == 0 {
				t.Fatalf("parseLaneCell(%q): no lanes", c.cell)
			}
			continue
		}
		assertInputError(t, err, c.code)
	}
}

func TestParseLaneCellReportsOneBasedRow(t *testing.T) {
	_, err := parseLaneCell(4, "")
	inputErr := assertInputError(t, err, ErrCodeLaneEmpty)
	if !strings.Contains(inputErr.Message, "row 5") {
		t.Fatalf("expected one-based row in %s", inputErr.Message)
	}
}

func TestParseLaneCellTextualOrder(t *testing.T) {
	lanes, err := parseLaneCell(0, "4 1,2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(lanes) != 3 || lanes[0] != 4 || lanes[1] != 1 || lanes[2] != 2 {
		t.Fatalf("expected textual order [4 1 2], got %v", lanes)
	}
}
