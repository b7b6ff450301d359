package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"sheetcore/internal/table"
	"sheetcore/pkg/domain"
)

func assertInputError(t *testing.T, err error, code string) *InputError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %T: %v", err, err)
	}
	if inputErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, inputErr.Code, inputErr.Message)
	}
	return inputErr
}

func TestPrepareSingleIndexEntries(t *testing.T) {
	entries, err := PrepareSingleIndexEntries("kit", []domain.IndexEntry{
		{ID: " D701 ", Sequence: " ac gt "},
		{ID: "nan", Sequence: "TTTT"},
		{ID: "", Sequence: "GGGG"},
		{ID: "D702", Sequence: "CCCC"},
	})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected blank-ID rows dropped, got %+v", entries)
	}
	if entries[0].ID != "D701" || entries[0].Sequence != "ACGT" {
		t.Fatalf("entry not normalized: %+v", entries[0])
	}
}

func TestPrepareSingleIndexEntriesMissingSequence(t *testing.T) {
	_, err := PrepareSingleIndexEntries("kit", []domain.IndexEntry{
		{ID: "D701", Sequence: "nan"},
		{ID: "D702", Sequence: "ACGT"},
	})
	inputErr := assertInputError(t, err, ErrCodeMissingSequence)
	if !strings.Contains(inputErr.Message, "D701") {
		t.Fatalf("message must name the offending ID: %s", inputErr.Message)
	}
}

func TestPrepareSingleIndexEntriesDuplicateID(t *testing.T) {
	_, err := PrepareSingleIndexEntries("kit", []domain.IndexEntry{
		{ID: "D701", Sequence: "ACGT"},
		{ID: "D701", Sequence: "TTTT"},
	})
	assertInputError(t, err, ErrCodeDuplicateID)
}

func TestPrepareSingleIndexEntriesDuplicateSequence(t *testing.T) {
	_, err := PrepareSingleIndexEntries("kit", []domain.IndexEntry{
		{ID: "D701", Sequence: "ACGT"},
		{ID: "D702", Sequence: "acgt"},
	})
	assertInputError(t, err, ErrCodeDuplicateSequence)
}

func TestEnumerateTruncatesLongLists(t *testing.T) {
	raw := make([]domain.IndexEntry, 0, 25)
	for i := 0; i < 25; i++ {
		raw = append(raw, domain.IndexEntry{ID: fmt.Sprintf("D7%02d", i), Sequence: ""})
	}
	_, err := PrepareSingleIndexEntries("kit", raw)
	inputErr := assertInputError(t, err, ErrCodeMissingSequence)
	if !strings.HasSuffix(inputErr.Message, "...") {
		t.Fatalf("expected truncation marker, got %s", inputErr.Message)
	}
	if got := strings.Count(inputErr.Message, "D7"); got != enumerationLimit {
		t.Fatalf("expected %d IDs named, got %d", enumerationLimit, got)
	}
}

func TestPreparePairIndexEntries(t *testing.T) {
	entries, err := PreparePairIndexEntries("pairs", []domain.PairIndexEntry{
		{PairID: "SI-GA-A1", I7: "acgtacgt", I5: "TTGGCCAA"},
		{PairID: "SI-GA-A2", I7: "ACGTACGT", I5: "TTGGCCAA"},
	})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("sequences may repeat across pairs: %+v", entries)
	}
	if entries[0].I7 != "ACGTACGT" {
		t.Fatalf("i7 not normalized: %+v", entries[0])
	}

	_, err = PreparePairIndexEntries("pairs", []domain.PairIndexEntry{
		{PairID: "SI-GA-A1", I7: "ACGT", I5: ""},
	})
	assertInputError(t, err, ErrCodeMissingSequence)

	_, err = PreparePairIndexEntries("pairs", []domain.PairIndexEntry{
		{PairID: "SI-GA-A1", I7: "ACGT", I5: "TTGG"},
		{PairID: "SI-GA-A1", I7: "CCCC", I5: "GGGG"},
	})
	assertInputError(t, err, ErrCodeDuplicateID)
}

func TestLoadSingleIndexTable(t *testing.T) {
	tbl := table.New([]string{"index_id", "sequence", "note"})
	if err := tbl.Append([]string{"D701", "ACGT", "x"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, err := LoadSingleIndexTable("kit.csv", tbl, SingleIndexColumns{ID: "index_id", Sequence: "sequence"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "D701" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	_, err = LoadSingleIndexTable("kit.csv", tbl, SingleIndexColumns{ID: "id", Sequence: "seq"})
	inputErr := assertInputError(t, err, ErrCodeMissingColumns)
	if !strings.Contains(inputErr.Message, "id") || !strings.Contains(inputErr.Message, "seq") {
		t.Fatalf("expected both missing columns named: %s", inputErr.Message)
	}
}

func TestMergeSingleLookups(t *testing.T) {
	a := domain.Lookup{"D701": "ACGT", "D702": "TTTT"}
	b := domain.Lookup{"D701": "ACGT", "D703": "GGGG"}
	merged, err := MergeSingleLookups([]domain.Lookup{a, b})
	if err != nil {
		t.Fatalf("identical re-mapping must merge cleanly: %v", err)
	}
	if len(merged) != 3 || merged["D703"] != "GGGG" {
		t.Fatalf("unexpected merge %+v", merged)
	}

	conflict := domain.Lookup{"D701": "CCCC"}
	_, err = MergeSingleLookups([]domain.Lookup{a, conflict})
	inputErr := assertInputError(t, err, ErrCodeIDCollision)
	if !strings.Contains(inputErr.Message, "ACGT") || !strings.Contains(inputErr.Message, "CCCC") {
		t.Fatalf("collision must name both sequences: %s", inputErr.Message)
	}
}

func TestMergePairLookups(t *testing.T) {
	a := domain.PairLookup{"SI-GA-A1": {I7: "ACGT", I5: "TTGG"}}
	b := domain.PairLookup{"SI-GA-A1": {I7: "ACGT", I5: "TTGG"}}
	if _, err := MergePairLookups([]domain.PairLookup{a, b}); err != nil {
		t.Fatalf("identical pair re-mapping must merge cleanly: %v", err)
	}
	c := domain.PairLookup{"SI-GA-A1": {I7: "ACGT", I5: "CCCC"}}
	_, err := MergePairLookups([]domain.PairLookup{a, c})
	assertInputError(t, err, ErrCodeIDCollision)
}
