package core

import (
	"sheetcore/internal/table"
	"sheetcore/pkg/domain"
)

// SingleIndexColumns names the input columns of a single-index kit table.
type SingleIndexColumns struct {
	ID       string
	Sequence string
}

// PairedIndexColumns names the input columns of a paired kit table.
type PairedIndexColumns struct {
	PairID string
	I7     string
	I5     string
}

// PrepareSingleIndexEntries normalizes raw single-index entries and enforces
// table invariants: no retained ID without a sequence, no repeated ID, no
// repeated sequence within one table. Blank-ID rows are dropped silently.
func PrepareSingleIndexEntries(source string, raw []domain.IndexEntry) ([]domain.IndexEntry, error) {
	entries := make([]domain.IndexEntry, 0, len(raw))
	for _, e := range raw {
		id := NormalizeID(e.ID)
		if id == "" {
			continue
		}
		entries = append(entries, domain.IndexEntry{ID: id, Sequence: NormalizeSeq(e.Sequence)})
	}

	var missing []string
	for _, e := range entries {
		if e.Sequence == "" {
			missing = append(missing, e.ID)
		}
	}
	if len(missing) > 0 {
		return nil, inputErrorf(ErrCodeMissingSequence, source,
			"missing sequence for index ID(s): %s", enumerate(missing))
	}

	if dup := duplicated(entries, func(e domain.IndexEntry) string { return e.ID }); len(dup) > 0 {
		return nil, inputErrorf(ErrCodeDuplicateID, source,
			"duplicate index ID(s): %s", enumerate(dup))
	}
	if dup := duplicated(entries, func(e domain.IndexEntry) string { return e.Sequence }); len(dup) > 0 {
		return nil, inputErrorf(ErrCodeDuplicateSequence, source,
			"duplicate index sequence(s): %s", enumerate(dup))
	}
	return entries, nil
}

// PreparePairIndexEntries normalizes raw paired-kit entries and enforces the
// paired-table invariants. Sequences may legitimately repeat across pairs, so
// only pair IDs are checked for duplication.
func PreparePairIndexEntries(source string, raw []domain.PairIndexEntry) ([]domain.PairIndexEntry, error) {
	entries := make([]domain.PairIndexEntry, 0, len(raw))
	for _, e := range raw {
		id := NormalizeID(e.PairID)
		if id == "" {
			continue
		}
		entries = append(entries, domain.PairIndexEntry{
			PairID: id,
			I7:     NormalizeSeq(e.I7),
			I5:     NormalizeSeq(e.I5),
		})
	}

	var missing []string
	for _, e := range entries {
		if e.I7 == "" || e.I5 == "" {
			missing = append(missing, e.PairID)
		}
	}
	if len(missing) > 0 {
		return nil, inputErrorf(ErrCodeMissingSequence, source,
			"missing i7/i5 sequence for pair ID(s): %s", enumerate(missing))
	}

	if dup := duplicated(entries, func(e domain.PairIndexEntry) string { return e.PairID }); len(dup) > 0 {
		return nil, inputErrorf(ErrCodeDuplicateID, source,
			"duplicate pair ID(s): %s", enumerate(dup))
	}
	return entries, nil
}

// LoadSingleIndexTable extracts and validates a single-index kit table using
// the caller-named columns.
func LoadSingleIndexTable(source string, tbl *table.Table, cols SingleIndexColumns) ([]domain.IndexEntry, error) {
	var absent []string
	for _, c := range []string{cols.ID, cols.Sequence} {
		if !tbl.HasColumn(c) {
			absent = append(absent, c)
		}
	}
	if len(absent) > 0 {
		return nil, inputErrorf(ErrCodeMissingColumns, source,
			"index table missing columns: %s", enumerate(absent))
	}
	raw := make([]domain.IndexEntry, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		raw = append(raw, domain.IndexEntry{ID: tbl.Cell(i, cols.ID), Sequence: tbl.Cell(i, cols.Sequence)})
	}
	return PrepareSingleIndexEntries(source, raw)
}

// LoadPairedIndexTable extracts and validates a paired kit table using the
// caller-named columns.
func LoadPairedIndexTable(source string, tbl *table.Table, cols PairedIndexColumns) ([]domain.PairIndexEntry, error) {
	var absent []string
	for _, c := range []string{cols.PairID, cols.I7, cols.I5} {
		if !tbl.HasColumn(c) {
			absent = append(absent, c)
		}
	}
	if len(absent) > 0 {
		return nil, inputErrorf(ErrCodeMissingColumns, source,
			"paired index table missing columns: %s", enumerate(absent))
	}
	raw := make([]domain.PairIndexEntry, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		raw = append(raw, domain.PairIndexEntry{
			PairID: tbl.Cell(i, cols.PairID),
			I7:     tbl.Cell(i, cols.I7),
			I5:     tbl.Cell(i, cols.I5),
		})
	}
	return PreparePairIndexEntries(source, raw)
}

// BuildSingleLookup maps validated entries to an ID -> sequence lookup.
func BuildSingleLookup(entries []domain.IndexEntry) domain.Lookup {
	lk := make(domain.Lookup, len(entries))
	for _, e := range entries {
		lk[e.ID] = e.Sequence
	}
	return lk
}

// BuildPairLookup maps validated entries to a pair ID -> sequence-pair lookup.
func BuildPairLookup(entries []domain.PairIndexEntry) domain.PairLookup {
	lk := make(domain.PairLookup, len(entries))
	for _, e := range entries {
		lk[e.PairID] = domain.SequencePair{I7: e.I7, I5: e.I5}
	}
	return lk
}

// MergeSingleLookups combines per-table lookups into one. A repeated ID must
// map to the identical sequence in every source table.
func MergeSingleLookups(lookups []domain.Lookup) (domain.Lookup, error) {
	merged := make(domain.Lookup)
	for _, lk := range lookups {
		for id, seq := range lk {
			if prev, ok := merged[id]; ok && prev != seq {
				return nil, inputErrorf(ErrCodeIDCollision, "",
					"index ID collision for %q: %q vs %q", id, prev, seq)
			}
			merged[id] = seq
		}
	}
	return merged, nil
}

// MergePairLookups combines per-table pair lookups with the same collision
// semantics as MergeSingleLookups.
func MergePairLookups(lookups []domain.PairLookup) (domain.PairLookup, error) {
	merged := make(domain.PairLookup)
	for _, lk := range lookups {
		for id, pair := range lk {
			if prev, ok := merged[id]; ok && prev != pair {
				return nil, inputErrorf(ErrCodeIDCollision, "",
					"pair ID collision for %q: (%s,%s) vs (%s,%s)", id, prev.I7, prev.I5, pair.I7, pair.I5)
			}
			merged[id] = pair
		}
	}
	return merged, nil
}

// duplicated returns every key value occurring more than once, each named once.
func duplicated[T any](entries []T, key func(T) string) []string {
	counts := make(map[string]int, len(entries))
	for _, e := range entries {
		counts[key(e)]++
	}
	var out []string
	seen := make(map[string]struct{})
	for _, e := range entries {
		k := key(e)
		if counts[k] > 1 {
			if _, done := seen[k]; !done {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	return out
}
