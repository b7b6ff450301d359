package core

import (
	"sort"

	"sheetcore/pkg/domain"
)

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewSampleIDRule())
	engine.Register(NewLaneIndexRule())
	return engine
}

// sheetView adapts a resolved row slice to domain.SheetView. Rows are grouped
// by lane once at construction; the view is read-only afterwards.
type sheetView struct {
	rows    []domain.SampleRow
	lanes   []int
	perLane map[int][]domain.SampleRow
}

// NewSheetView builds a read-only lane-grouped view over resolved rows.
func NewSheetView(rows []domain.SampleRow) domain.SheetView {
	v := &sheetView{
		rows:    append([]domain.SampleRow(nil), rows...),
		perLane: make(map[int][]domain.SampleRow),
	}
	for _, r := range v.rows {
		v.perLane[r.Lane] = append(v.perLane[r.Lane], r)
	}
	for lane := range v.perLane {
		v.lanes = append(v.lanes, lane)
	}
	sort.Ints(v.lanes)
	return v
}

func (v *sheetView) Rows() []domain.SampleRow {
	return append([]domain.SampleRow(nil), v.rows...)
}

func (v *sheetView) Lanes() []int {
	return append([]int(nil), v.lanes...)
}

func (v *sheetView) LaneRows(lane int) []domain.SampleRow {
	return append([]domain.SampleRow(nil), v.perLane[lane]...)
}
