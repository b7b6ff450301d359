package domain

import "context"

// SheetView is the read-only view of a fully resolved sample sheet handed to
// validation rules. Rules must never mutate the rows they see.
type SheetView interface {
	// Rows returns every resolved row in sheet order.
	Rows() []SampleRow
	// Lanes returns the occupied lane numbers in ascending order.
	Lanes() []int
	// LaneRows returns the rows of one lane in sheet order.
	LaneRows(lane int) []SampleRow
}

// Rule evaluates one validation policy over a resolved sheet.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view SheetView) (Result, error)
}

// RulesEngine orchestrates rule evaluation over a sheet.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Rules returns the registered rules in registration order.
func (e *RulesEngine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate executes all registered rules and aggregates their results. Every
// occupied lane starts at the default mismatch tolerance; rules may only
// tighten it.
func (e *RulesEngine) Evaluate(ctx context.Context, view SheetView) (Result, error) {
	combined := Result{LaneMismatches: make(map[int]int)}
	for _, lane := range view.Lanes() {
		combined.LaneMismatches[lane] = DefaultBarcodeMismatches
	}
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}
