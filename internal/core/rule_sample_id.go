package core

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"sheetcore/pkg/domain"
)

// sampleIDPattern is the allowed sample ID charset: letters, digits, dot,
// underscore, hyphen.
var sampleIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// NewSampleIDRule returns the rule enforcing sample ID constraints: charset,
// per-lane uniqueness, and the one-project-per-sample-ID invariant.
func NewSampleIDRule() domain.Rule {
	return sampleIDRule{}
}

type sampleIDRule struct{}

func (sampleIDRule) Name() string { return "sample_id" }

func (sampleIDRule) Evaluate(_ context.Context, view domain.SheetView) (domain.Result, error) {
	var res domain.Result

	for _, row := range view.Rows() {
		if !sampleIDPattern.MatchString(row.SampleID) {
			res.Add(domain.Problem{
				Severity: domain.SeverityError,
				Code:     domain.CodeSampleIDInvalid,
				Message:  fmt.Sprintf("sample ID contains invalid characters, allowed pattern: %s", sampleIDPattern),
				Lane:     row.Lane,
				SampleID: row.SampleID,
			})
		}
	}

	for _, lane := range view.Lanes() {
		counts := make(map[string]int)
		for _, row := range view.LaneRows(lane) {
			counts[row.SampleID]++
		}
		for _, sid := range sortedKeys(counts) {
			if counts[sid] > 1 {
				res.Add(domain.Problem{
					Severity: domain.SeverityError,
					Code:     domain.CodeSampleIDDuplicateInLane,
					Message:  fmt.Sprintf("lane %d: duplicate sample ID %q within lane", lane, sid),
					Lane:     lane,
					SampleID: sid,
				})
			}
		}
	}

	projects := make(map[string]map[string]struct{})
	for _, row := range view.Rows() {
		set, ok := projects[row.SampleID]
		if !ok {
			set = make(map[string]struct{})
			projects[row.SampleID] = set
		}
		set[row.ProjectID] = struct{}{}
	}
	for _, sid := range sortedKeys(projects) {
		if len(projects[sid]) > 1 {
			names := sortedKeys(projects[sid])
			res.Add(domain.Problem{
				Severity: domain.SeverityError,
				Code:     domain.CodeSampleIDProjectCollision,
				Message:  fmt.Sprintf("sample ID %q appears in multiple projects: %s", sid, strings.Join(names, ", ")),
				SampleID: sid,
			})
		}
	}

	return res, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
