package core

import (
	"fmt"
	"sort"
	"strings"
)

// Fatal input error codes. These classify inputs too malformed to reason
// about further; they abort the run instead of accumulating as problems.
const (
	ErrCodeMissingColumns      = "MISSING_COLUMNS"
	ErrCodeMissingSequence     = "MISSING_SEQUENCE"
	ErrCodeDuplicateID         = "DUPLICATE_ID"
	ErrCodeDuplicateSequence   = "DUPLICATE_SEQUENCE"
	ErrCodeIDCollision         = "ID_COLLISION"
	ErrCodeLaneEmpty           = "LANE_EMPTY"
	ErrCodeLaneFormatInvalid   = "LANE_FORMAT_INVALID"
	ErrCodeLaneDuplicateInCell = "LANE_DUPLICATE_IN_CELL"
)

// InputError is a fatal structural defect in an input table or sheet.
type InputError struct {
	Code    string
	Source  string // table or sheet identifier, may be empty
	Message string
}

func (e *InputError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s: %s", e.Source, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func inputErrorf(code, source, format string, args ...any) *InputError {
	return &InputError{Code: code, Source: source, Message: fmt.Sprintf(format, args...)}
}

// enumerationLimit caps how many offending IDs a fatal message names.
const enumerationLimit = 20

// enumerate renders up to enumerationLimit sorted values, marking truncation.
func enumerate(values []string) string {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	if len(sorted) > enumerationLimit {
		return strings.Join(sorted[:enumerationLimit], ", ") + " ..."
	}
	return strings.Join(sorted, ", ")
}
