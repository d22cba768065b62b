package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Verdict is the outcome of checking raw input against a rule set.
type Verdict int

// Verdicts. Rejected input is silently dropped; StoreWithWarning stores
// the value but flags it so the UI can highlight it (the backend stays
// the final authority on save).
const (
	VerdictReject Verdict = iota
	VerdictStore
	VerdictStoreWithWarning
)

// Rules validates raw cell input for one grid type. Rule sets are supplied
// at initialization; the store itself has no domain knowledge.
type Rules interface {
	// Check validates raw input for the given column. The string return
	// carries the warning message for VerdictStoreWithWarning.
	Check(col Column, raw string) (Verdict, string)
}

// ScoreRules validates numeric scores: empty means "no score", the
// accepted alphabet is digits and at most one decimal point, and values
// above the column maximum are stored with a warning.
type ScoreRules struct{}

// Check implements Rules.
func (ScoreRules) Check(col Column, raw string) (Verdict, string) {
	if raw == "" {
		return VerdictStore, ""
	}
	dots := 0
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
			if dots > 1 {
				return VerdictReject, ""
			}
		default:
			return VerdictReject, ""
		}
	}
	// Intermediate input like "9." or "." is storable; it just does not
	// parse yet and is skipped by the statistics engine.
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return VerdictStore, ""
	}
	if col.Max > 0 && score > col.Max {
		return VerdictStoreWithWarning, fmt.Sprintf("above maximum %s", strconv.FormatFloat(col.Max, 'f', -1, 64))
	}
	return VerdictStore, ""
}

// Attendance marks. Blank means present.
const (
	MarkPresent    = ""
	MarkAbsent     = "A"
	MarkPermission = "P"
)

// AttendanceRules accepts only the empty string, "A" (absent) and "P"
// (permission). Lowercase input is normalized by the caller before Check.
type AttendanceRules struct{}

// Check implements Rules.
func (AttendanceRules) Check(_ Column, raw string) (Verdict, string) {
	switch raw {
	case MarkPresent, MarkAbsent, MarkPermission:
		return VerdictStore, ""
	default:
		return VerdictReject, ""
	}
}

// NormalizeMark uppercases a typed attendance mark so "a" and "p" are
// accepted from the keyboard.
func NormalizeMark(raw string) string {
	return strings.ToUpper(raw)
}
