// Package roster defines the core domain types for markbook: classes,
// students, subjects and the school calendar the grids are built over.
package roster

import (
	"errors"
	"fmt"
	"time"

	"github.com/nvelasco/markbook/internal/grid"
)

// Domain errors.
var (
	ErrClassNotFound   = errors.New("class not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrInvalidMonth    = errors.New("month must be in YYYY-MM format")
)

// Class is one teaching group.
type Class struct {
	ID   int64
	Name string
}

// Student is one row entity. Students are listed in roster order, which
// defines the grid's row order and the rank tie-break.
type Student struct {
	ID      int64
	ClassID int64
	Name    string
	Number  string // admission number
}

// Subject is one graded column. Weight is the subject coefficient used
// in the weighted average; Editable is false for subjects the current
// user may not score.
type Subject struct {
	ID       int64
	ClassID  int64
	Name     string
	Code     string
	MaxScore float64
	Weight   float64
	Editable bool
}

// Term identifies a grading period, e.g. "2026-T1".
type Term string

// GradeColumns maps subjects to grid columns in roster order.
func GradeColumns(subjects []Subject) []grid.Column {
	cols := make([]grid.Column, len(subjects))
	for i, s := range subjects {
		cols[i] = grid.Column{
			Key:      grid.ColumnKey{Subject: s.ID},
			Label:    s.Code,
			Max:      s.MaxScore,
			Weight:   s.Weight,
			Editable: s.Editable,
		}
	}
	return cols
}

// GradeRows maps students to grid rows in roster order.
func GradeRows(students []Student) []grid.Row {
	rows := make([]grid.Row, len(students))
	for i, s := range students {
		rows[i] = grid.Row{ID: s.ID, Label: s.Name}
	}
	return rows
}

// ParseMonth validates a YYYY-MM month selector.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return t, nil
}

// SchoolDays returns the weekday day-of-month numbers for a month, in
// order. Attendance grids have one column group per school day.
func SchoolDays(month string) ([]int, error) {
	first, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	var days []int
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			days = append(days, d.Day())
		}
	}
	return days, nil
}

// AttendanceColumns builds the flattened (day, session) column list for a
// month: sessions are sub-fields of their day, so they appear adjacent in
// column order and keyboard navigation walks them before the next day.
func AttendanceColumns(days []int, sessions []string) []grid.Column {
	cols := make([]grid.Column, 0, len(days)*len(sessions))
	for _, day := range days {
		for _, sess := range sessions {
			cols = append(cols, grid.Column{
				Key:      grid.ColumnKey{Day: day, Session: grid.Session(sess)},
				Label:    fmt.Sprintf("%02d%s", day, sess),
				Editable: true,
			})
		}
	}
	return cols
}
