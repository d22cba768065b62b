package roster

import (
	"context"

	"github.com/nvelasco/markbook/internal/grid"
)

// Repository provides access to the roster and the recorded marks.
type Repository interface {
	// Classes returns every class ordered by name.
	Classes(ctx context.Context) ([]Class, error)

	// ClassByName resolves a class by its exact name.
	ClassByName(ctx context.Context, name string) (Class, error)

	// Students returns the students of a class in roster order.
	Students(ctx context.Context, classID int64) ([]Student, error)

	// Subjects returns the subjects of a class in display order.
	Subjects(ctx context.Context, classID int64) ([]Subject, error)

	// AddStudent inserts a student and returns it with the ID set.
	AddStudent(ctx context.Context, s Student) (Student, error)

	// AddSubject inserts a subject and returns it with the ID set.
	AddSubject(ctx context.Context, s Subject) (Subject, error)

	// GradeSnapshot loads the score grid for a class and term.
	GradeSnapshot(ctx context.Context, classID int64, term Term) (grid.Snapshot, error)

	// AttendanceSnapshot loads the attendance grid for a class and month.
	AttendanceSnapshot(ctx context.Context, classID int64, month string, sessions []string) (grid.Snapshot, error)

	// SaveScores persists score cell changes for a class and term.
	SaveScores(ctx context.Context, classID int64, term Term, changes []grid.Change) error

	// SaveAttendance persists attendance cell changes for a class and month.
	SaveAttendance(ctx context.Context, classID int64, month string, changes []grid.Change) error

	// Close releases the underlying store.
	Close() error
}

// ScoreSaver adapts a Repository to the grid's Saver interface for one
// class and term.
type ScoreSaver struct {
	Repo    Repository
	ClassID int64
	Term    Term
}

func (s ScoreSaver) SaveCells(ctx context.Context, changes []grid.Change) error {
	return s.Repo.SaveScores(ctx, s.ClassID, s.Term, changes)
}

// AttendanceSaver adapts a Repository to the grid's Saver interface for
// one class and month.
type AttendanceSaver struct {
	Repo    Repository
	ClassID int64
	Month   string
}

func (s AttendanceSaver) SaveCells(ctx context.Context, changes []grid.Change) error {
	return s.Repo.SaveAttendance(ctx, s.ClassID, s.Month, changes)
}
