// Package grid implements the grid synchronization engine: cell state,
// validation, debounced auto-save, paste staging, navigation and derived
// statistics for bulk tabular data entry.
package grid

import "fmt"

// Session identifies a sub-field within a day column (attendance grids).
type Session string

// ColumnKey identifies a column. Exactly one shape is populated:
// Subject != 0 for grade grids, (Day, Session) for attendance grids.
// The zero value is not a valid key.
type ColumnKey struct {
	Subject int64
	Day     int
	Session Session
}

// Coord identifies a single editable cell: one row (student) in one column.
// It is comparable and safe to use as a map key.
type Coord struct {
	Student int64
	Col     ColumnKey
}

// String returns a compact representation for debugging and logs.
func (c Coord) String() string {
	if c.Col.Subject != 0 {
		return fmt.Sprintf("s%d/subj%d", c.Student, c.Col.Subject)
	}
	return fmt.Sprintf("s%d/d%d%s", c.Student, c.Col.Day, c.Col.Session)
}

// Row is one entity (student) in the grid, in snapshot order.
type Row struct {
	ID    int64
	Label string
}

// Column is one column in the grid, in snapshot order. Max and Weight are
// only meaningful for graded columns; attendance columns leave them zero.
type Column struct {
	Key      ColumnKey
	Label    string
	Max      float64
	Weight   float64
	Editable bool
}

// Snapshot is the read model the engine is initialized from. The caller
// owns it; the engine copies what it needs. Values holds the initial cell
// values; missing coordinates start empty.
type Snapshot struct {
	Rows   []Row
	Cols   []Column
	Values map[Coord]string
}

// Direction is a navigation direction.
type Direction int

// Navigation directions.
const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}
