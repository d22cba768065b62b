package grid

import "errors"

// Store errors. Validation failures are not errors (rejected input is a
// silent no-op, per the input-handling contract); these cover misuse of
// the staging protocol.
var (
	ErrNotStaging     = errors.New("no staged patch to commit or cancel")
	ErrAlreadyStaging = errors.New("a staged patch is already in progress")
)

// Regime is the grid's current editing mode. The two regimes are mutually
// exclusive: entering paste regime suspends auto-save until the staged
// patch is committed or cancelled.
type Regime int

// Regimes.
const (
	RegimeAutoSave Regime = iota
	RegimePaste
)

func (r Regime) String() string {
	if r == RegimePaste {
		return "paste"
	}
	return "autosave"
}

// Store is the grid state store: an addressable collection of cells keyed
// by Coord, plus the pending-change bookkeeping for both regimes. It is
// not safe for concurrent use; the hosting event loop owns it.
type Store struct {
	rows  []Row
	cols  []Column
	rowIx map[int64]int
	colIx map[ColumnKey]int
	cells map[Coord]*Cell
	rules Rules

	regime  Regime
	pending map[Coord]bool // auto-save regime: edited, not yet covered by a save
	staged  map[Coord]bool // paste regime: the staged patch

	version int // bumped on every value change, for derived-stats caching
}

// NewStore creates an empty store with the given validation rules.
// Call Init with a snapshot before use.
func NewStore(rules Rules) *Store {
	s := &Store{rules: rules}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.rowIx = make(map[int64]int)
	s.colIx = make(map[ColumnKey]int)
	s.cells = make(map[Coord]*Cell)
	s.pending = make(map[Coord]bool)
	s.staged = make(map[Coord]bool)
	s.regime = RegimeAutoSave
}

// Init replaces the entire cell collection from a snapshot, clears all
// pending and staged changes and resets the regime to auto-save.
func (s *Store) Init(snap Snapshot) {
	s.reset()
	s.rows = make([]Row, len(snap.Rows))
	copy(s.rows, snap.Rows)
	s.cols = make([]Column, len(snap.Cols))
	copy(s.cols, snap.Cols)

	for i, r := range s.rows {
		s.rowIx[r.ID] = i
	}
	for i, c := range s.cols {
		s.colIx[c.Key] = i
	}

	for _, r := range s.rows {
		for _, col := range s.cols {
			coord := Coord{Student: r.ID, Col: col.Key}
			val := snap.Values[coord]
			s.cells[coord] = &Cell{
				Coord:    coord,
				Value:    val,
				Baseline: val,
				Editable: col.Editable,
			}
		}
	}
	s.version++
}

// Rows returns the ordered row list.
func (s *Store) Rows() []Row { return s.rows }

// Cols returns the ordered column list.
func (s *Store) Cols() []Column { return s.cols }

// Regime returns the current editing regime.
func (s *Store) Regime() Regime { return s.regime }

// Version is bumped whenever any cell value changes. Derived statistics
// depend only on values, so callers can cache per version.
func (s *Store) Version() int { return s.version }

// Cell returns a copy of the cell at the coordinate.
func (s *Store) Cell(c Coord) (Cell, bool) {
	cell, ok := s.cells[c]
	if !ok {
		return Cell{}, false
	}
	return *cell, true
}

// CoordAt maps (row index, column index) in snapshot order to a Coord.
func (s *Store) CoordAt(row, col int) (Coord, bool) {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.cols) {
		return Coord{}, false
	}
	return Coord{Student: s.rows[row].ID, Col: s.cols[col].Key}, true
}

// Position maps a Coord back to (row index, column index).
func (s *Store) Position(c Coord) (row, col int, ok bool) {
	row, okR := s.rowIx[c.Student]
	col, okC := s.colIx[c.Col]
	if !okR || !okC {
		return 0, 0, false
	}
	return row, col, true
}

// ColumnOf returns the column metadata for a coordinate.
func (s *Store) ColumnOf(c Coord) (Column, bool) {
	ix, ok := s.colIx[c.Col]
	if !ok {
		return Column{}, false
	}
	return s.cols[ix], true
}

// SetValue applies raw user input to a cell. Unknown coordinates,
// non-editable columns and input rejected by the rules are silent no-ops.
// Accepted input updates the value and joins the active regime's pending
// set. Returns true if the value was stored.
func (s *Store) SetValue(c Coord, raw string) bool {
	cell, ok := s.cells[c]
	if !ok || !cell.Editable {
		return false
	}

	col := s.cols[s.colIx[c.Col]]
	verdict, warning := s.rules.Check(col, raw)
	if verdict == VerdictReject {
		return false
	}
	if cell.Value == raw {
		// Same value: refresh the warning but do not mark modified.
		cell.Warning = warning
		return true
	}

	cell.Value = raw
	cell.Warning = warning
	cell.failed = false

	switch s.regime {
	case RegimePaste:
		s.staged[c] = true
		cell.Origin = OriginManual
	default:
		if cell.Modified() {
			s.pending[c] = true
		} else {
			// Typed back to the saved value: nothing left to persist.
			delete(s.pending, c)
		}
	}

	s.version++
	return true
}

// Change is one cell's contribution to a persistence call: the coordinate
// and the value captured when the save snapshot was taken.
type Change struct {
	Coord Coord
	Value string
}

// PendingCount returns the number of coordinates awaiting auto-save.
func (s *Store) PendingCount() int { return len(s.pending) }

// StagedCount returns the size of the staged patch.
func (s *Store) StagedCount() int { return len(s.staged) }

// Dirty reports whether any pending, staged or in-flight change exists.
// The hosting UI uses it to gate leaving the grid.
func (s *Store) Dirty() bool {
	if len(s.pending) > 0 || len(s.staged) > 0 {
		return true
	}
	for _, cell := range s.cells {
		if cell.Saving || cell.Modified() {
			return true
		}
	}
	return false
}

// takePending snapshots the pending set in snapshot order, marks those
// cells as saving and clears the set. Called by the coordinator when a
// save starts; the returned changes are exactly what the save covers.
func (s *Store) takePending() []Change {
	if len(s.pending) == 0 {
		return nil
	}
	changes := make([]Change, 0, len(s.pending))
	for _, r := range s.rows {
		for _, col := range s.cols {
			coord := Coord{Student: r.ID, Col: col.Key}
			if !s.pending[coord] {
				continue
			}
			cell := s.cells[coord]
			cell.Saving = true
			changes = append(changes, Change{Coord: coord, Value: cell.Value})
		}
	}
	s.pending = make(map[Coord]bool)
	return changes
}

// MarkSaved confirms a completed save. For each change whose cell still
// holds the confirmed value, the baseline advances and the cell becomes
// clean. If the value has diverged since the save snapshot was taken, the
// newer edit is kept and the coordinate rejoins the pending set: a
// completed save never silently discards a newer, unsaved edit.
func (s *Store) MarkSaved(changes []Change) {
	for _, ch := range changes {
		cell, ok := s.cells[ch.Coord]
		if !ok {
			continue
		}
		cell.Saving = false
		cell.failed = false
		cell.Err = ""
		if cell.Value == ch.Value {
			cell.Baseline = cell.Value
			delete(s.pending, ch.Coord)
			continue
		}
		// Diverged: the snapshot value is what is durable now, but the
		// newer on-screen edit still needs its own save.
		cell.Baseline = ch.Value
		if s.regime == RegimeAutoSave {
			s.pending[ch.Coord] = true
		}
	}
}

// MarkFailed records a failed save. Cells return to Modified with the
// error set, eligible for retry on the next edit or explicit flush.
func (s *Store) MarkFailed(changes []Change, reason string) {
	for _, ch := range changes {
		cell, ok := s.cells[ch.Coord]
		if !ok {
			continue
		}
		cell.Saving = false
		cell.failed = true
		cell.Err = reason
		if cell.Modified() && s.regime == RegimeAutoSave {
			s.pending[ch.Coord] = true
		}
	}
}
