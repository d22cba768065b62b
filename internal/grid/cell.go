package grid

// State is the lifecycle state of a cell.
type State int

// Cell states. Failed is not terminal: any edit or the next debounce
// cycle re-attempts the save.
const (
	StateClean State = iota
	StateModified
	StateSaving
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateModified:
		return "modified"
	case StateSaving:
		return "saving"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Origin tags how a staged change entered the staged patch, so the UI can
// distinguish pasted cells from hand edits made while reviewing a paste.
type Origin int

// Staged-change origins.
const (
	OriginNone Origin = iota
	OriginPaste
	OriginManual
)

// Cell is the atomic unit of editable state. Value is kept in string form
// so intermediate keystrokes ("9.") can be held without premature parsing.
type Cell struct {
	Coord    Coord
	Value    string
	Baseline string // last value confirmed durable by a save
	Editable bool
	Saving   bool
	Warning  string // semantic (out-of-range) flag; value is still saved
	Err      string // last persistence failure
	Origin   Origin // staged tag while the grid is in paste regime

	failed bool
}

// Modified reports whether the cell differs from its saved baseline.
func (c *Cell) Modified() bool {
	return c.Value != c.Baseline
}

// State derives the lifecycle state from the cell flags.
func (c *Cell) State() State {
	switch {
	case c.Saving:
		return StateSaving
	case c.failed:
		return StateFailed
	case c.Modified():
		return StateModified
	default:
		return StateClean
	}
}
