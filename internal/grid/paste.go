package grid

import "strings"

// ParseBlock splits clipboard text into a rectangular patch: rows by
// newline, fields by tab. A trailing newline does not produce an empty
// last row. Windows line endings are tolerated.
func ParseBlock(text string) [][]string {
	text = strings.TrimSuffix(text, "\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\r")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	block := make([][]string, len(lines))
	for i, line := range lines {
		block[i] = strings.Split(strings.TrimSuffix(line, "\r"), "\t")
	}
	return block
}

// Paste applies a clipboard block anchored at the given coordinate as a
// staged patch and switches the grid to paste regime. Targets outside the
// grid bounds are silently dropped, as are blank fields, fields for
// non-editable columns and fields the rules reject. Returns the number of
// cells staged by this paste.
func (s *Store) Paste(anchor Coord, text string) int {
	block := ParseBlock(text)
	if len(block) == 0 {
		return 0
	}
	row0, col0, ok := s.Position(anchor)
	if !ok {
		return 0
	}

	staged := 0
	for i, fields := range block {
		for j, field := range fields {
			if field == "" {
				continue
			}
			coord, ok := s.CoordAt(row0+i, col0+j)
			if !ok {
				continue // partial pastes at the grid edge are expected
			}
			cell := s.cells[coord]
			if !cell.Editable {
				continue
			}
			col := s.cols[s.colIx[coord.Col]]
			verdict, warning := s.rules.Check(col, field)
			if verdict == VerdictReject {
				continue
			}
			if cell.Value != field {
				cell.Value = field
				s.version++
			}
			cell.Warning = warning
			cell.failed = false
			cell.Origin = OriginPaste
			s.staged[coord] = true
			staged++
		}
	}

	if staged > 0 {
		s.regime = RegimePaste
	}
	return staged
}

// StagedChanges returns the staged patch as a batch of changes in
// snapshot order, for the single bulk persistence call.
func (s *Store) StagedChanges() []Change {
	if len(s.staged) == 0 {
		return nil
	}
	changes := make([]Change, 0, len(s.staged))
	for _, r := range s.rows {
		for _, col := range s.cols {
			coord := Coord{Student: r.ID, Col: col.Key}
			if s.staged[coord] {
				changes = append(changes, Change{Coord: coord, Value: s.cells[coord].Value})
			}
		}
	}
	return changes
}

// BeginCommit marks every staged cell as saving and returns the batch for
// the bulk call. The regime stays paste until the call resolves.
func (s *Store) BeginCommit() ([]Change, error) {
	if s.regime != RegimePaste {
		return nil, ErrNotStaging
	}
	changes := s.StagedChanges()
	for _, ch := range changes {
		s.cells[ch.Coord].Saving = true
	}
	return changes, nil
}

// FinishCommit applies a successful bulk save: every staged coordinate is
// confirmed, the staged patch is cleared and the grid returns to the
// auto-save regime.
func (s *Store) FinishCommit(changes []Change) {
	s.MarkSaved(changes)
	s.clearStaged()
}

// FailCommit records a failed bulk save. The staged patch stays intact so
// the user can retry the commit or cancel.
func (s *Store) FailCommit(changes []Change, reason string) {
	for _, ch := range changes {
		cell, ok := s.cells[ch.Coord]
		if !ok {
			continue
		}
		cell.Saving = false
		cell.failed = true
		cell.Err = reason
	}
}

// CancelStaged reverts every staged coordinate to its pre-paste baseline,
// clears the staged patch and returns to the auto-save regime.
func (s *Store) CancelStaged() error {
	if s.regime != RegimePaste {
		return ErrNotStaging
	}
	for coord := range s.staged {
		cell := s.cells[coord]
		if cell.Value != cell.Baseline {
			cell.Value = cell.Baseline
			s.version++
		}
		col := s.cols[s.colIx[coord.Col]]
		_, warning := s.rules.Check(col, cell.Value)
		cell.Warning = warning
		cell.failed = false
		cell.Err = ""
	}
	s.clearStaged()
	return nil
}

func (s *Store) clearStaged() {
	for coord := range s.staged {
		s.cells[coord].Origin = OriginNone
	}
	s.staged = make(map[Coord]bool)
	s.regime = RegimeAutoSave
}
