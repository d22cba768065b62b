package grid

// Navigate maps a directional key to the next cell coordinate given the
// grid's row/column ordering. Vertical movement keeps the column and
// moves one row; horizontal movement walks the flattened column order, so
// sub-fields (sessions within a day) are traversed before the next day.
// Moving past a grid boundary is a no-op: the coordinate is returned
// unchanged, with no wraparound.
func (s *Store) Navigate(from Coord, d Direction) Coord {
	row, col, ok := s.Position(from)
	if !ok {
		return from
	}
	switch d {
	case DirUp:
		row--
	case DirDown:
		row++
	case DirLeft:
		col--
	case DirRight:
		col++
	}
	next, ok := s.CoordAt(row, col)
	if !ok {
		return from
	}
	return next
}

// First returns the top-left coordinate, or false for an empty grid.
func (s *Store) First() (Coord, bool) {
	return s.CoordAt(0, 0)
}
