package grid

import (
	"sort"
	"strconv"
)

// Band maps averages at or above Min to a letter grade. Bands are ordered
// by descending Min; the highest matching threshold wins.
type Band struct {
	Min    float64
	Letter string
}

// Scale is an ordered letter-grade threshold table. Averages below the
// lowest band yield Fail.
type Scale struct {
	Bands []Band
	Fail  string
}

// Letter maps an average to its letter grade.
func (sc Scale) Letter(avg float64) string {
	for _, b := range sc.Bands {
		if avg >= b.Min {
			return b.Letter
		}
	}
	return sc.Fail
}

// RowAggregate is the derived summary for one row: weighted average,
// letter grade and rank for grade grids, absence and permission counts
// for attendance grids.
type RowAggregate struct {
	Row         Row
	Scored      int // columns with a parseable entered value
	WeightedSum float64
	WeightSum   float64
	Average     float64
	Letter      string
	Rank        int
	Absences    int
	Permissions int
}

// Aggregates recomputes every row's derived statistics from the current
// cell values. It is a pure function of grid state: callers cache the
// result keyed on Store.Version. Out-of-range values are included; the
// backend is the final authority on what it accepts.
func Aggregates(s *Store, scale Scale) []RowAggregate {
	rows := s.Rows()
	cols := s.Cols()
	aggs := make([]RowAggregate, len(rows))

	for i, r := range rows {
		agg := RowAggregate{Row: r}
		for _, col := range cols {
			cell, ok := s.Cell(Coord{Student: r.ID, Col: col.Key})
			if !ok || cell.Value == "" {
				continue
			}
			switch cell.Value {
			case MarkAbsent:
				if col.Key.Subject == 0 {
					agg.Absences++
					continue
				}
			case MarkPermission:
				if col.Key.Subject == 0 {
					agg.Permissions++
					continue
				}
			}
			if !col.Editable || col.Weight <= 0 {
				continue
			}
			score, err := strconv.ParseFloat(cell.Value, 64)
			if err != nil {
				continue // intermediate input such as "9."
			}
			agg.Scored++
			agg.WeightedSum += score * col.Weight
			agg.WeightSum += col.Weight
		}
		if agg.WeightSum > 0 {
			agg.Average = agg.WeightedSum / agg.WeightSum
		}
		agg.Letter = scale.Letter(agg.Average)
		aggs[i] = agg
	}

	rankRows(aggs)
	return aggs
}

// rankRows assigns 1-based ranks by average descending. Equal averages
// keep the relative order from the snapshot row list (stable sort), so
// ranks are deterministic. Rows with nothing entered still receive a rank
// for comparability.
func rankRows(aggs []RowAggregate) {
	order := make([]int, len(aggs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return aggs[order[a]].Average > aggs[order[b]].Average
	})
	for pos, ix := range order {
		aggs[ix].Rank = pos + 1
	}
}
