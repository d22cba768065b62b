package grid

import (
	"math"
	"testing"
)

func testScale() Scale {
	return Scale{
		Bands: []Band{
			{Min: 90, Letter: "A"},
			{Min: 80, Letter: "B"},
			{Min: 70, Letter: "C"},
			{Min: 50, Letter: "D"},
		},
		Fail: "F",
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScaleLetter(t *testing.T) {
	sc := testScale()
	tests := []struct {
		avg  float64
		want string
	}{
		{95, "A"},
		{90, "A"},
		{89.9, "B"},
		{70, "C"},
		{50, "D"},
		{49.9, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		if got := sc.Letter(tt.avg); got != tt.want {
			t.Errorf("Letter(%.1f) = %s, want %s", tt.avg, got, tt.want)
		}
	}
}

func TestWeightedAverage(t *testing.T) {
	s := gradeStore()
	// MATH (weight 4) 90, ENG (weight 2) 60 -> (360+120)/6 = 80.
	s.SetValue(coordOf(10, 1), "90")
	s.SetValue(coordOf(10, 2), "60")

	aggs := Aggregates(s, testScale())
	a := aggs[0]
	if a.Scored != 2 {
		t.Fatalf("expected 2 scored columns, got %d", a.Scored)
	}
	if !almostEqual(a.Average, 80) {
		t.Errorf("average = %.4f, want 80", a.Average)
	}
	if a.Letter != "B" {
		t.Errorf("letter = %s, want B", a.Letter)
	}
}

func TestAverageSkipsEmptyColumns(t *testing.T) {
	s := gradeStore()
	// Only MATH entered: coefficient sum counts entered columns only.
	s.SetValue(coordOf(12, 1), "95")

	aggs := Aggregates(s, testScale())
	c := aggs[2]
	if !almostEqual(c.Average, 95) {
		t.Errorf("average = %.4f, want 95 (single entered column)", c.Average)
	}
	if c.Letter != "A" {
		t.Errorf("letter = %s, want A", c.Letter)
	}
}

func TestAverageZeroWhenNothingEntered(t *testing.T) {
	s := NewStore(ScoreRules{})
	snap := gradeSnapshot()
	snap.Values = nil
	s.Init(snap)

	aggs := Aggregates(s, testScale())
	for _, a := range aggs {
		if a.Average != 0 {
			t.Errorf("row %s: average = %.2f, want 0 (no divide-by-zero)", a.Row.Label, a.Average)
		}
		if a.Rank == 0 {
			t.Errorf("row %s: unscored rows still receive a rank", a.Row.Label)
		}
	}
}

func TestIntermediateInputSkipped(t *testing.T) {
	s := gradeStore()
	s.SetValue(coordOf(10, 2), "9.")

	aggs := Aggregates(s, testScale())
	if aggs[0].Scored != 1 {
		t.Errorf("unparseable intermediate input must not count, scored = %d", aggs[0].Scored)
	}
}

func TestRankByAverageDescending(t *testing.T) {
	s := gradeStore()
	s.SetValue(coordOf(10, 1), "70")
	s.SetValue(coordOf(11, 1), "95")
	s.SetValue(coordOf(12, 1), "80")

	aggs := Aggregates(s, testScale())
	wantRanks := []int{3, 1, 2}
	for i, want := range wantRanks {
		if aggs[i].Rank != want {
			t.Errorf("row %s: rank = %d, want %d", aggs[i].Row.Label, aggs[i].Rank, want)
		}
	}
}

func TestRankTiesKeepSnapshotOrder(t *testing.T) {
	s := gradeStore()
	s.SetValue(coordOf(10, 1), "80")
	s.SetValue(coordOf(11, 1), "80")
	s.SetValue(coordOf(12, 1), "90")

	aggs := Aggregates(s, testScale())
	if aggs[2].Rank != 1 {
		t.Errorf("highest average must rank 1, got %d", aggs[2].Rank)
	}
	// Equal averages: earlier snapshot row ranks ahead.
	if aggs[0].Rank != 2 || aggs[1].Rank != 3 {
		t.Errorf("tie-break must keep snapshot order, got %d and %d", aggs[0].Rank, aggs[1].Rank)
	}
}

func TestRankMonotonicity(t *testing.T) {
	s := gradeStore()
	s.SetValue(coordOf(10, 1), "55.5")
	s.SetValue(coordOf(11, 1), "81")
	s.SetValue(coordOf(12, 1), "81")

	aggs := Aggregates(s, testScale())
	for _, a := range aggs {
		for _, b := range aggs {
			if a.Average > b.Average && a.Rank > b.Rank {
				t.Errorf("%s (avg %.1f rank %d) must rank ahead of %s (avg %.1f rank %d)",
					a.Row.Label, a.Average, a.Rank, b.Row.Label, b.Average, b.Rank)
			}
		}
	}
}

func TestAttendanceCounts(t *testing.T) {
	s := attendanceStore()
	s.SetValue(attCoord(20, 5, "M"), "A")
	s.SetValue(attCoord(20, 6, "M"), "A")
	s.SetValue(attCoord(20, 6, "A"), "P")

	aggs := Aggregates(s, Scale{})
	a := aggs[0]
	if a.Absences != 2 {
		t.Errorf("absences = %d, want 2", a.Absences)
	}
	if a.Permissions != 1 {
		t.Errorf("permissions = %d, want 1", a.Permissions)
	}
	b := aggs[1]
	if b.Absences != 0 || b.Permissions != 0 {
		t.Errorf("blank row must count nothing, got %d/%d", b.Absences, b.Permissions)
	}
}

func TestSingleScoreScenario(t *testing.T) {
	// One subject, max 100, coefficient 1; student scores 95.
	s := NewStore(ScoreRules{})
	s.Init(Snapshot{
		Rows: []Row{{ID: 1, Label: "Amara"}, {ID: 2, Label: "Brice"}, {ID: 3, Label: "Chidi"}},
		Cols: []Column{{Key: ColumnKey{Subject: 1}, Label: "MATH", Max: 100, Weight: 1, Editable: true}},
	})
	s.SetValue(Coord{Student: 1, Col: ColumnKey{Subject: 1}}, "95")

	aggs := Aggregates(s, testScale())
	if !almostEqual(aggs[0].Average, 95) {
		t.Errorf("average = %.2f, want 95.00", aggs[0].Average)
	}
	if aggs[0].Letter != "A" {
		t.Errorf("letter = %s, want A", aggs[0].Letter)
	}
	if aggs[0].Rank != 1 {
		t.Errorf("rank = %d, want 1", aggs[0].Rank)
	}
}

func TestAggregatesCacheKey(t *testing.T) {
	s := gradeStore()
	v := s.Version()
	s.SetValue(coordOf(10, 1), "90")
	if s.Version() == v {
		t.Error("value change must bump the version")
	}
	v = s.Version()
	s.MarkSaved([]Change{{Coord: coordOf(10, 1), Value: "90"}})
	if s.Version() != v {
		t.Error("save confirmation changes no value and must not bump the version")
	}
}
