package grid

import "testing"

// gradeSnapshot builds a 3-student grid with two graded subjects and one
// locked (non-editable) subject.
//
//	subject 1 "MATH" max 100 weight 4
//	subject 2 "ENG"  max 100 weight 2
//	subject 3 "PHY"  max 100 weight 3, not editable
func gradeSnapshot() Snapshot {
	return Snapshot{
		Rows: []Row{
			{ID: 10, Label: "Amara"},
			{ID: 11, Label: "Brice"},
			{ID: 12, Label: "Chidi"},
		},
		Cols: []Column{
			{Key: ColumnKey{Subject: 1}, Label: "MATH", Max: 100, Weight: 4, Editable: true},
			{Key: ColumnKey{Subject: 2}, Label: "ENG", Max: 100, Weight: 2, Editable: true},
			{Key: ColumnKey{Subject: 3}, Label: "PHY", Max: 100, Weight: 3, Editable: false},
		},
		Values: map[Coord]string{
			{Student: 10, Col: ColumnKey{Subject: 1}}: "80",
			{Student: 11, Col: ColumnKey{Subject: 1}}: "55",
		},
	}
}

func gradeStore() *Store {
	s := NewStore(ScoreRules{})
	s.Init(gradeSnapshot())
	return s
}

func coordOf(student, subject int64) Coord {
	return Coord{Student: student, Col: ColumnKey{Subject: subject}}
}

func TestInitBuildsOneCellPerPair(t *testing.T) {
	s := gradeStore()

	if got := len(s.Rows()) * len(s.Cols()); got != 9 {
		t.Fatalf("expected 9 coordinates, got %d", got)
	}
	cell, ok := s.Cell(coordOf(10, 1))
	if !ok {
		t.Fatal("cell not found")
	}
	if cell.Value != "80" || cell.Baseline != "80" {
		t.Errorf("expected value and baseline 80, got %q / %q", cell.Value, cell.Baseline)
	}
	if cell.State() != StateClean {
		t.Errorf("expected clean cell after init, got %s", cell.State())
	}
	if s.Dirty() {
		t.Error("fresh grid must not be dirty")
	}
}

func TestSetValueMarksPending(t *testing.T) {
	s := gradeStore()

	if !s.SetValue(coordOf(10, 1), "95") {
		t.Fatal("expected value to be stored")
	}
	cell, _ := s.Cell(coordOf(10, 1))
	if cell.State() != StateModified {
		t.Errorf("expected modified, got %s", cell.State())
	}
	if s.PendingCount() != 1 {
		t.Errorf("expected 1 pending coordinate, got %d", s.PendingCount())
	}
	if !s.Dirty() {
		t.Error("grid with pending edit must be dirty")
	}
}

func TestSetValueUnknownCoordIsNoop(t *testing.T) {
	s := gradeStore()

	if s.SetValue(coordOf(99, 1), "50") {
		t.Error("unknown coordinate must be a no-op")
	}
	if s.PendingCount() != 0 {
		t.Errorf("pending set must stay empty, got %d", s.PendingCount())
	}
}

func TestSetValueNonEditableRejected(t *testing.T) {
	s := gradeStore()

	if s.SetValue(coordOf(10, 3), "42") {
		t.Error("non-editable column must reject writes")
	}
	cell, _ := s.Cell(coordOf(10, 3))
	if cell.Modified() {
		t.Error("non-editable cell must never become modified")
	}
}

func TestSetValueRejectedInputDropped(t *testing.T) {
	s := gradeStore()

	if s.SetValue(coordOf(10, 1), "8x") {
		t.Error("invalid characters must be dropped")
	}
	cell, _ := s.Cell(coordOf(10, 1))
	if cell.Value != "80" {
		t.Errorf("prior value must be unchanged, got %q", cell.Value)
	}
}

func TestSetValueOutOfRangeStoredWithWarning(t *testing.T) {
	s := gradeStore()

	if !s.SetValue(coordOf(10, 1), "150") {
		t.Fatal("out-of-range value must still be stored")
	}
	cell, _ := s.Cell(coordOf(10, 1))
	if cell.Value != "150" {
		t.Errorf("expected 150 stored, got %q", cell.Value)
	}
	if cell.Warning == "" {
		t.Error("expected out-of-range warning")
	}
	if s.PendingCount() != 1 {
		t.Error("out-of-range value still joins the pending set")
	}
}

func TestSetValueBackToBaselineClearsPending(t *testing.T) {
	s := gradeStore()

	s.SetValue(coordOf(10, 1), "95")
	s.SetValue(coordOf(10, 1), "80")
	if s.PendingCount() != 0 {
		t.Errorf("typing back the saved value leaves nothing to persist, got %d pending", s.PendingCount())
	}
	if s.Dirty() {
		t.Error("grid must be clean again")
	}
}

func TestMarkSavedAdvancesBaseline(t *testing.T) {
	s := gradeStore()
	s.SetValue(coordOf(10, 1), "95")

	changes := s.takePending()
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	cell, _ := s.Cell(coordOf(10, 1))
	if cell.State() != StateSaving {
		t.Fatalf("expected saving during flight, got %s", cell.State())
	}

	s.MarkSaved(changes)
	cell, _ = s.Cell(coordOf(10, 1))
	if cell.State() != StateClean {
		t.Errorf("expected clean after save, got %s", cell.State())
	}
	if cell.Baseline != "95" {
		t.Errorf("expected baseline 95, got %q", cell.Baseline)
	}
}

func TestMarkSavedKeepsDivergedEdit(t *testing.T) {
	s := gradeStore()
	s.SetValue(coordOf(10, 1), "85")

	changes := s.takePending()

	// User keeps typing while the save is in flight.
	s.SetValue(coordOf(10, 1), "87")

	s.MarkSaved(changes)
	cell, _ := s.Cell(coordOf(10, 1))
	if cell.Value != "87" {
		t.Errorf("newer edit must be retained, got %q", cell.Value)
	}
	if cell.State() != StateModified {
		t.Errorf("diverged cell must stay modified, got %s", cell.State())
	}
	if s.PendingCount() != 1 {
		t.Error("diverged coordinate must rejoin the pending set")
	}
}

func TestMarkSavedIdempotent(t *testing.T) {
	s := gradeStore()
	s.SetValue(coordOf(10, 1), "95")
	changes := s.takePending()

	s.MarkSaved(changes)
	before, _ := s.Cell(coordOf(10, 1))
	pendingBefore := s.PendingCount()

	s.MarkSaved(changes)
	after, _ := s.Cell(coordOf(10, 1))
	if before != after {
		t.Errorf("second MarkSaved changed cell state: %+v -> %+v", before, after)
	}
	if s.PendingCount() != pendingBefore {
		t.Error("second MarkSaved changed the pending set")
	}
}

func TestMarkFailedKeepsModified(t *testing.T) {
	s := gradeStore()
	s.SetValue(coordOf(10, 1), "95")
	changes := s.takePending()

	s.MarkFailed(changes, "connection reset")
	cell, _ := s.Cell(coordOf(10, 1))
	if cell.State() != StateFailed {
		t.Errorf("expected failed, got %s", cell.State())
	}
	if !cell.Modified() {
		t.Error("failed cell must stay modified for retry")
	}
	if cell.Err != "connection reset" {
		t.Errorf("expected error recorded, got %q", cell.Err)
	}
	if s.PendingCount() != 1 {
		t.Error("failed coordinate must be eligible for the next cycle")
	}
}

func TestFailedClearedByNextEdit(t *testing.T) {
	s := gradeStore()
	s.SetValue(coordOf(10, 1), "95")
	s.MarkFailed(s.takePending(), "timeout")

	s.SetValue(coordOf(10, 1), "96")
	cell, _ := s.Cell(coordOf(10, 1))
	if cell.State() != StateModified {
		t.Errorf("edit must clear the failed flag, got %s", cell.State())
	}
}

func TestInitResetsEverything(t *testing.T) {
	s := gradeStore()
	s.SetValue(coordOf(10, 1), "95")
	s.Paste(coordOf(11, 1), "60")

	s.Init(gradeSnapshot())
	if s.PendingCount() != 0 || s.StagedCount() != 0 {
		t.Error("init must clear pending and staged sets")
	}
	if s.Regime() != RegimeAutoSave {
		t.Errorf("init must reset regime, got %s", s.Regime())
	}
}
