package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvelasco/markbook/internal/config"
	"github.com/nvelasco/markbook/internal/grid"
	"github.com/nvelasco/markbook/internal/roster"
	"github.com/nvelasco/markbook/internal/tui/commands"
)

// fakeRepo is an in-memory roster.Repository for TUI tests.
type fakeRepo struct {
	gradeSnap grid.Snapshot
	attSnap   grid.Snapshot
	saved     [][]grid.Change
	failNext  error
}

func (f *fakeRepo) Classes(context.Context) ([]roster.Class, error) { return nil, nil }
func (f *fakeRepo) ClassByName(context.Context, string) (roster.Class, error) {
	return roster.Class{}, nil
}
func (f *fakeRepo) Students(context.Context, int64) ([]roster.Student, error) { return nil, nil }
func (f *fakeRepo) Subjects(context.Context, int64) ([]roster.Subject, error) { return nil, nil }
func (f *fakeRepo) AddStudent(_ context.Context, s roster.Student) (roster.Student, error) {
	return s, nil
}
func (f *fakeRepo) AddSubject(_ context.Context, s roster.Subject) (roster.Subject, error) {
	return s, nil
}
func (f *fakeRepo) GradeSnapshot(context.Context, int64, roster.Term) (grid.Snapshot, error) {
	return f.gradeSnap, nil
}
func (f *fakeRepo) AttendanceSnapshot(context.Context, int64, string, []string) (grid.Snapshot, error) {
	return f.attSnap, nil
}
func (f *fakeRepo) SaveScores(_ context.Context, _ int64, _ roster.Term, changes []grid.Change) error {
	return f.record(changes)
}
func (f *fakeRepo) SaveAttendance(_ context.Context, _ int64, _ string, changes []grid.Change) error {
	return f.record(changes)
}
func (f *fakeRepo) Close() error { return nil }

func (f *fakeRepo) record(changes []grid.Change) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.saved = append(f.saved, changes)
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time       { return c.t }
func (c *testClock) step(d time.Duration) { c.t = c.t.Add(d) }

func gradeSnapshot() grid.Snapshot {
	return grid.Snapshot{
		Rows: []grid.Row{
			{ID: 10, Label: "Amara Okafor"},
			{ID: 11, Label: "Brice Tchoumi"},
		},
		Cols: []grid.Column{
			{Key: grid.ColumnKey{Subject: 1}, Label: "MATH", Max: 100, Weight: 4, Editable: true},
			{Key: grid.ColumnKey{Subject: 2}, Label: "ENG", Max: 100, Weight: 2, Editable: true},
		},
		Values: map[grid.Coord]string{
			{Student: 10, Col: grid.ColumnKey{Subject: 1}}: "80",
		},
	}
}

func attendanceSnapshot() grid.Snapshot {
	cols := roster.AttendanceColumns([]int{5, 6}, []string{"M", "A"})
	return grid.Snapshot{
		Rows: []grid.Row{
			{ID: 20, Label: "Chidi Eze"},
			{ID: 21, Label: "Divine Ngono"},
		},
		Cols: cols,
	}
}

// loadedGrades builds a grade model with the snapshot applied and an
// injectable clock.
func loadedGrades(t *testing.T) (Model, *fakeRepo, *testClock) {
	t.Helper()

	repo := &fakeRepo{gradeSnap: gradeSnapshot()}
	cfg := config.Default()
	m := NewGrades(repo, cfg, roster.Class{ID: 1, Name: "Form 3A"}, "2026-T1")

	clock := &testClock{t: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)}
	m.coord.SetNow(clock.now)

	updated, _ := m.Update(commands.GridLoadedMsg{Snapshot: repo.gradeSnap})
	return updated.(Model), repo, clock
}

func loadedAttendance(t *testing.T) (Model, *fakeRepo, *testClock) {
	t.Helper()

	repo := &fakeRepo{attSnap: attendanceSnapshot()}
	cfg := config.Default()
	m := NewAttendance(repo, cfg, roster.Class{ID: 1, Name: "Form 3A"}, "2026-06")

	clock := &testClock{t: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)}
	m.coord.SetNow(clock.now)

	updated, _ := m.Update(commands.GridLoadedMsg{Snapshot: repo.attSnap})
	return updated.(Model), repo, clock
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var updated tea.Model
		updated, cmd = m.Update(key(k))
		m = updated.(Model)
	}
	return m, cmd
}

func TestGridLoadedPlacesCursorAtFirstCell(t *testing.T) {
	m, _, _ := loadedGrades(t)

	if m.loading {
		t.Error("expected loading to clear")
	}
	want := grid.Coord{Student: 10, Col: grid.ColumnKey{Subject: 1}}
	if m.cursor != want {
		t.Errorf("cursor = %v, want %v", m.cursor, want)
	}
}

func TestEditCommitMovesDownAndArmsTimer(t *testing.T) {
	m, _, _ := loadedGrades(t)

	m, _ = press(t, m, "enter") // open editor on the 80
	if m.mode != ModeEdit {
		t.Fatalf("mode = %v, want ModeEdit", m.mode)
	}
	if m.cellInput.Value() != "80" {
		t.Errorf("editor should be prefilled with 80, got %q", m.cellInput.Value())
	}

	m.cellInput.SetValue("85")
	m, cmd := press(t, m, "enter")

	if m.mode != ModeNormal {
		t.Fatalf("mode = %v, want ModeNormal", m.mode)
	}
	if m.cursor.Student != 11 {
		t.Errorf("cursor should move to next row, got %v", m.cursor)
	}
	if m.store.PendingCount() != 1 {
		t.Errorf("expected 1 pending cell, got %d", m.store.PendingCount())
	}
	if _, armed := m.coord.Deadline(); !armed {
		t.Error("debounce timer should be armed")
	}
	if cmd == nil {
		t.Error("expected a debounce tick command")
	}
}

func TestShiftTabNavigatesBackward(t *testing.T) {
	m, _, _ := loadedGrades(t)

	first := m.cursor
	m, _ = press(t, m, "tab")
	if m.cursor == first {
		t.Fatal("tab should move the cursor right")
	}
	m, _ = press(t, m, "shift+tab")
	if m.cursor != first {
		t.Errorf("shift+tab should move back to %v, got %v", first, m.cursor)
	}

	// In edit mode shift+tab commits and moves left.
	m, _ = press(t, m, "tab", "enter")
	if m.mode != ModeEdit {
		t.Fatalf("mode = %v, want ModeEdit", m.mode)
	}
	m.cellInput.SetValue("42")
	m, _ = press(t, m, "shift+tab")
	if m.mode != ModeNormal {
		t.Fatalf("mode = %v, want ModeNormal after commit", m.mode)
	}
	if m.cursor != first {
		t.Errorf("shift+tab commit should move left to %v, got %v", first, m.cursor)
	}
	cell, _ := m.store.Cell(grid.Coord{Student: 10, Col: grid.ColumnKey{Subject: 2}})
	if cell.Value != "42" {
		t.Errorf("committed value = %q, want 42", cell.Value)
	}
}

func TestDebounceTickStartsSaveAndResolves(t *testing.T) {
	m, repo, clock := loadedGrades(t)

	coord := grid.Coord{Student: 10, Col: grid.ColumnKey{Subject: 1}}
	m.store.SetValue(coord, "95")
	m.coord.NoteEdit()

	// Before the window passes the tick is a no-op.
	updated, cmd := m.Update(commands.DebounceTickMsg{At: clock.now()})
	m = updated.(Model)
	if cmd != nil {
		t.Fatal("save must not start before the debounce window")
	}

	clock.step(m.coord.Window())
	updated, cmd = m.Update(commands.DebounceTickMsg{At: clock.now()})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected a save command")
	}

	msg := cmd()
	result, ok := msg.(commands.SaveResultMsg)
	if !ok {
		t.Fatalf("expected SaveResultMsg, got %T", msg)
	}
	updated, _ = m.Update(result)
	m = updated.(Model)

	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 saved batch, got %d", len(repo.saved))
	}
	cell, _ := m.store.Cell(coord)
	if cell.State() != grid.StateClean {
		t.Errorf("cell state = %v, want Clean", cell.State())
	}
	if cell.Baseline != "95" {
		t.Errorf("baseline = %q, want 95", cell.Baseline)
	}
}

func TestSaveFailureKeepsEditsAndShowsError(t *testing.T) {
	m, repo, clock := loadedGrades(t)
	repo.failNext = errors.New("disk full")

	coord := grid.Coord{Student: 10, Col: grid.ColumnKey{Subject: 1}}
	m.store.SetValue(coord, "95")
	m.coord.NoteEdit()
	clock.step(m.coord.Window())

	updated, cmd := m.Update(commands.DebounceTickMsg{At: clock.now()})
	m = updated.(Model)
	updated, _ = m.Update(cmd().(commands.SaveResultMsg))
	m = updated.(Model)

	cell, _ := m.store.Cell(coord)
	if cell.State() != grid.StateFailed {
		t.Errorf("cell state = %v, want Failed", cell.State())
	}
	if cell.Value != "95" {
		t.Errorf("edit must be kept, got %q", cell.Value)
	}
	if m.statusMsg == "" {
		t.Error("expected an error status message")
	}
}

func TestAttendanceMarkKeysAdvanceCursor(t *testing.T) {
	m, _, _ := loadedAttendance(t)

	first := m.cursor
	m, _ = press(t, m, "a")

	cell, _ := m.store.Cell(first)
	if cell.Value != grid.MarkAbsent {
		t.Errorf("expected absence mark, got %q", cell.Value)
	}
	if m.cursor == first {
		t.Error("cursor should advance after a mark")
	}
	if m.store.PendingCount() != 1 {
		t.Errorf("expected 1 pending cell, got %d", m.store.PendingCount())
	}

	m, _ = press(t, m, "p")
	if m.store.PendingCount() != 2 {
		t.Errorf("expected 2 pending cells, got %d", m.store.PendingCount())
	}
}

func TestPasteStagesAndCommits(t *testing.T) {
	m, repo, _ := loadedAttendance(t)

	updated, _ := m.Update(commands.ClipboardMsg{Text: "A\tP\n\tA"})
	m = updated.(Model)

	if m.mode != ModePaste {
		t.Fatalf("mode = %v, want ModePaste", m.mode)
	}
	if m.store.StagedCount() != 3 {
		t.Fatalf("expected 3 staged cells, got %d", m.store.StagedCount())
	}
	if m.store.Regime() != grid.RegimePaste {
		t.Error("store should be in paste regime")
	}

	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("expected a commit command")
	}
	result, ok := cmd().(commands.CommitResultMsg)
	if !ok {
		t.Fatal("expected CommitResultMsg")
	}
	updated, _ = m.Update(result)
	m = updated.(Model)

	if m.mode != ModeNormal {
		t.Errorf("mode = %v, want ModeNormal after commit", m.mode)
	}
	if m.store.Regime() != grid.RegimeAutoSave {
		t.Error("store should return to auto-save regime")
	}
	if len(repo.saved) != 1 || len(repo.saved[0]) != 3 {
		t.Fatalf("expected one batch of 3 changes, got %+v", repo.saved)
	}
}

func TestHandEditDuringPasteStaysStaged(t *testing.T) {
	m, repo, _ := loadedGrades(t)

	updated, _ := m.Update(commands.ClipboardMsg{Text: "90\n70"})
	m = updated.(Model)
	if m.mode != ModePaste || m.store.StagedCount() != 2 {
		t.Fatalf("expected 2 staged cells in paste mode, got %d in %v", m.store.StagedCount(), m.mode)
	}

	// Correct the pasted 90 by hand before committing.
	m, _ = press(t, m, "i")
	if m.mode != ModeEdit {
		t.Fatalf("mode = %v, want ModeEdit", m.mode)
	}
	m.cellInput.SetValue("75")
	m, _ = press(t, m, "enter")

	if m.mode != ModePaste {
		t.Fatalf("editor must return to paste mode, got %v", m.mode)
	}
	cell, _ := m.store.Cell(grid.Coord{Student: 10, Col: grid.ColumnKey{Subject: 1}})
	if cell.Origin != grid.OriginManual {
		t.Errorf("hand edit must be tagged manual, got %v", cell.Origin)
	}
	if m.store.StagedCount() != 2 {
		t.Errorf("correction must stay in the staged patch, got %d", m.store.StagedCount())
	}

	m, cmd := press(t, m, "enter")
	updated, _ = m.Update(cmd().(commands.CommitResultMsg))
	m = updated.(Model)

	if len(repo.saved) != 1 {
		t.Fatalf("expected one committed batch, got %d", len(repo.saved))
	}
	values := make(map[grid.Coord]string)
	for _, ch := range repo.saved[0] {
		values[ch.Coord] = ch.Value
	}
	if v := values[grid.Coord{Student: 10, Col: grid.ColumnKey{Subject: 1}}]; v != "75" {
		t.Errorf("committed batch must carry the correction, got %q", v)
	}
}

func TestAttendanceCorrectionDuringPaste(t *testing.T) {
	m, _, _ := loadedAttendance(t)

	updated, _ := m.Update(commands.ClipboardMsg{Text: "A"})
	m = updated.(Model)
	staged := m.cursor

	m, _ = press(t, m, "p")
	cell, _ := m.store.Cell(staged)
	if cell.Value != grid.MarkPermission {
		t.Errorf("mark key must overwrite the pasted mark, got %q", cell.Value)
	}
	if cell.Origin != grid.OriginManual {
		t.Errorf("corrected mark must be tagged manual, got %v", cell.Origin)
	}
	if m.mode != ModePaste || m.store.StagedCount() != 1 {
		t.Errorf("correction must stay staged, got %d in %v", m.store.StagedCount(), m.mode)
	}
}

func TestPendingEditResumesAfterPasteCancel(t *testing.T) {
	m, _, _ := loadedGrades(t)

	// An edit is waiting on its debounce window when a paste opens.
	m.store.SetValue(grid.Coord{Student: 11, Col: grid.ColumnKey{Subject: 2}}, "70")
	m.coord.NoteEdit()

	updated, _ := m.Update(commands.ClipboardMsg{Text: "90"})
	m = updated.(Model)
	if m.mode != ModePaste {
		t.Fatalf("mode = %v, want ModePaste", m.mode)
	}

	m, cmd := press(t, m, "esc")
	if m.store.Regime() != grid.RegimeAutoSave {
		t.Fatal("cancel must restore the auto-save regime")
	}
	if m.store.PendingCount() != 1 {
		t.Fatalf("pre-paste edit must stay pending, got %d", m.store.PendingCount())
	}
	if _, armed := m.coord.Deadline(); !armed {
		t.Error("debounce timer must re-arm for the pending edit")
	}
	if cmd == nil {
		t.Error("expected a debounce tick to be scheduled")
	}
}

func TestPasteCancelRestoresBaselines(t *testing.T) {
	m, _, _ := loadedAttendance(t)

	updated, _ := m.Update(commands.ClipboardMsg{Text: "A\tA"})
	m = updated.(Model)
	if m.store.StagedCount() != 2 {
		t.Fatalf("expected 2 staged cells, got %d", m.store.StagedCount())
	}

	m, _ = press(t, m, "esc")
	if m.mode != ModeNormal {
		t.Errorf("mode = %v, want ModeNormal", m.mode)
	}
	if m.store.Dirty() {
		t.Error("cancel should leave the grid clean")
	}
}

func TestQuitWithCleanGridIsImmediate(t *testing.T) {
	m, _, _ := loadedGrades(t)

	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg for a clean grid")
	}
}

func TestQuitWithDirtyGridFlushesFirst(t *testing.T) {
	m, repo, _ := loadedGrades(t)

	coord := grid.Coord{Student: 10, Col: grid.ColumnKey{Subject: 1}}
	m.store.SetValue(coord, "99")
	m.coord.NoteEdit()

	m, cmd := press(t, m, "q")
	if m.mode != ModeLeave {
		t.Fatalf("mode = %v, want ModeLeave", m.mode)
	}
	if cmd == nil {
		t.Fatal("expected a flush save command")
	}

	result, ok := cmd().(commands.SaveResultMsg)
	if !ok {
		t.Fatal("expected SaveResultMsg")
	}
	updated, cmd := m.Update(result)
	m = updated.(Model)

	if len(repo.saved) != 1 {
		t.Fatalf("expected the flush batch to be saved, got %d", len(repo.saved))
	}
	if cmd == nil {
		t.Fatal("expected quit after the drain")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg once the grid is clean")
	}
}

func TestQuitBlockedByStagedPaste(t *testing.T) {
	m, _, _ := loadedAttendance(t)

	updated, _ := m.Update(commands.ClipboardMsg{Text: "A"})
	m = updated.(Model)

	m, _ = press(t, m, "q")
	if m.mode != ModePaste {
		t.Errorf("mode = %v, want ModePaste (quit blocked)", m.mode)
	}
}

func TestReadOnlyCellCannotBeEdited(t *testing.T) {
	repo := &fakeRepo{gradeSnap: gradeSnapshot()}
	repo.gradeSnap.Cols[1].Editable = false
	cfg := config.Default()
	m := *NewGrades(repo, cfg, roster.Class{ID: 1}, "2026-T1")

	updated, _ := m.Update(commands.GridLoadedMsg{Snapshot: repo.gradeSnap})
	m = updated.(Model)

	m, _ = press(t, m, "l") // onto the ENG column
	m, _ = press(t, m, "enter")
	if m.mode != ModeNormal {
		t.Errorf("read-only cell must not enter edit mode, got %v", m.mode)
	}
}

func TestGradingScaleFromConfig(t *testing.T) {
	cfg := config.Default()
	scale := gradingScale(cfg)

	if len(scale.Bands) != len(cfg.Grading.Bands) {
		t.Fatalf("expected %d bands, got %d", len(cfg.Grading.Bands), len(scale.Bands))
	}
	if scale.Fail != cfg.Grading.Fail {
		t.Errorf("fail letter = %q, want %q", scale.Fail, cfg.Grading.Fail)
	}
}
