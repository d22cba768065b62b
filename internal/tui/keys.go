package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvelasco/markbook/internal/grid"
	"github.com/nvelasco/markbook/internal/tui/commands"
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	LogKeyPress(msg)

	// Global keys (work in all modes)
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	// Mode-specific handling
	switch m.mode {
	case ModeEdit:
		return m.handleEditKeys(msg)
	case ModePaste:
		return m.handlePasteKeys(msg)
	case ModeLeave:
		return m.handleLeaveKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m.requestLeave()

	// Navigation
	case "h", "left", "shift+tab":
		m.moveCursor(grid.DirLeft)
	case "l", "right", "tab":
		m.moveCursor(grid.DirRight)
	case "j", "down":
		m.moveCursor(grid.DirDown)
	case "k", "up":
		m.moveCursor(grid.DirUp)
	case "pgdown", "ctrl+d":
		for i := 0; i < m.visibleRows(); i++ {
			m.moveCursor(grid.DirDown)
		}
	case "pgup", "ctrl+u":
		for i := 0; i < m.visibleRows(); i++ {
			m.moveCursor(grid.DirUp)
		}

	// Paste from spreadsheet
	case "ctrl+v", "v":
		return m, commands.ReadClipboard()

	// Flush pending edits immediately
	case "s":
		if changes, ok := m.coord.Flush(); ok {
			LogSaveStart(changes)
			m.setStatus("Saving...", 2*time.Second)
			return m, commands.SaveCells(m.saver, changes)
		}
		return m, nil

	case "enter", "i":
		if m.screen == ScreenGrades {
			return m.beginEdit()
		}
		m.moveCursor(grid.DirDown)
		return m, nil
	}

	// Attendance marks are applied directly, no edit mode needed.
	if m.screen == ScreenAttendance {
		return m.handleMarkKeys(msg)
	}

	return m, nil
}

// handleMarkKeys applies attendance marks from single keystrokes and
// advances to the next cell.
func (m Model) handleMarkKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var mark string
	switch msg.String() {
	case "a":
		mark = grid.MarkAbsent
	case "p":
		mark = grid.MarkPermission
	case " ", "backspace", "x":
		mark = grid.MarkPresent
	default:
		return m, nil
	}

	if !m.store.SetValue(m.cursor, mark) {
		return m, nil
	}
	LogCellEdit(m.cursor, mark)
	cmd := m.noteEdit()
	m.moveCursor(grid.DirRight)
	return m, cmd
}

// handleEditKeys handles keys while a cell is being edited.
func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.commitEdit(grid.DirDown)
	case "tab":
		return m.commitEdit(grid.DirRight)
	case "shift+tab":
		return m.commitEdit(grid.DirLeft)
	case "up":
		return m.commitEdit(grid.DirUp)
	case "down":
		return m.commitEdit(grid.DirDown)
	case "esc":
		m.mode = m.gridMode()
		m.cellInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.cellInput, cmd = m.cellInput.Update(msg)
	return m, cmd
}

// handlePasteKeys handles keys while a pasted patch is staged.
func (m Model) handlePasteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "ctrl+s":
		changes, err := m.store.BeginCommit()
		if err != nil {
			m.mode = ModeNormal
			return m, nil
		}
		LogSaveStart(changes)
		m.setStatus("Committing...", 2*time.Second)
		return m, commands.CommitStaged(m.saver, changes)

	case "esc":
		if err := m.store.CancelStaged(); err == nil {
			m.mode = ModeNormal
			m.setStatus("Paste cancelled", 3*time.Second)
			cmds := []tea.Cmd{commands.ClearStatusAfter(3 * time.Second)}
			// Edits pending from before the paste resume auto-saving.
			if m.store.PendingCount() > 0 {
				cmds = append(cmds, m.noteEdit())
			}
			return m, tea.Batch(cmds...)
		}
		return m, nil

	case "q":
		m.setStatus("Staged paste: Enter to commit or Esc to cancel first", 3*time.Second)
		return m, commands.ClearStatusAfter(3 * time.Second)

	// A staged cell can still be corrected by hand before committing.
	case "i":
		if m.screen == ScreenGrades {
			return m.beginEdit()
		}

	// Navigation stays available for reviewing the staged patch.
	case "h", "left":
		m.moveCursor(grid.DirLeft)
	case "l", "right":
		m.moveCursor(grid.DirRight)
	case "j", "down":
		m.moveCursor(grid.DirDown)
	case "k", "up":
		m.moveCursor(grid.DirUp)
	}

	if m.screen == ScreenAttendance {
		return m.handleMarkKeys(msg)
	}

	return m, nil
}

// handleLeaveKeys handles keys while waiting for saves to drain on quit.
func (m Model) handleLeaveKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.mode = ModeNormal
		m.statusMsg = ""
		return m, nil
	}
	return m, nil
}

// requestLeave quits immediately when clean, otherwise flushes and waits.
func (m Model) requestLeave() (tea.Model, tea.Cmd) {
	if !m.store.Dirty() && !m.coord.InFlight() {
		return m, tea.Quit
	}

	if m.store.Regime() == grid.RegimePaste {
		m.setStatus("Staged paste: Enter to commit or Esc to cancel first", 3*time.Second)
		return m, commands.ClearStatusAfter(3 * time.Second)
	}

	m.mode = ModeLeave
	m.setStatus("Saving before exit... (Esc to stay)", 10*time.Second)
	if changes, ok := m.coord.Flush(); ok {
		LogSaveStart(changes)
		return m, commands.SaveCells(m.saver, changes)
	}
	// A save is already in flight; its resolution continues the drain.
	return m, nil
}

// beginEdit opens the text input over the cursor cell.
func (m Model) beginEdit() (tea.Model, tea.Cmd) {
	cell, ok := m.store.Cell(m.cursor)
	if !ok || !cell.Editable {
		m.setStatus("Cell is read-only", 2*time.Second)
		return m, commands.ClearStatusAfter(2 * time.Second)
	}

	m.mode = ModeEdit
	m.cellInput.SetValue(cell.Value)
	m.cellInput.CursorEnd()
	m.cellInput.Focus()
	return m, textinput.Blink
}

// commitEdit applies the edited value and moves the cursor.
func (m Model) commitEdit(d grid.Direction) (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.cellInput.Value())

	m.mode = m.gridMode()
	m.cellInput.Blur()

	cell, _ := m.store.Cell(m.cursor)
	if raw != cell.Value && !m.store.SetValue(m.cursor, raw) {
		m.setStatus(fmt.Sprintf("Invalid entry %q", raw), 3*time.Second)
		return m, commands.ClearStatusAfter(3 * time.Second)
	}

	LogCellEdit(m.cursor, raw)
	cmd := m.noteEdit()
	m.moveCursor(d)
	return m, cmd
}

// gridMode is the mode to return to when the cell editor closes: paste
// mode while a patch is staged, normal mode otherwise.
func (m Model) gridMode() Mode {
	if m.store.Regime() == grid.RegimePaste {
		return ModePaste
	}
	return ModeNormal
}

// noteEdit restarts the debounce timer and schedules its wake-up.
func (m *Model) noteEdit() tea.Cmd {
	m.coord.NoteEdit()
	if deadline, armed := m.coord.Deadline(); armed {
		return commands.DebounceTick(time.Until(deadline))
	}
	return nil
}

// moveCursor moves the cursor one cell, clamped at the grid edges.
func (m *Model) moveCursor(d grid.Direction) {
	next := m.store.Navigate(m.cursor, d)
	if next != m.cursor {
		m.cursor = next
		LogCursorMove(m.cursor)
	}
	m.ensureCursorVisible()
}
