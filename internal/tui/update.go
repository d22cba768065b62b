package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvelasco/markbook/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorVisible()
		return m, nil

	case commands.GridLoadedMsg:
		m.store.Init(msg.Snapshot)
		m.loading = false
		if first, ok := m.store.First(); ok {
			m.cursor = first
		}
		return m, nil

	case commands.DebounceTickMsg:
		// A stale tick from a superseded deadline finds nothing due.
		if changes, ok := m.coord.StartSave(); ok {
			LogSaveStart(changes)
			return m, commands.SaveCells(m.saver, changes)
		}
		return m, nil

	case commands.SaveResultMsg:
		return m.handleSaveResult(msg)

	case commands.CommitResultMsg:
		if msg.Err != nil {
			LogError("commit", msg.Err)
			m.store.FailCommit(msg.Changes, msg.Err.Error())
			m.setStatus(fmt.Sprintf("Commit failed: %v", msg.Err), 5*time.Second)
			return m, commands.ClearStatusAfter(5 * time.Second)
		}
		m.store.FinishCommit(msg.Changes)
		m.mode = ModeNormal
		m.setStatus(fmt.Sprintf("Committed %d cells", len(msg.Changes)), 3*time.Second)
		cmds := []tea.Cmd{commands.ClearStatusAfter(3 * time.Second)}
		// Edits pending from before the paste resume auto-saving.
		if m.store.PendingCount() > 0 {
			cmds = append(cmds, m.noteEdit())
		}
		return m, tea.Batch(cmds...)

	case commands.ClipboardMsg:
		if msg.Err != nil {
			m.setStatus("Clipboard unavailable", 3*time.Second)
			return m, commands.ClearStatusAfter(3 * time.Second)
		}
		return m.stagePaste(msg.Text)

	case commands.ErrMsg:
		m.err = msg.Err
		LogError("tui", msg.Err)
		m.setStatus(fmt.Sprintf("Error: %v", msg.Err), 5*time.Second)
		return m, commands.ClearStatusAfter(5 * time.Second)

	case commands.ClearStatusMsg:
		if time.Now().After(m.statusTime) {
			m.statusMsg = ""
		}
		return m, nil
	}

	// Cursor blink and other component messages while editing a cell.
	if m.mode == ModeEdit {
		var cmd tea.Cmd
		m.cellInput, cmd = m.cellInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleSaveResult resolves a finished auto-save cycle and, if leaving,
// keeps draining until the grid is clean.
func (m Model) handleSaveResult(msg commands.SaveResultMsg) (tea.Model, tea.Cmd) {
	m.coord.Resolve(msg.Changes, msg.Err)
	LogSaveResult(msg.Changes, msg.Err)

	var cmds []tea.Cmd
	if msg.Err != nil {
		m.setStatus(fmt.Sprintf("Save failed: %v (edits kept, press s to retry)", msg.Err), 5*time.Second)
		cmds = append(cmds, commands.ClearStatusAfter(5*time.Second))
	}

	// Diverged edits re-armed the timer for a fresh cycle.
	if deadline, armed := m.coord.Deadline(); armed {
		cmds = append(cmds, commands.DebounceTick(time.Until(deadline)))
	}

	if m.mode == ModeLeave {
		if msg.Err != nil {
			// Do not quit past a failed save; the user decides.
			m.mode = ModeNormal
			return m, tea.Batch(cmds...)
		}
		if changes, ok := m.coord.Flush(); ok {
			return m, commands.SaveCells(m.saver, changes)
		}
		if !m.store.Dirty() && !m.coord.InFlight() {
			return m, tea.Quit
		}
	}

	return m, tea.Batch(cmds...)
}

// stagePaste parses clipboard text and stages it anchored at the cursor.
func (m Model) stagePaste(text string) (tea.Model, tea.Cmd) {
	n := m.store.Paste(m.cursor, text)
	if n == 0 {
		m.setStatus("Nothing to paste", 3*time.Second)
		return m, commands.ClearStatusAfter(3 * time.Second)
	}
	m.mode = ModePaste
	m.setStatus(fmt.Sprintf("%d cells staged: Enter to commit, Esc to cancel", n), 10*time.Second)
	return m, commands.ClearStatusAfter(10 * time.Second)
}
