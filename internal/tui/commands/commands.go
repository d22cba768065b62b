// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvelasco/markbook/internal/grid"
	"github.com/nvelasco/markbook/internal/roster"
)

// GridLoadedMsg is sent when a grid snapshot is loaded.
type GridLoadedMsg struct {
	Snapshot grid.Snapshot
}

// SaveResultMsg is sent when a background auto-save cycle finishes.
type SaveResultMsg struct {
	Changes []grid.Change
	Err     error
}

// CommitResultMsg is sent when a staged paste commit finishes.
type CommitResultMsg struct {
	Changes []grid.Change
	Err     error
}

// ClipboardMsg carries the system clipboard contents for a paste.
type ClipboardMsg struct {
	Text string
	Err  error
}

// DebounceTickMsg fires when a debounce deadline may have passed.
type DebounceTickMsg struct {
	At time.Time
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadGrades loads the score grid for a class and term.
func LoadGrades(repo roster.Repository, classID int64, term roster.Term) tea.Cmd {
	return func() tea.Msg {
		snap, err := repo.GradeSnapshot(context.Background(), classID, term)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return GridLoadedMsg{Snapshot: snap}
	}
}

// LoadAttendance loads the attendance grid for a class and month.
func LoadAttendance(repo roster.Repository, classID int64, month string, sessions []string) tea.Cmd {
	return func() tea.Msg {
		snap, err := repo.AttendanceSnapshot(context.Background(), classID, month, sessions)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return GridLoadedMsg{Snapshot: snap}
	}
}

// SaveCells persists one auto-save batch in the background.
func SaveCells(saver grid.Saver, changes []grid.Change) tea.Cmd {
	return func() tea.Msg {
		err := saver.SaveCells(context.Background(), changes)
		return SaveResultMsg{Changes: changes, Err: err}
	}
}

// CommitStaged persists a staged paste patch in the background.
func CommitStaged(saver grid.Saver, changes []grid.Change) tea.Cmd {
	return func() tea.Msg {
		err := saver.SaveCells(context.Background(), changes)
		return CommitResultMsg{Changes: changes, Err: err}
	}
}

// ReadClipboard reads the system clipboard for a paste.
func ReadClipboard() tea.Cmd {
	return func() tea.Msg {
		text, err := clipboard.ReadAll()
		return ClipboardMsg{Text: text, Err: err}
	}
}

// DebounceTick schedules a wake-up for a debounce deadline.
func DebounceTick(d time.Duration) tea.Cmd {
	if d < 0 {
		d = 0
	}
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return DebounceTickMsg{At: t}
	})
}

// ClearStatusAfter schedules the status line to be cleared.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
