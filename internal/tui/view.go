package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/nvelasco/markbook/internal/grid"
)

const (
	gradeCellWidth      = 7
	attendanceCellWidth = 4
	minLabelWidth       = 8
	maxLabelWidth       = 20
	chromeLines         = 5 // title, header, separator, status, help
)

// View renders the TUI.
func (m Model) View() string {
	if m.loading {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.styles.TitleStyle.Render(m.title()))
	b.WriteString("\n")
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	rows := m.store.Rows()
	stats := m.rowStats()
	top := m.rowOffset
	bottom := min(len(rows), top+m.visibleRows())
	for i := top; i < bottom; i++ {
		b.WriteString(m.renderRow(i, stats))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.styles.HelpStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) title() string {
	switch m.screen {
	case ScreenAttendance:
		return fmt.Sprintf("markbook · %s · attendance %s", m.class.Name, m.month)
	default:
		return fmt.Sprintf("markbook · %s · grades %s", m.class.Name, m.term)
	}
}

func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString(m.styles.HeaderStyle.Render(padCell("", m.labelWidth())))

	cols := m.store.Cols()
	cw := m.cellWidth()
	left := m.colOffset
	right := min(len(cols), left+m.visibleCols())
	for i := left; i < right; i++ {
		b.WriteString(m.styles.HeaderStyle.Render(padCell(cols[i].Label, cw)))
	}

	for _, label := range m.statLabels() {
		b.WriteString(m.styles.HeaderStyle.Render(padCell(label, gradeCellWidth)))
	}
	return b.String()
}

func (m Model) renderRow(row int, stats map[int64]grid.RowAggregate) string {
	rows := m.store.Rows()
	cols := m.store.Cols()
	cw := m.cellWidth()

	labelStyle := m.styles.RowLabelStyle
	if cursorRow, _, ok := m.store.Position(m.cursor); ok && cursorRow == row {
		labelStyle = m.styles.CursorRowStyle
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(padCell(rows[row].Label, m.labelWidth())))

	left := m.colOffset
	right := min(len(cols), left+m.visibleCols())
	for col := left; col < right; col++ {
		coord, _ := m.store.CoordAt(row, col)
		b.WriteString(m.renderCell(coord, cw))
	}

	b.WriteString(m.renderRowStats(rows[row].ID, stats))
	return b.String()
}

// renderCell renders one cell with the style of its save state.
func (m Model) renderCell(coord grid.Coord, width int) string {
	cell, ok := m.store.Cell(coord)
	if !ok {
		return padCell("", width)
	}

	isCursor := coord == m.cursor
	if isCursor && m.mode == ModeEdit {
		return m.styles.EditingStyle.Render(padCell(m.cellInput.View(), width))
	}

	text := cell.Value
	if m.screen == ScreenAttendance && text == grid.MarkPresent {
		text = "·"
	}

	style := m.cellStyle(cell)
	if isCursor {
		style = m.styles.CursorStyle
	}
	return style.Render(padCell(text, width))
}

func (m Model) cellStyle(cell grid.Cell) lipgloss.Style {
	if !cell.Editable {
		return m.styles.CellDisabledStyle
	}
	// Hand edits made while reviewing a paste read differently from the
	// pasted fields themselves.
	switch cell.Origin {
	case grid.OriginManual:
		return m.styles.CellStagedEditStyle
	case grid.OriginPaste:
		return m.styles.CellStagedStyle
	}
	switch cell.State() {
	case grid.StateSaving:
		return m.styles.CellSavingStyle
	case grid.StateFailed:
		return m.styles.CellFailedStyle
	case grid.StateModified:
		return m.styles.CellModifiedStyle
	}
	if cell.Warning != "" {
		return m.styles.CellWarningStyle
	}
	if m.screen == ScreenAttendance && cell.Value == grid.MarkAbsent {
		return m.styles.CellAbsentStyle
	}
	return m.styles.CellCleanStyle
}

// rowStats computes the derived columns for the visible grid.
func (m Model) rowStats() map[int64]grid.RowAggregate {
	aggs := grid.Aggregates(m.store, m.scale)
	byRow := make(map[int64]grid.RowAggregate, len(aggs))
	for _, a := range aggs {
		byRow[a.Row.ID] = a
	}
	return byRow
}

func (m Model) statLabels() []string {
	if m.screen == ScreenAttendance {
		return []string{"Abs", "Perm"}
	}
	return []string{"Avg", "Grade", "Rank"}
}

func (m Model) renderRowStats(rowID int64, stats map[int64]grid.RowAggregate) string {
	a, ok := stats[rowID]
	if !ok {
		return ""
	}

	var b strings.Builder
	if m.screen == ScreenAttendance {
		b.WriteString(m.styles.StatStyle.Render(padCell(fmt.Sprintf("%d", a.Absences), gradeCellWidth)))
		b.WriteString(m.styles.StatStyle.Render(padCell(fmt.Sprintf("%d", a.Permissions), gradeCellWidth)))
		return b.String()
	}

	avg := "-"
	letter := "-"
	if a.Scored > 0 {
		avg = fmt.Sprintf("%.1f", a.Average)
		letter = a.Letter
	}
	rankStyle := m.styles.RankTopStyle
	if a.Rank > len(stats)/2 {
		rankStyle = m.styles.RankTailStyle
	}
	b.WriteString(m.styles.StatStyle.Render(padCell(avg, gradeCellWidth)))
	b.WriteString(m.styles.StatStyle.Render(padCell(letter, gradeCellWidth)))
	b.WriteString(rankStyle.Render(padCell(fmt.Sprintf("%d", a.Rank), gradeCellWidth)))
	return b.String()
}

func (m Model) renderStatus() string {
	if m.statusMsg != "" {
		style := m.styles.StatusStyle
		if m.err != nil || strings.HasPrefix(m.statusMsg, "Save failed") || strings.HasPrefix(m.statusMsg, "Commit failed") {
			style = m.styles.ErrorStyle
		}
		return style.Render(m.statusMsg)
	}

	// Cursor cell diagnostics take precedence over counters.
	if cell, ok := m.store.Cell(m.cursor); ok {
		if cell.Err != "" {
			return m.styles.ErrorStyle.Render("Save failed: " + cell.Err)
		}
		if cell.Warning != "" {
			return m.styles.WarningStyle.Render(cell.Warning)
		}
	}

	var parts []string
	if n := m.store.StagedCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d staged", n))
	}
	if n := m.store.PendingCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unsaved", n))
	}
	if m.coord.InFlight() {
		parts = append(parts, "saving...")
	}
	if len(parts) == 0 {
		parts = append(parts, "all saved")
	}
	return m.styles.StatusStyle.Render(strings.Join(parts, " · "))
}

func (m Model) helpText() string {
	switch m.mode {
	case ModeEdit:
		return "Enter: next row · Tab: next col · Esc: cancel"
	case ModePaste:
		if m.screen == ScreenAttendance {
			return "Enter: commit · Esc: cancel · a/p/Space: correct · hjkl: review"
		}
		return "Enter: commit · Esc: cancel · i: correct a cell · hjkl: review"
	case ModeLeave:
		return "Saving... Esc: stay"
	}
	if m.screen == ScreenAttendance {
		return "a: absent · p: permission · Space: present · v: paste · s: save now · q: quit"
	}
	return "Enter: edit · hjkl: move · v: paste · s: save now · q: quit"
}

// labelWidth sizes the row-label column to the longest student name.
func (m Model) labelWidth() int {
	w := minLabelWidth
	for _, r := range m.store.Rows() {
		if rw := runewidth.StringWidth(r.Label) + 1; rw > w {
			w = rw
		}
	}
	return min(w, maxLabelWidth)
}

func (m Model) cellWidth() int {
	if m.screen == ScreenAttendance {
		return attendanceCellWidth
	}
	return gradeCellWidth
}

// visibleRows returns how many grid rows fit in the terminal.
func (m Model) visibleRows() int {
	if m.height <= 0 {
		return 20
	}
	return max(1, m.height-chromeLines)
}

// visibleCols returns how many grid columns fit beside the labels and
// derived stat columns.
func (m Model) visibleCols() int {
	if m.width <= 0 {
		return 40
	}
	statW := len(m.statLabels()) * gradeCellWidth
	return max(1, (m.width-m.labelWidth()-statW)/m.cellWidth())
}

// ensureCursorVisible scrolls the viewport to keep the cursor on screen.
func (m *Model) ensureCursorVisible() {
	row, col, ok := m.store.Position(m.cursor)
	if !ok {
		return
	}

	if row < m.rowOffset {
		m.rowOffset = row
	}
	if vis := m.visibleRows(); row >= m.rowOffset+vis {
		m.rowOffset = row - vis + 1
	}

	if col < m.colOffset {
		m.colOffset = col
	}
	if vis := m.visibleCols(); col >= m.colOffset+vis {
		m.colOffset = col - vis + 1
	}
}

// padCell pads or truncates text to the column width, rune aware.
func padCell(s string, width int) string {
	if runewidth.StringWidth(s) >= width {
		s = runewidth.Truncate(s, width-1, "…")
	}
	return runewidth.FillRight(s, width)
}
