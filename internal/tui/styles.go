// Package tui provides the terminal user interface for markbook.
package tui

import "github.com/charmbracelet/lipgloss"

// palette holds the raw colors a style set is derived from.
type palette struct {
	bg        lipgloss.Color
	bgCursor  lipgloss.Color
	fg        lipgloss.Color
	fgMuted   lipgloss.Color
	accent    lipgloss.Color
	warning   lipgloss.Color
	danger    lipgloss.Color
	staged    lipgloss.Color
	savingFg  lipgloss.Color
	absentFg  lipgloss.Color
	headerBg  lipgloss.Color
	statusBg  lipgloss.Color
	editeeBg  lipgloss.Color
	disabled  lipgloss.Color
	rankOkFg  lipgloss.Color
	rankLowFg lipgloss.Color
}

func darkPalette() palette {
	return palette{
		bg:        lipgloss.Color("#1e1e2e"),
		bgCursor:  lipgloss.Color("#45475a"),
		fg:        lipgloss.Color("#cdd6f4"),
		fgMuted:   lipgloss.Color("#6c7086"),
		accent:    lipgloss.Color("#89b4fa"),
		warning:   lipgloss.Color("#f9e2af"),
		danger:    lipgloss.Color("#f38ba8"),
		staged:    lipgloss.Color("#313244"),
		savingFg:  lipgloss.Color("#94e2d5"),
		absentFg:  lipgloss.Color("#fab387"),
		headerBg:  lipgloss.Color("#313244"),
		statusBg:  lipgloss.Color("#313244"),
		editeeBg:  lipgloss.Color("#585b70"),
		disabled:  lipgloss.Color("#45475a"),
		rankOkFg:  lipgloss.Color("#a6e3a1"),
		rankLowFg: lipgloss.Color("#f38ba8"),
	}
}

func lightPalette() palette {
	return palette{
		bg:        lipgloss.Color("#eff1f5"),
		bgCursor:  lipgloss.Color("#bcc0cc"),
		fg:        lipgloss.Color("#4c4f69"),
		fgMuted:   lipgloss.Color("#9ca0b0"),
		accent:    lipgloss.Color("#1e66f5"),
		warning:   lipgloss.Color("#df8e1d"),
		danger:    lipgloss.Color("#d20f39"),
		staged:    lipgloss.Color("#dce0e8"),
		savingFg:  lipgloss.Color("#179299"),
		absentFg:  lipgloss.Color("#fe640b"),
		headerBg:  lipgloss.Color("#dce0e8"),
		statusBg:  lipgloss.Color("#dce0e8"),
		editeeBg:  lipgloss.Color("#acb0be"),
		disabled:  lipgloss.Color("#ccd0da"),
		rankOkFg:  lipgloss.Color("#40a02b"),
		rankLowFg: lipgloss.Color("#d20f39"),
	}
}

// Styles holds all lipgloss styles for the TUI, derived from a palette.
type Styles struct {
	colorBg      lipgloss.Color
	colorFg      lipgloss.Color
	colorAccent  lipgloss.Color
	colorWarning lipgloss.Color
	colorDanger  lipgloss.Color

	TitleStyle     lipgloss.Style
	HeaderStyle    lipgloss.Style
	RowLabelStyle  lipgloss.Style
	CursorRowStyle lipgloss.Style

	// Cell styles by save state
	CellCleanStyle      lipgloss.Style
	CellModifiedStyle   lipgloss.Style
	CellSavingStyle     lipgloss.Style
	CellFailedStyle     lipgloss.Style
	CellStagedStyle     lipgloss.Style
	CellStagedEditStyle lipgloss.Style
	CellWarningStyle    lipgloss.Style
	CellDisabledStyle   lipgloss.Style
	CellAbsentStyle     lipgloss.Style
	CursorStyle         lipgloss.Style
	EditingStyle        lipgloss.Style

	// Derived stat columns
	StatStyle     lipgloss.Style
	RankTopStyle  lipgloss.Style
	RankTailStyle lipgloss.Style

	StatusStyle  lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	HelpStyle    lipgloss.Style
}

// NewStyles creates a new Styles instance for the named theme.
func NewStyles(theme string) *Styles {
	p := darkPalette()
	if theme == "light" {
		p = lightPalette()
	}

	s := &Styles{
		colorBg:      p.bg,
		colorFg:      p.fg,
		colorAccent:  p.accent,
		colorWarning: p.warning,
		colorDanger:  p.danger,
	}

	base := lipgloss.NewStyle().Foreground(p.fg).Background(p.bg)

	s.TitleStyle = base.Foreground(p.accent).Bold(true)
	s.HeaderStyle = lipgloss.NewStyle().Foreground(p.fg).Background(p.headerBg).Bold(true)
	s.RowLabelStyle = base.Foreground(p.fgMuted)
	s.CursorRowStyle = base.Foreground(p.fg)

	s.CellCleanStyle = base
	s.CellModifiedStyle = base.Foreground(p.accent)
	s.CellSavingStyle = base.Foreground(p.savingFg).Italic(true)
	s.CellFailedStyle = base.Foreground(p.danger).Bold(true)
	s.CellStagedStyle = lipgloss.NewStyle().Foreground(p.accent).Background(p.staged)
	s.CellStagedEditStyle = lipgloss.NewStyle().Foreground(p.warning).Background(p.staged).Bold(true)
	s.CellWarningStyle = base.Foreground(p.warning)
	s.CellDisabledStyle = lipgloss.NewStyle().Foreground(p.fgMuted).Background(p.disabled)
	s.CellAbsentStyle = base.Foreground(p.absentFg)
	s.CursorStyle = lipgloss.NewStyle().Foreground(p.fg).Background(p.bgCursor).Bold(true)
	s.EditingStyle = lipgloss.NewStyle().Foreground(p.fg).Background(p.editeeBg).Bold(true)

	s.StatStyle = base.Foreground(p.fgMuted)
	s.RankTopStyle = base.Foreground(p.rankOkFg)
	s.RankTailStyle = base.Foreground(p.rankLowFg)

	s.StatusStyle = lipgloss.NewStyle().Foreground(p.fg).Background(p.statusBg)
	s.WarningStyle = lipgloss.NewStyle().Foreground(p.warning).Background(p.statusBg)
	s.ErrorStyle = lipgloss.NewStyle().Foreground(p.danger).Background(p.statusBg).Bold(true)
	s.HelpStyle = base.Foreground(p.fgMuted)

	return s
}
