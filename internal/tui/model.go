package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvelasco/markbook/internal/config"
	"github.com/nvelasco/markbook/internal/grid"
	"github.com/nvelasco/markbook/internal/roster"
	"github.com/nvelasco/markbook/internal/tui/commands"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeEdit        // Editing one cell through the text input
	ModePaste       // A pasted patch is staged, awaiting commit or cancel
	ModeLeave       // Quit requested, waiting for saves to drain
)

// Screen identifies which grid is open.
type Screen int

const (
	ScreenGrades Screen = iota
	ScreenAttendance
)

// Model is the main TUI model.
type Model struct {
	// Dependencies
	repo   roster.Repository
	config *config.Config

	// Styles
	styles *Styles

	// Grid state
	store *grid.Store
	coord *grid.Coordinator
	saver grid.Saver

	// What is being edited
	screen Screen
	class  roster.Class
	term   roster.Term
	month  string
	scale  grid.Scale

	// State
	cursor  grid.Coord
	mode    Mode
	loading bool

	// Components
	cellInput textinput.Model

	// Terminal dimensions and scrolling
	width     int
	height    int
	rowOffset int
	colOffset int

	// Messages
	statusMsg  string    // Temporary status/error message
	statusTime time.Time // When to clear message

	// Error state
	err error
}

// NewGrades creates a TUI model for the score grid of a class and term.
func NewGrades(repo roster.Repository, cfg *config.Config, class roster.Class, term roster.Term) *Model {
	m := newModel(repo, cfg, class)
	m.screen = ScreenGrades
	m.term = term
	m.store = grid.NewStore(grid.ScoreRules{})
	m.coord = grid.NewCoordinator(m.store, cfg.Autosave.GradesWindow())
	m.saver = roster.ScoreSaver{Repo: repo, ClassID: class.ID, Term: term}
	return m
}

// NewAttendance creates a TUI model for the attendance grid of a class
// and month.
func NewAttendance(repo roster.Repository, cfg *config.Config, class roster.Class, month string) *Model {
	m := newModel(repo, cfg, class)
	m.screen = ScreenAttendance
	m.month = month
	m.store = grid.NewStore(grid.AttendanceRules{})
	m.coord = grid.NewCoordinator(m.store, cfg.Autosave.AttendanceWindow())
	m.saver = roster.AttendanceSaver{Repo: repo, ClassID: class.ID, Month: month}
	return m
}

func newModel(repo roster.Repository, cfg *config.Config, class roster.Class) *Model {
	ti := textinput.New()
	ti.CharLimit = 8
	ti.Prompt = ""

	return &Model{
		repo:      repo,
		config:    cfg,
		styles:    NewStyles(cfg.UI.Theme),
		class:     class,
		scale:     gradingScale(cfg),
		mode:      ModeNormal,
		loading:   true,
		cellInput: ti,
	}
}

// gradingScale converts the configured band table to a grid scale.
func gradingScale(cfg *config.Config) grid.Scale {
	bands := make([]grid.Band, len(cfg.Grading.Bands))
	for i, b := range cfg.Grading.Bands {
		bands[i] = grid.Band{Min: b.Min, Letter: b.Letter}
	}
	return grid.Scale{Bands: bands, Fail: cfg.Grading.Fail}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if m.screen == ScreenAttendance {
		return commands.LoadAttendance(m.repo, m.class.ID, m.month, m.config.Sessions.Labels)
	}
	return commands.LoadGrades(m.repo, m.class.ID, m.term)
}

// RunGrades starts the score-grid TUI.
func RunGrades(repo roster.Repository, cfg *config.Config, class roster.Class, term roster.Term, debug bool) error {
	return run(NewGrades(repo, cfg, class, term), debug)
}

// RunAttendance starts the attendance-grid TUI.
func RunAttendance(repo roster.Repository, cfg *config.Config, class roster.Class, month string, debug bool) error {
	return run(NewAttendance(repo, cfg, class, month), debug)
}

func run(m *Model, debug bool) error {
	if err := InitDebugLogger(debug); err != nil {
		return err
	}
	defer CloseDebugLogger()

	p := tea.NewProgram(*m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// setStatus shows a temporary status message.
func (m *Model) setStatus(msg string, d time.Duration) {
	m.statusMsg = msg
	m.statusTime = time.Now().Add(d)
}
