// Package ui provides the command line interface for markbook.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvelasco/markbook/internal/config"
	"github.com/nvelasco/markbook/internal/db"
	"github.com/nvelasco/markbook/internal/roster"
	"github.com/nvelasco/markbook/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo    roster.Repository
	config  *config.Config
	root    *cobra.Command
	debug   bool // Enable debug logging
	noColor bool

	className string
	term      string
	month     string
}

// NewApp creates a new CLI application with the given repository and config.
// A nil repository is opened lazily from the configured database path.
func NewApp(repo roster.Repository, cfg *config.Config) *App {
	a := &App{repo: repo, config: cfg}

	a.root = &cobra.Command{
		Use:   "markbook",
		Short: "A terminal gradebook for bulk mark entry",
		Long: `Markbook is a terminal gradebook and attendance register.

It opens a spreadsheet-like grid over a class roster: scores and
attendance marks are auto-saved per cell as you type, and whole
columns can be pasted straight from a spreadsheet.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if a.noColor {
				DisableColor()
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			class, err := a.resolveClass(context.Background())
			if err != nil {
				return err
			}
			return tui.RunGrades(a.repo, a.config, class, roster.Term(a.termOrCurrent()), a.debug)
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to markbook-debug.log)")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	a.root.PersistentFlags().StringVar(&a.className, "class", "", "Class name (defaults to the first class)")
	a.root.Flags().StringVar(&a.term, "term", "", "Term, e.g. 2026-T1 (defaults to the current term)")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.attendanceCmd())
	a.root.AddCommand(a.summaryCmd())
	a.root.AddCommand(a.rosterCmd())
	a.root.AddCommand(a.seedCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("markbook %s (commit: %s)\n", Version, Commit)
		},
	}
}

func (a *App) attendanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Open the attendance grid",
		Long: `Open the attendance register for a class and month.

Sessions are marked per school day: a for absent, p for absent with
permission, Space for present. Columns from a spreadsheet can be
pasted with v.`,
		Example: `  markbook attendance
  markbook attendance --class="Form 3A" --month=2026-06`,
		RunE: func(_ *cobra.Command, _ []string) error {
			month := a.month
			if month == "" {
				month = time.Now().Format("2006-01")
			}
			if _, err := roster.ParseMonth(month); err != nil {
				return err
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}
			class, err := a.resolveClass(context.Background())
			if err != nil {
				return err
			}
			return tui.RunAttendance(a.repo, a.config, class, month, a.debug)
		},
	}

	cmd.Flags().StringVar(&a.month, "month", "", "Month (YYYY-MM, defaults to the current month)")
	return cmd
}

// ensureRepo opens the configured database if no repository was injected.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}
	repo, err := db.New(a.config.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.repo = repo
	return nil
}

// resolveClass finds the class named by --class, or the first class.
func (a *App) resolveClass(ctx context.Context) (roster.Class, error) {
	if a.className != "" {
		return a.repo.ClassByName(ctx, a.className)
	}

	classes, err := a.repo.Classes(ctx)
	if err != nil {
		return roster.Class{}, err
	}
	if len(classes) == 0 {
		return roster.Class{}, fmt.Errorf("no classes found; run 'markbook seed' or 'markbook roster add-student' first")
	}
	return classes[0], nil
}

// termOrCurrent returns --term, or the term the current date falls in.
func (a *App) termOrCurrent() string {
	if a.term != "" {
		return a.term
	}
	return CurrentTerm(time.Now())
}

// CurrentTerm maps a date to a school term: September to December is T1,
// January to March T2, April to August T3. The year is the calendar year
// of the date.
func CurrentTerm(now time.Time) string {
	switch {
	case now.Month() >= time.September:
		return fmt.Sprintf("%d-T1", now.Year())
	case now.Month() <= time.March:
		return fmt.Sprintf("%d-T2", now.Year())
	default:
		return fmt.Sprintf("%d-T3", now.Year())
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the repository if one was opened.
func (a *App) Close() error {
	if a.repo == nil {
		return nil
	}
	return a.repo.Close()
}
