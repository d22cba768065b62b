package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nvelasco/markbook/internal/config"
	"github.com/nvelasco/markbook/internal/grid"
	"github.com/nvelasco/markbook/internal/roster"
)

func (a *App) summaryCmd() *cobra.Command {
	var term string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the class results summary for a term",
		Long: `Print the per-student weighted averages, letter grades and class
ranks for a term, computed over all recorded scores.`,
		Example: `  markbook summary
  markbook summary --class="Form 3A" --term=2026-T1`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()

			class, err := a.resolveClass(ctx)
			if err != nil {
				return err
			}
			if term == "" {
				term = a.termOrCurrent()
			}

			snap, err := a.repo.GradeSnapshot(ctx, class.ID, roster.Term(term))
			if err != nil {
				return fmt.Errorf("loading grades: %w", err)
			}

			printSummary(class, term, snap, gradingScale(a.config))
			return nil
		},
	}

	cmd.Flags().StringVar(&term, "term", "", "Term, e.g. 2026-T1 (defaults to the current term)")
	return cmd
}

// gradingScale converts the configured band table to a grid scale.
func gradingScale(cfg *config.Config) grid.Scale {
	bands := make([]grid.Band, len(cfg.Grading.Bands))
	for i, b := range cfg.Grading.Bands {
		bands[i] = grid.Band{Min: b.Min, Letter: b.Letter}
	}
	return grid.Scale{Bands: bands, Fail: cfg.Grading.Fail}
}

// printSummary renders the ranked results table.
func printSummary(class roster.Class, term string, snap grid.Snapshot, scale grid.Scale) {
	fmt.Printf("%s\n\n", formatHeader(fmt.Sprintf("%s · %s", class.Name, term)))

	if len(snap.Rows) == 0 {
		fmt.Println("No students in this class.")
		return
	}

	store := grid.NewStore(grid.ScoreRules{})
	store.Init(snap)
	aggs := grid.Aggregates(store, scale)

	headers := []string{"Rank", "Student", "Scored", "Average", "Grade"}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		avg := "-"
		letter := "-"
		if agg.Scored > 0 {
			avg = fmt.Sprintf("%.1f", agg.Average)
			letter = agg.Letter
		}
		rows = append(rows, []string{
			strconv.Itoa(agg.Rank),
			agg.Row.Label,
			strconv.Itoa(agg.Scored),
			avg,
			letter,
		})
	}

	rightAlign := map[int]bool{0: true, 2: true, 3: true}
	for i, line := range formatTable(headers, rows, rightAlign) {
		if i == 0 {
			fmt.Println(formatHeader(line))
			continue
		}
		agg := aggs[i-1]
		switch {
		case agg.Scored == 0:
			fmt.Println(formatMuted(line))
		case agg.Letter == scale.Fail:
			fmt.Println(formatFail(line))
		default:
			fmt.Println(formatPass(line))
		}
	}
}
