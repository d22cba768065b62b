package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create a demo class with students and subjects",
		Long: `Populate an empty database with a demo class so the grids have
something to show. Does nothing if any class already exists.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			seeder, ok := a.repo.(interface {
				Seed(ctx context.Context) error
			})
			if !ok {
				return fmt.Errorf("seeding requires the SQLite store")
			}

			if err := seeder.Seed(context.Background()); err != nil {
				return fmt.Errorf("seeding: %w", err)
			}

			fmt.Println("Seeded demo class. Run 'markbook' to open the grade grid.")
			return nil
		},
	}
}
