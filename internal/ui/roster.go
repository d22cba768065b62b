package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nvelasco/markbook/internal/roster"
)

func (a *App) rosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List or edit the class roster",
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.printRoster()
		},
	}

	cmd.AddCommand(a.addStudentCmd())
	cmd.AddCommand(a.addSubjectCmd())
	return cmd
}

func (a *App) printRoster() error {
	if err := a.ensureRepo(); err != nil {
		return err
	}
	ctx := context.Background()

	class, err := a.resolveClass(ctx)
	if err != nil {
		return err
	}

	students, err := a.repo.Students(ctx, class.ID)
	if err != nil {
		return fmt.Errorf("listing students: %w", err)
	}
	subjects, err := a.repo.Subjects(ctx, class.ID)
	if err != nil {
		return fmt.Errorf("listing subjects: %w", err)
	}

	fmt.Printf("%s\n\n", formatHeader(class.Name))

	fmt.Println(formatHeader("Students"))
	if len(students) == 0 {
		fmt.Println(formatMuted("  (none)"))
	}
	rows := make([][]string, 0, len(students))
	for i, s := range students {
		rows = append(rows, []string{strconv.Itoa(i + 1), s.Name, s.Number})
	}
	for _, line := range formatTable([]string{"#", "Name", "Number"}, rows, map[int]bool{0: true}) {
		fmt.Println("  " + line)
	}

	fmt.Println()
	fmt.Println(formatHeader("Subjects"))
	if len(subjects) == 0 {
		fmt.Println(formatMuted("  (none)"))
	}
	rows = rows[:0]
	for _, s := range subjects {
		editable := "yes"
		if !s.Editable {
			editable = "no"
		}
		rows = append(rows, []string{
			s.Code,
			s.Name,
			fmt.Sprintf("%.0f", s.MaxScore),
			fmt.Sprintf("%.0f", s.Weight),
			editable,
		})
	}
	for _, line := range formatTable([]string{"Code", "Name", "Max", "Weight", "Editable"}, rows, map[int]bool{2: true, 3: true}) {
		fmt.Println("  " + line)
	}

	return nil
}

func (a *App) addStudentCmd() *cobra.Command {
	var number string

	cmd := &cobra.Command{
		Use:   "add-student <name>",
		Short: "Add a student to the class",
		Example: `  markbook roster add-student "Amara Okafor"
  markbook roster add-student "Amara Okafor" --number=F3A-007 --class="Form 3A"`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()

			class, err := a.resolveClassOrCreate(ctx)
			if err != nil {
				return err
			}

			s, err := a.repo.AddStudent(ctx, roster.Student{
				ClassID: class.ID,
				Name:    args[0],
				Number:  number,
			})
			if err != nil {
				return fmt.Errorf("adding student: %w", err)
			}

			fmt.Printf("Added %s to %s (#%d)\n", s.Name, class.Name, s.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&number, "number", "", "Admission number")
	return cmd
}

func (a *App) addSubjectCmd() *cobra.Command {
	var (
		code     string
		maxScore float64
		weight   float64
	)

	cmd := &cobra.Command{
		Use:   "add-subject <name>",
		Short: "Add a subject to the class",
		Example: `  markbook roster add-subject Mathematics --code=MATH --max=100 --weight=4
  markbook roster add-subject History --max=50 --weight=2`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()

			class, err := a.resolveClassOrCreate(ctx)
			if err != nil {
				return err
			}

			s, err := a.repo.AddSubject(ctx, roster.Subject{
				ClassID:  class.ID,
				Name:     args[0],
				Code:     code,
				MaxScore: maxScore,
				Weight:   weight,
				Editable: true,
			})
			if err != nil {
				return fmt.Errorf("adding subject: %w", err)
			}

			fmt.Printf("Added %s (%s) to %s\n", s.Name, s.Code, class.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Short column code (defaults to the uppercased name)")
	cmd.Flags().Float64Var(&maxScore, "max", 100, "Maximum score")
	cmd.Flags().Float64Var(&weight, "weight", 1, "Weight in the term average")
	return cmd
}

// resolveClassOrCreate is resolveClass, but --class creates the class
// when it does not exist yet so rosters can be built from scratch.
func (a *App) resolveClassOrCreate(ctx context.Context) (roster.Class, error) {
	if a.className != "" {
		return a.repo.ClassByName(ctx, a.className)
	}

	classes, err := a.repo.Classes(ctx)
	if err != nil {
		return roster.Class{}, err
	}
	if len(classes) == 0 {
		return a.repo.ClassByName(ctx, "Default")
	}
	return classes[0], nil
}
