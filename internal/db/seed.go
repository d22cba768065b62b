package db

import (
	"context"
	"fmt"

	"github.com/nvelasco/markbook/internal/roster"
)

// Seed populates an empty database with a demo class so the grids have
// something to show on first run. It is a no-op if any class exists.
func (s *SQLite) Seed(ctx context.Context) error {
	classes, err := s.Classes(ctx)
	if err != nil {
		return err
	}
	if len(classes) > 0 {
		return nil
	}

	class, err := s.ClassByName(ctx, "Form 3A")
	if err != nil {
		return err
	}

	students := []string{
		"Amara Okafor",
		"Brice Tchoumi",
		"Chidi Eze",
		"Divine Ngono",
		"Esther Mbarga",
		"Franklin Abena",
	}
	for i, name := range students {
		_, err := s.AddStudent(ctx, roster.Student{
			ClassID: class.ID,
			Name:    name,
			Number:  fmt.Sprintf("F3A-%03d", i+1),
		})
		if err != nil {
			return err
		}
	}

	subjects := []roster.Subject{
		{Name: "Mathematics", Code: "MATH", MaxScore: 100, Weight: 4, Editable: true},
		{Name: "English", Code: "ENG", MaxScore: 100, Weight: 3, Editable: true},
		{Name: "Physics", Code: "PHY", MaxScore: 100, Weight: 3, Editable: true},
		{Name: "History", Code: "HIST", MaxScore: 50, Weight: 2, Editable: true},
	}
	for _, sub := range subjects {
		sub.ClassID = class.ID
		if _, err := s.AddSubject(ctx, sub); err != nil {
			return err
		}
	}

	return nil
}
