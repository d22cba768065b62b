// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvelasco/markbook/internal/grid"
	"github.com/nvelasco/markbook/internal/roster"
)

// SQLite implements roster.Repository using SQLite.
type SQLite struct {
	db *sql.DB
}

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Classes returns every class ordered by name.
func (s *SQLite) Classes(ctx context.Context) ([]roster.Class, error) {
	query := `SELECT id, name FROM classes ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying classes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var classes []roster.Class
	for rows.Next() {
		var c roster.Class
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning class: %w", err)
		}
		classes = append(classes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating classes: %w", err)
	}

	return classes, nil
}

// ClassByName resolves a class by its exact name, creating it if absent.
func (s *SQLite) ClassByName(ctx context.Context, name string) (roster.Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return roster.Class{}, roster.ErrEmptyName
	}

	var c roster.Class
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM classes WHERE name = ?`, name).
		Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		result, err := s.db.ExecContext(ctx, `INSERT INTO classes (name) VALUES (?)`, name)
		if err != nil {
			return roster.Class{}, fmt.Errorf("inserting class: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return roster.Class{}, fmt.Errorf("getting last insert id: %w", err)
		}
		return roster.Class{ID: id, Name: name}, nil
	}
	if err != nil {
		return roster.Class{}, fmt.Errorf("querying class: %w", err)
	}

	return c, nil
}

// Students returns the students of a class in roster order.
func (s *SQLite) Students(ctx context.Context, classID int64) ([]roster.Student, error) {
	query := `
		SELECT id, class_id, name, number
		FROM students
		WHERE class_id = ?
		ORDER BY position, id
	`

	rows, err := s.db.QueryContext(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("querying students: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var students []roster.Student
	for rows.Next() {
		var st roster.Student
		if err := rows.Scan(&st.ID, &st.ClassID, &st.Name, &st.Number); err != nil {
			return nil, fmt.Errorf("scanning student: %w", err)
		}
		students = append(students, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating students: %w", err)
	}

	return students, nil
}

// Subjects returns the subjects of a class in display order.
func (s *SQLite) Subjects(ctx context.Context, classID int64) ([]roster.Subject, error) {
	query := `
		SELECT id, class_id, name, code, max_score, weight, editable
		FROM subjects
		WHERE class_id = ?
		ORDER BY position, id
	`

	rows, err := s.db.QueryContext(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("querying subjects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subjects []roster.Subject
	for rows.Next() {
		var sub roster.Subject
		if err := rows.Scan(&sub.ID, &sub.ClassID, &sub.Name, &sub.Code, &sub.MaxScore, &sub.Weight, &sub.Editable); err != nil {
			return nil, fmt.Errorf("scanning subject: %w", err)
		}
		subjects = append(subjects, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subjects: %w", err)
	}

	return subjects, nil
}

// AddStudent inserts a student at the end of the roster and returns it
// with the ID set.
func (s *SQLite) AddStudent(ctx context.Context, st roster.Student) (roster.Student, error) {
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return roster.Student{}, roster.ErrEmptyName
	}

	query := `
		INSERT INTO students (class_id, name, number, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM students WHERE class_id = ?))
	`

	result, err := s.db.ExecContext(ctx, query, st.ClassID, st.Name, st.Number, st.ClassID)
	if err != nil {
		return roster.Student{}, fmt.Errorf("inserting student: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return roster.Student{}, fmt.Errorf("getting last insert id: %w", err)
	}
	st.ID = id

	return st, nil
}

// AddSubject inserts a subject at the end of the display order and
// returns it with the ID set.
func (s *SQLite) AddSubject(ctx context.Context, sub roster.Subject) (roster.Subject, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Name == "" {
		return roster.Subject{}, roster.ErrEmptyName
	}
	if sub.Code == "" {
		sub.Code = strings.ToUpper(sub.Name)
	}

	query := `
		INSERT INTO subjects (class_id, name, code, max_score, weight, editable, position)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM subjects WHERE class_id = ?))
	`

	result, err := s.db.ExecContext(ctx, query,
		sub.ClassID, sub.Name, sub.Code, sub.MaxScore, sub.Weight, sub.Editable, sub.ClassID)
	if err != nil {
		return roster.Subject{}, fmt.Errorf("inserting subject: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return roster.Subject{}, fmt.Errorf("getting last insert id: %w", err)
	}
	sub.ID = id

	return sub, nil
}

// GradeSnapshot loads the score grid for a class and term.
func (s *SQLite) GradeSnapshot(ctx context.Context, classID int64, term roster.Term) (grid.Snapshot, error) {
	students, err := s.Students(ctx, classID)
	if err != nil {
		return grid.Snapshot{}, err
	}
	subjects, err := s.Subjects(ctx, classID)
	if err != nil {
		return grid.Snapshot{}, err
	}

	query := `
		SELECT sc.student_id, sc.subject_id, sc.value
		FROM scores sc
		JOIN students st ON st.id = sc.student_id
		WHERE st.class_id = ? AND sc.term = ?
	`

	rows, err := s.db.QueryContext(ctx, query, classID, string(term))
	if err != nil {
		return grid.Snapshot{}, fmt.Errorf("querying scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[grid.Coord]string)
	for rows.Next() {
		var (
			studentID int64
			subjectID int64
			value     string
		)
		if err := rows.Scan(&studentID, &subjectID, &value); err != nil {
			return grid.Snapshot{}, fmt.Errorf("scanning score: %w", err)
		}
		values[grid.Coord{Student: studentID, Col: grid.ColumnKey{Subject: subjectID}}] = value
	}

	if err := rows.Err(); err != nil {
		return grid.Snapshot{}, fmt.Errorf("iterating scores: %w", err)
	}

	return grid.Snapshot{
		Rows:   roster.GradeRows(students),
		Cols:   roster.GradeColumns(subjects),
		Values: values,
	}, nil
}

// AttendanceSnapshot loads the attendance grid for a class and month.
func (s *SQLite) AttendanceSnapshot(ctx context.Context, classID int64, month string, sessions []string) (grid.Snapshot, error) {
	days, err := roster.SchoolDays(month)
	if err != nil {
		return grid.Snapshot{}, err
	}

	students, err := s.Students(ctx, classID)
	if err != nil {
		return grid.Snapshot{}, err
	}

	query := `
		SELECT a.student_id, a.day, a.session, a.mark
		FROM attendance a
		JOIN students st ON st.id = a.student_id
		WHERE st.class_id = ? AND a.month = ?
	`

	rows, err := s.db.QueryContext(ctx, query, classID, month)
	if err != nil {
		return grid.Snapshot{}, fmt.Errorf("querying attendance: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[grid.Coord]string)
	for rows.Next() {
		var (
			studentID int64
			day       int
			session   string
			mark      string
		)
		if err := rows.Scan(&studentID, &day, &session, &mark); err != nil {
			return grid.Snapshot{}, fmt.Errorf("scanning attendance: %w", err)
		}
		values[grid.Coord{Student: studentID, Col: grid.ColumnKey{Day: day, Session: grid.Session(session)}}] = mark
	}

	if err := rows.Err(); err != nil {
		return grid.Snapshot{}, fmt.Errorf("iterating attendance: %w", err)
	}

	return grid.Snapshot{
		Rows:   roster.GradeRows(students),
		Cols:   roster.AttendanceColumns(days, sessions),
		Values: values,
	}, nil
}

// SaveScores persists score cell changes for a class and term in a
// single transaction. An empty value deletes the stored score.
func (s *SQLite) SaveScores(ctx context.Context, classID int64, term roster.Term, changes []grid.Change) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `
		INSERT INTO scores (student_id, subject_id, term, value, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(student_id, subject_id, term)
		DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	remove := `DELETE FROM scores WHERE student_id = ? AND subject_id = ? AND term = ?`

	for _, ch := range changes {
		if ch.Value == "" {
			if _, err := tx.ExecContext(ctx, remove, ch.Coord.Student, ch.Coord.Col.Subject, string(term)); err != nil {
				return fmt.Errorf("deleting score %s: %w", ch.Coord, err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, upsert, ch.Coord.Student, ch.Coord.Col.Subject, string(term), ch.Value); err != nil {
			return fmt.Errorf("upserting score %s: %w", ch.Coord, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// SaveAttendance persists attendance cell changes for a class and month
// in a single transaction. An empty mark (present) deletes the stored
// row so only absences and permissions are recorded.
func (s *SQLite) SaveAttendance(ctx context.Context, classID int64, month string, changes []grid.Change) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `
		INSERT INTO attendance (student_id, month, day, session, mark, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(student_id, month, day, session)
		DO UPDATE SET mark = excluded.mark, updated_at = CURRENT_TIMESTAMP
	`
	remove := `DELETE FROM attendance WHERE student_id = ? AND month = ? AND day = ? AND session = ?`

	for _, ch := range changes {
		c := ch.Coord
		if ch.Value == grid.MarkPresent {
			if _, err := tx.ExecContext(ctx, remove, c.Student, month, c.Col.Day, string(c.Col.Session)); err != nil {
				return fmt.Errorf("deleting mark %s: %w", c, err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, upsert, c.Student, month, c.Col.Day, string(c.Col.Session), ch.Value); err != nil {
			return fmt.Errorf("upserting mark %s: %w", c, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}
