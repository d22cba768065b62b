package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS classes (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS students (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			class_id INTEGER NOT NULL REFERENCES classes(id),
			name     TEXT NOT NULL,
			number   TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS subjects (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			class_id  INTEGER NOT NULL REFERENCES classes(id),
			name      TEXT NOT NULL,
			code      TEXT NOT NULL,
			max_score REAL NOT NULL DEFAULT 100,
			weight    REAL NOT NULL DEFAULT 1,
			editable  INTEGER NOT NULL DEFAULT 1,
			position  INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS scores (
			student_id INTEGER NOT NULL REFERENCES students(id),
			subject_id INTEGER NOT NULL REFERENCES subjects(id),
			term       TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (student_id, subject_id, term)
		);

		CREATE TABLE IF NOT EXISTS attendance (
			student_id INTEGER NOT NULL REFERENCES students(id),
			month      TEXT NOT NULL,
			day        INTEGER NOT NULL,
			session    TEXT NOT NULL,
			mark       TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (student_id, month, day, session)
		);

		CREATE INDEX IF NOT EXISTS idx_students_class ON students(class_id, position);
		CREATE INDEX IF NOT EXISTS idx_subjects_class ON subjects(class_id, position);
		CREATE INDEX IF NOT EXISTS idx_scores_term ON scores(term);
		CREATE INDEX IF NOT EXISTS idx_attendance_month ON attendance(month);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
