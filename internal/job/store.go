package job

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists jobs in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) a SQLite database at the given path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode keeps readers from blocking the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS jobs (
			id           TEXT PRIMARY KEY,
			source       TEXT NOT NULL,
			target       TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'pending',
			error        TEXT NOT NULL DEFAULT '',
			file_count   INTEGER NOT NULL DEFAULT 0,
			project_type TEXT NOT NULL DEFAULT '',
			char_count   INTEGER NOT NULL DEFAULT 0,
			created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
			updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_jobs_created_at
			ON jobs(created_at);
	`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new job.
func (s *Store) Create(j *Job) error {
	_, err := s.db.Exec(
		`INSERT INTO jobs (id, source, target, status, error, file_count, project_type, char_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Source, j.Target, j.Status, j.Error,
		j.FileCount, j.ProjectType, j.CharCount, j.CreatedAt, j.UpdatedAt,
	)
	return err
}

// Get retrieves a job by ID.
func (s *Store) Get(id string) (*Job, error) {
	row := s.db.QueryRow(
		`SELECT id, source, target, status, error, file_count, project_type, char_count, created_at, updated_at
		 FROM jobs WHERE id = ?`, id,
	)
	return scanJob(row)
}

// List returns jobs ordered by creation time, newest first. A non-positive
// limit returns everything.
func (s *Store) List(limit int) ([]*Job, error) {
	query := `SELECT id, source, target, status, error, file_count, project_type, char_count, created_at, updated_at
	          FROM jobs ORDER BY created_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Update updates the mutable fields of a job.
func (s *Store) Update(j *Job) error {
	j.UpdatedAt = time.Now().UTC()
	_, err := s.db.Exec(
		`UPDATE jobs SET
			status = ?, error = ?, file_count = ?, project_type = ?, char_count = ?, updated_at = ?
		 WHERE id = ?`,
		j.Status, j.Error, j.FileCount, j.ProjectType, j.CharCount, j.UpdatedAt, j.ID,
	)
	return err
}

// --- Scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanJob(row scannable) (*Job, error) {
	j := &Job{}
	err := row.Scan(
		&j.ID, &j.Source, &j.Target, &j.Status, &j.Error,
		&j.FileCount, &j.ProjectType, &j.CharCount, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}
