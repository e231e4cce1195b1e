// This package implements the print history log. Finished jobs are
// recorded in a local SQLite database so earlier prints can be reviewed
// from the command line.
package history

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

//go:embed schema.sql
var schema string

const (
	KindImage = "image"
	KindText  = "text"

	StatusComplete = "complete"
	StatusError    = "error"
)

// Job is one recorded print attempt.
type Job struct {
	Uuid       uuid.UUID
	Kind       string
	Source     string
	Status     string
	Detail     string
	Bytes      int
	StartedAt  time.Time
	FinishedAt time.Time
}

type Repository struct {
	Db *sql.DB
}

// Open opens the database at the given path, creating it and the schema
// if needed.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("Couldn't open database:\n%w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("Couldn't initialise database:\n%w", err)
	}
	return &Repository{Db: db}, nil
}

func (r *Repository) Close() error {
	return r.Db.Close()
}

// Record stores a finished job. A job without a UUID is assigned a fresh
// one.
func (r *Repository) Record(j *Job) error {
	if j.Uuid == uuid.Nil {
		j.Uuid = uuid.New()
	}

	_, err := r.Db.Exec(`
	  INSERT INTO print_job(uuid, kind, source, status, detail, bytes, started_at, finished_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.Uuid.String(), j.Kind, j.Source, j.Status, j.Detail, j.Bytes,
		j.StartedAt, j.FinishedAt)
	if err != nil {
		return fmt.Errorf("Failed to insert into print_job:\n%w", err)
	}
	return nil
}

// Recent returns the latest jobs, newest first.
func (r *Repository) Recent(limit int) ([]Job, error) {
	rows, err := r.Db.Query(`
	  SELECT uuid, kind, source, status, detail, bytes, started_at, finished_at
	  FROM print_job
	  ORDER BY finished_at DESC, id DESC
	  LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("Query execution failed:\n%w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		j := Job{}
		var uuidString string
		if err := rows.Scan(&uuidString, &j.Kind, &j.Source, &j.Status, &j.Detail,
			&j.Bytes, &j.StartedAt, &j.FinishedAt); err != nil {
			return nil, fmt.Errorf("Row scanning failed:\n%w", err)
		}
		j.Uuid = uuid.MustParse(uuidString)
		jobs = append(jobs, j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Error iterating rows:\n%w", err)
	}

	return jobs, nil
}

// Get returns the job with the given UUID, or nil if there is none.
func (r *Repository) Get(u uuid.UUID) (*Job, error) {
	row := r.Db.QueryRow(`
	  SELECT uuid, kind, source, status, detail, bytes, started_at, finished_at
	  FROM print_job
	  WHERE uuid = ?`, u.String())

	j := Job{}
	var uuidString string
	if err := row.Scan(&uuidString, &j.Kind, &j.Source, &j.Status, &j.Detail,
		&j.Bytes, &j.StartedAt, &j.FinishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		} else {
			return nil, fmt.Errorf("Failed to read print job:\n%w", err)
		}
	}
	j.Uuid = uuid.MustParse(uuidString)

	return &j, nil
}
