package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"docvoice/pkg/db"
	"docvoice/pkg/model"
)

// Store defines the repository interface.
// It composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	JobStore
	StateStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Jobs ---

func (s *SQLiteStore) SaveJob(ctx context.Context, j *model.Job) error {
	createdAt := j.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
		j.CreatedAt = createdAt
	}

	query := `INSERT OR REPLACE INTO jobs (
		id, input_path, model, voice, prompt, status, output_path, duration_ms, error, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		j.ID, j.InputPath, j.Model, j.Voice, j.Prompt,
		j.Status, j.OutputPath, j.DurationMs, j.Error, createdAt,
	)
	return err
}

func (s *SQLiteStore) UpdateJob(ctx context.Context, j *model.Job) error {
	query := `UPDATE jobs SET status = ?, output_path = ?, duration_ms = ?, error = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, j.Status, j.OutputPath, j.DurationMs, j.Error, j.ID)
	return err
}

func (s *SQLiteStore) GetJob(ctx context.Context, id string) (*model.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input_path, model, voice, prompt, status, output_path, duration_ms, error, created_at
		 FROM jobs WHERE id = ?`, id)

	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return j, nil
}

func (s *SQLiteStore) ListJobs(ctx context.Context, limit int) ([]*model.Job, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_path, model, voice, prompt, status, output_path, duration_ms, error, created_at
		 FROM jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, j)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (*model.Job, error) {
	var j model.Job
	var outputPath, jobErr sql.NullString

	err := r.Scan(
		&j.ID, &j.InputPath, &j.Model, &j.Voice, &j.Prompt,
		&j.Status, &outputPath, &j.DurationMs, &jobErr, &j.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if outputPath.Valid {
		j.OutputPath = outputPath.String
	}
	if jobErr.Valid {
		j.Error = jobErr.String
	}
	return &j, nil
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now())
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}
