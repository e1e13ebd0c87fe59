package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/codedojo/codedojo/internal/domain"
)

// PracticeStore persists saved playground submissions.
type PracticeStore struct {
	db *DB
}

// NewPracticeStore creates a new SQLite-backed practice store.
func NewPracticeStore(db *DB) *PracticeStore {
	return &PracticeStore{db: db}
}

// Create saves a practice and returns its ID.
func (s *PracticeStore) Create(ctx context.Context, practice *domain.Practice) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO user_practice (user_id, task_id, title, html_code, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		nullInt64(practice.UserID), nullInt64(practice.TaskID),
		practice.Title, practice.HTMLCode, time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert practice: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("practice insert id: %w", err)
	}
	return id, nil
}

// Get retrieves a practice by ID.
func (s *PracticeStore) Get(ctx context.Context, id int64) (*domain.Practice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, task_id, title, html_code, created_at
		FROM user_practice WHERE id = ?`, id)

	practice, err := scanPractice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get practice %d: %w", id, err)
	}
	return practice, nil
}

// List returns all practices, newest first.
func (s *PracticeStore) List(ctx context.Context) ([]domain.Practice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, task_id, title, html_code, created_at
		FROM user_practice
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list practices: %w", err)
	}
	defer rows.Close()

	var practices []domain.Practice
	for rows.Next() {
		practice, err := scanPractice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan practice: %w", err)
		}
		practices = append(practices, *practice)
	}
	return practices, rows.Err()
}

// Delete removes a practice. Returns ErrNotFound when no row matched.
func (s *PracticeStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM user_practice WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete practice %d: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPractice(row rowScanner) (*domain.Practice, error) {
	var p domain.Practice
	var userID, taskID sql.NullInt64
	err := row.Scan(&p.ID, &userID, &taskID, &p.Title, &p.HTMLCode, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		p.UserID = &userID.Int64
	}
	if taskID.Valid {
		p.TaskID = &taskID.Int64
	}
	return &p, nil
}

// nullInt64 converts a *int64 to sql.NullInt64 for nullable columns.
func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
