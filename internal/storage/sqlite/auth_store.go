package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/codedojo/codedojo/internal/domain"
	"github.com/google/uuid"
)

// AuthStore implements auth.Repository backed by SQLite.
type AuthStore struct {
	db *DB
}

// NewAuthStore creates a new SQLite-backed auth store.
func NewAuthStore(db *DB) *AuthStore {
	return &AuthStore{db: db}
}

// CreateUser inserts a user and returns the generated ID.
func (s *AuthStore) CreateUser(ctx context.Context, user *domain.User) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.Email, user.Name, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}
	return id, nil
}

// GetUserByEmail returns the user with the given email, or nil when absent.
func (s *AuthStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// GetUserByID returns the user with the given ID.
func (s *AuthStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// CreateSession inserts an auth session.
func (s *AuthStore) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_sessions (id, user_id, token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		session.ID.String(), session.UserID, session.Token,
		session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSessionByToken returns the session with the given token.
func (s *AuthStore) GetSessionByToken(ctx context.Context, token string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, expires_at, created_at
		FROM auth_sessions WHERE token = ?`, token)

	var session domain.Session
	var id string
	err := row.Scan(&id, &session.UserID, &session.Token, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	session.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse session id %q: %w", id, err)
	}
	return &session, nil
}

// DeleteSession removes a session by ID.
func (s *AuthStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM auth_sessions WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes every expired session.
func (s *AuthStore) DeleteExpiredSessions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM auth_sessions WHERE expires_at < datetime('now')")
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
