package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codedojo/codedojo/internal/domain"
	"github.com/google/uuid"
)

func createTestUser(t *testing.T, store *AuthStore, email string) int64 {
	t.Helper()
	now := time.Now().UTC()
	id, err := store.CreateUser(context.Background(), &domain.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "$2a$10$fakehash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser(%q) error: %v", email, err)
	}
	return id
}

func TestAuthStore_Users(t *testing.T) {
	ctx := context.Background()
	store := NewAuthStore(openTestDB(t))

	id := createTestUser(t, store, "learner@example.com")

	byEmail, err := store.GetUserByEmail(ctx, "learner@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error: %v", err)
	}
	if byEmail == nil || byEmail.ID != id {
		t.Errorf("GetUserByEmail() = %+v, want id %d", byEmail, id)
	}

	missing, err := store.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail(missing) error: %v", err)
	}
	if missing != nil {
		t.Errorf("GetUserByEmail(missing) = %+v, want nil", missing)
	}

	byID, err := store.GetUserByID(ctx, id)
	if err != nil {
		t.Fatalf("GetUserByID() error: %v", err)
	}
	if byID.Email != "learner@example.com" {
		t.Errorf("Email = %q", byID.Email)
	}

	if _, err := store.GetUserByID(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByID(9999) error = %v, want ErrNotFound", err)
	}
}

func TestAuthStore_Sessions(t *testing.T) {
	ctx := context.Background()
	store := NewAuthStore(openTestDB(t))
	userID := createTestUser(t, store, "learner@example.com")

	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     "token-abc",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}

	got, err := store.GetSessionByToken(ctx, "token-abc")
	if err != nil {
		t.Fatalf("GetSessionByToken() error: %v", err)
	}
	if got.ID != session.ID || got.UserID != userID {
		t.Errorf("session roundtrip mismatch: %+v", got)
	}

	if err := store.DeleteSession(ctx, session.ID); err != nil {
		t.Fatalf("DeleteSession() error: %v", err)
	}
	if _, err := store.GetSessionByToken(ctx, "token-abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted session lookup error = %v, want ErrNotFound", err)
	}
}

func TestAuthStore_DeleteExpiredSessions(t *testing.T) {
	ctx := context.Background()
	store := NewAuthStore(openTestDB(t))
	userID := createTestUser(t, store, "learner@example.com")

	expired := &domain.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Hour).UTC(),
		CreatedAt: time.Now().Add(-2 * time.Hour).UTC(),
	}
	live := &domain.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     "live-token",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
		CreatedAt: time.Now().UTC(),
	}
	for _, s := range []*domain.Session{expired, live} {
		if err := store.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession() error: %v", err)
		}
	}

	if err := store.DeleteExpiredSessions(ctx); err != nil {
		t.Fatalf("DeleteExpiredSessions() error: %v", err)
	}

	if _, err := store.GetSessionByToken(ctx, "expired-token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired session survived cleanup, error = %v", err)
	}
	if _, err := store.GetSessionByToken(ctx, "live-token"); err != nil {
		t.Errorf("live session removed by cleanup: %v", err)
	}
}
