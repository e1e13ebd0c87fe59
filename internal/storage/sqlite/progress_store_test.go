package sqlite

import (
	"context"
	"testing"
	"time"
)

func TestProgressStore_UpsertAttempt(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewProgressStore(db)
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	// First attempt fails.
	if err := store.UpsertAttempt(ctx, 1, 1, false, 33, now); err != nil {
		t.Fatalf("UpsertAttempt() error: %v", err)
	}
	rows, err := store.ListTaskProgress(ctx, 1)
	if err != nil {
		t.Fatalf("ListTaskProgress() error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Attempts != 1 || row.Passes != 0 || row.BestScore != 33 {
		t.Errorf("after first attempt: %+v", row)
	}
	if row.CompletedAt != nil {
		t.Error("CompletedAt set by failing attempt")
	}

	// Passing attempt sets completed_at.
	later := now.Add(time.Hour)
	if err := store.UpsertAttempt(ctx, 1, 1, true, 100, later); err != nil {
		t.Fatalf("UpsertAttempt() error: %v", err)
	}
	rows, _ = store.ListTaskProgress(ctx, 1)
	row = rows[0]
	if row.Attempts != 2 || row.Passes != 1 || row.BestScore != 100 {
		t.Errorf("after passing attempt: %+v", row)
	}
	if row.CompletedAt == nil {
		t.Fatal("CompletedAt not set by passing attempt")
	}
	firstCompleted := *row.CompletedAt

	// Further attempts never move completed_at or lower best_score.
	for i, attempt := range []struct {
		passed bool
		score  int
	}{{false, 0}, {true, 80}} {
		stamp := later.Add(time.Duration(i+1) * time.Hour)
		if err := store.UpsertAttempt(ctx, 1, 1, attempt.passed, attempt.score, stamp); err != nil {
			t.Fatalf("UpsertAttempt() error: %v", err)
		}
	}
	rows, _ = store.ListTaskProgress(ctx, 1)
	row = rows[0]
	if row.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", row.Attempts)
	}
	if row.Passes != 2 {
		t.Errorf("Passes = %d, want 2", row.Passes)
	}
	if row.BestScore != 100 {
		t.Errorf("BestScore = %d, want 100", row.BestScore)
	}
	if !row.CompletedAt.Equal(firstCompleted) {
		t.Errorf("CompletedAt moved: %v -> %v", firstCompleted, *row.CompletedAt)
	}
}

func TestProgressStore_AttemptsAreKeyed(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewProgressStore(db)
	now := time.Now()

	// Same task, different users; same user, different tasks.
	_ = store.UpsertAttempt(ctx, 1, 1, true, 100, now)
	_ = store.UpsertAttempt(ctx, 2, 1, false, 40, now)
	_ = store.UpsertAttempt(ctx, 1, 2, false, 50, now)

	user1, _ := store.ListTaskProgress(ctx, 1)
	user2, _ := store.ListTaskProgress(ctx, 2)
	if len(user1) != 2 {
		t.Errorf("user 1 has %d rows, want 2", len(user1))
	}
	if len(user2) != 1 {
		t.Errorf("user 2 has %d rows, want 1", len(user2))
	}
	if user2[0].BestScore != 40 || user2[0].CompletedAt != nil {
		t.Errorf("user 2 row leaked state from user 1: %+v", user2[0])
	}
}

func TestProgressStore_DailyActivity(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewProgressStore(db)

	day1 := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 16, 23, 0, 0, 0, time.UTC)

	// Same day twice is a no-op.
	for _, stamp := range []time.Time{day1, day1.Add(5 * time.Hour), day2} {
		if err := store.RecordDailyActivity(ctx, 1, stamp); err != nil {
			t.Fatalf("RecordDailyActivity() error: %v", err)
		}
	}

	dates, err := store.ActivityDates(ctx, 1)
	if err != nil {
		t.Fatalf("ActivityDates() error: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("got %d dates, want 2", len(dates))
	}
	// Most recent first.
	if !dates[0].After(dates[1]) {
		t.Errorf("dates not descending: %v", dates)
	}
	if got := dates[0].Format("2006-01-02"); got != "2026-03-16" {
		t.Errorf("latest date = %s, want 2026-03-16", got)
	}
}

func TestProgressStore_InsertBadge(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewProgressStore(db)
	now := time.Now().UTC()

	created, err := store.InsertBadge(ctx, 1, 1, now)
	if err != nil {
		t.Fatalf("InsertBadge() error: %v", err)
	}
	if !created {
		t.Error("first insert should report created")
	}

	again, err := store.InsertBadge(ctx, 1, 1, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("InsertBadge() error: %v", err)
	}
	if again {
		t.Error("duplicate insert should report not created")
	}

	count, err := store.CountBadges(ctx, 1)
	if err != nil {
		t.Fatalf("CountBadges() error: %v", err)
	}
	if count != 1 {
		t.Errorf("badge count = %d, want 1", count)
	}

	badges, err := store.ListBadges(ctx, 1)
	if err != nil {
		t.Fatalf("ListBadges() error: %v", err)
	}
	if len(badges) != 1 {
		t.Fatalf("got %d badges, want 1", len(badges))
	}
	// Lesson 1 comes from the seed content.
	if badges[0].LessonTitle != "HTML Basics" {
		t.Errorf("LessonTitle = %q, want %q", badges[0].LessonTitle, "HTML Basics")
	}
}

func TestProgressStore_LessonMasteries(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewProgressStore(db)
	now := time.Now().UTC()

	// Seeded lesson 2 ("Links and Media") holds tasks 5 and 6.
	_ = store.UpsertAttempt(ctx, 1, 5, true, 100, now)

	masteries, err := store.LessonMasteries(ctx, 1)
	if err != nil {
		t.Fatalf("LessonMasteries() error: %v", err)
	}
	byLesson := make(map[int64]int)
	for _, m := range masteries {
		byLesson[m.LessonID] = m.CompletedTasks
		if m.LessonID == 2 && m.TotalTasks != 2 {
			t.Errorf("lesson 2 TotalTasks = %d, want 2", m.TotalTasks)
		}
		if m.Mastered() {
			t.Errorf("lesson %d reported mastered after one task", m.LessonID)
		}
	}
	if byLesson[2] != 1 {
		t.Errorf("lesson 2 CompletedTasks = %d, want 1", byLesson[2])
	}

	// Completing the second task masters the lesson.
	_ = store.UpsertAttempt(ctx, 1, 6, true, 90, now)
	masteries, _ = store.LessonMasteries(ctx, 1)
	mastered := 0
	for _, m := range masteries {
		if m.Mastered() {
			mastered++
			if m.LessonID != 2 {
				t.Errorf("unexpected mastered lesson %d", m.LessonID)
			}
		}
	}
	if mastered != 1 {
		t.Errorf("mastered lessons = %d, want 1", mastered)
	}
}

func TestProgressStore_Totals(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewProgressStore(db)
	now := time.Now().UTC()

	completed, attempts, err := store.Totals(ctx, 1)
	if err != nil {
		t.Fatalf("Totals() on empty ledger error: %v", err)
	}
	if completed != 0 || attempts != 0 {
		t.Errorf("empty ledger totals = (%d, %d), want (0, 0)", completed, attempts)
	}

	_ = store.UpsertAttempt(ctx, 1, 1, false, 50, now)
	_ = store.UpsertAttempt(ctx, 1, 1, true, 100, now)
	_ = store.UpsertAttempt(ctx, 1, 2, false, 30, now)

	completed, attempts, err = store.Totals(ctx, 1)
	if err != nil {
		t.Fatalf("Totals() error: %v", err)
	}
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}
