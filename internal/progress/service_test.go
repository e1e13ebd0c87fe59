package progress

import (
	"context"
	"testing"
	"time"

	"github.com/codedojo/codedojo/internal/domain"
)

// fakeStore is an in-memory Store for service tests. It mirrors the
// upsert/insert-ignore semantics the SQLite store provides.
type fakeStore struct {
	progress   map[[2]int64]*domain.TaskProgress
	activity   map[int64]map[string]bool
	badges     map[[2]int64]time.Time
	masteries  []domain.LessonMastery
	badgeOrder [][2]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		progress: make(map[[2]int64]*domain.TaskProgress),
		activity: make(map[int64]map[string]bool),
		badges:   make(map[[2]int64]time.Time),
	}
}

func (f *fakeStore) UpsertAttempt(_ context.Context, userID, taskID int64, passed bool, score int, now time.Time) error {
	key := [2]int64{userID, taskID}
	row, ok := f.progress[key]
	if !ok {
		row = &domain.TaskProgress{UserID: userID, TaskID: taskID}
		f.progress[key] = row
	}
	row.Attempts++
	if passed {
		row.Passes++
		if row.CompletedAt == nil {
			at := now
			row.CompletedAt = &at
		}
	}
	if score > row.BestScore {
		row.BestScore = score
	}
	at := now
	row.LastAttemptAt = &at
	return nil
}

func (f *fakeStore) RecordDailyActivity(_ context.Context, userID int64, day time.Time) error {
	if f.activity[userID] == nil {
		f.activity[userID] = make(map[string]bool)
	}
	f.activity[userID][day.Format("2006-01-02")] = true
	return nil
}

func (f *fakeStore) ActivityDates(_ context.Context, userID int64) ([]time.Time, error) {
	var dates []time.Time
	for d := range f.activity[userID] {
		parsed, _ := time.Parse("2006-01-02", d)
		dates = append(dates, parsed)
	}
	// Most recent first.
	for i := 0; i < len(dates); i++ {
		for j := i + 1; j < len(dates); j++ {
			if dates[j].After(dates[i]) {
				dates[i], dates[j] = dates[j], dates[i]
			}
		}
	}
	return dates, nil
}

func (f *fakeStore) LessonMasteries(_ context.Context, _ int64) ([]domain.LessonMastery, error) {
	return f.masteries, nil
}

func (f *fakeStore) InsertBadge(_ context.Context, userID, lessonID int64, now time.Time) (bool, error) {
	key := [2]int64{userID, lessonID}
	if _, exists := f.badges[key]; exists {
		return false, nil
	}
	f.badges[key] = now
	f.badgeOrder = append(f.badgeOrder, key)
	return true, nil
}

func (f *fakeStore) ListTaskProgress(_ context.Context, userID int64) ([]domain.TaskProgress, error) {
	var rows []domain.TaskProgress
	for key, row := range f.progress {
		if key[0] == userID {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

func (f *fakeStore) ListBadges(_ context.Context, userID int64) ([]domain.LessonBadge, error) {
	var badges []domain.LessonBadge
	for _, key := range f.badgeOrder {
		if key[0] == userID {
			badges = append(badges, domain.LessonBadge{
				UserID: key[0], LessonID: key[1], AwardedAt: f.badges[key],
			})
		}
	}
	return badges, nil
}

func (f *fakeStore) Totals(_ context.Context, userID int64) (int, int, error) {
	completed, attempts := 0, 0
	for key, row := range f.progress {
		if key[0] != userID {
			continue
		}
		attempts += row.Attempts
		if row.CompletedAt != nil {
			completed++
		}
	}
	return completed, attempts, nil
}

func (f *fakeStore) CountBadges(_ context.Context, userID int64) (int, error) {
	count := 0
	for key := range f.badges {
		if key[0] == userID {
			count++
		}
	}
	return count, nil
}

func newTestService(store *fakeStore, now time.Time) *Service {
	svc := NewService(store)
	svc.now = func() time.Time { return now }
	return svc
}

func TestService_RecordAttempt(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := newTestService(store, now)

	// Failing attempt first.
	if err := svc.RecordAttempt(ctx, 1, 7, false, 33); err != nil {
		t.Fatalf("RecordAttempt() error: %v", err)
	}
	row := store.progress[[2]int64{1, 7}]
	if row.Attempts != 1 || row.Passes != 0 || row.BestScore != 33 {
		t.Errorf("after failing attempt: %+v", row)
	}
	if row.CompletedAt != nil {
		t.Error("CompletedAt set by failing attempt")
	}

	// Passing attempt sets completed_at once.
	if err := svc.RecordAttempt(ctx, 1, 7, true, 100); err != nil {
		t.Fatalf("RecordAttempt() error: %v", err)
	}
	if row.Attempts != 2 || row.Passes != 1 || row.BestScore != 100 {
		t.Errorf("after passing attempt: %+v", row)
	}
	if row.CompletedAt == nil {
		t.Fatal("CompletedAt not set by passing attempt")
	}
	completedAt := *row.CompletedAt

	// Later failure neither clears completed_at nor lowers best_score.
	if err := svc.RecordAttempt(ctx, 1, 7, false, 0); err != nil {
		t.Fatalf("RecordAttempt() error: %v", err)
	}
	if row.BestScore != 100 {
		t.Errorf("BestScore regressed to %d", row.BestScore)
	}
	if row.CompletedAt == nil || !row.CompletedAt.Equal(completedAt) {
		t.Error("CompletedAt changed after later failure")
	}
	if row.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", row.Attempts)
	}

	// Daily activity stamped once for the day.
	if len(store.activity[1]) != 1 {
		t.Errorf("expected one activity day, got %d", len(store.activity[1]))
	}
}

func TestService_RecordAttempt_ClampsScore(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store, time.Now())

	if err := svc.RecordAttempt(ctx, 1, 1, false, 250); err != nil {
		t.Fatalf("RecordAttempt() error: %v", err)
	}
	if got := store.progress[[2]int64{1, 1}].BestScore; got != 100 {
		t.Errorf("BestScore = %d, want clamped 100", got)
	}

	if err := svc.RecordAttempt(ctx, 1, 2, false, -5); err != nil {
		t.Fatalf("RecordAttempt() error: %v", err)
	}
	if got := store.progress[[2]int64{1, 2}].BestScore; got != 0 {
		t.Errorf("BestScore = %d, want clamped 0", got)
	}
}

func TestService_AwardBadges(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.masteries = []domain.LessonMastery{
		{LessonID: 1, LessonTitle: "HTML Basics", TotalTasks: 3, CompletedTasks: 3},
		{LessonID: 2, LessonTitle: "Forms", TotalTasks: 2, CompletedTasks: 1},
		{LessonID: 3, LessonTitle: "Empty Lesson", TotalTasks: 0, CompletedTasks: 0},
	}
	svc := newTestService(store, time.Now())

	first, err := svc.AwardBadges(ctx, 1)
	if err != nil {
		t.Fatalf("AwardBadges() error: %v", err)
	}
	if len(first) != 1 || first[0].LessonID != 1 || first[0].LessonTitle != "HTML Basics" {
		t.Fatalf("first call = %+v, want single badge for lesson 1", first)
	}

	// Idempotent: badge already held, second call reports nothing new.
	second, err := svc.AwardBadges(ctx, 1)
	if err != nil {
		t.Fatalf("AwardBadges() error: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second call = %+v, want empty", second)
	}
	if len(store.badges) != 1 {
		t.Errorf("store holds %d badges, want 1", len(store.badges))
	}
}

func TestService_GetSnapshot(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := newTestService(store, now)

	if err := svc.RecordAttempt(ctx, 1, 10, true, 100); err != nil {
		t.Fatal(err)
	}
	if err := svc.RecordAttempt(ctx, 1, 11, false, 50); err != nil {
		t.Fatal(err)
	}

	snap, err := svc.GetSnapshot(ctx, 1)
	if err != nil {
		t.Fatalf("GetSnapshot() error: %v", err)
	}

	if snap.Summary.CompletedTasks != 1 {
		t.Errorf("CompletedTasks = %d, want 1", snap.Summary.CompletedTasks)
	}
	if snap.Summary.TotalAttempts != 2 {
		t.Errorf("TotalAttempts = %d, want 2", snap.Summary.TotalAttempts)
	}
	if snap.Summary.StreakDays != 1 {
		t.Errorf("StreakDays = %d, want 1", snap.Summary.StreakDays)
	}

	task10, ok := snap.TaskProgress[10]
	if !ok {
		t.Fatal("task 10 missing from snapshot")
	}
	if !task10.IsCompleted || task10.BestScore != 100 {
		t.Errorf("task 10 snapshot = %+v", task10)
	}
	task11 := snap.TaskProgress[11]
	if task11.IsCompleted || task11.BestScore != 50 {
		t.Errorf("task 11 snapshot = %+v", task11)
	}
}

func TestEmptySnapshot(t *testing.T) {
	snap := EmptySnapshot()
	if snap.Summary.StreakDays != 0 || snap.Summary.CompletedTasks != 0 {
		t.Errorf("EmptySnapshot summary not zeroed: %+v", snap.Summary)
	}
	if snap.TaskProgress == nil || snap.Badges == nil {
		t.Error("EmptySnapshot maps/slices must be non-nil for JSON encoding")
	}
}
