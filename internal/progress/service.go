package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/codedojo/codedojo/internal/domain"
)

// Store defines the durable operations the progress service relies on.
// UpsertAttempt and InsertBadge must be atomic per key: concurrent calls
// for the same (user, task) or (user, lesson) never lose updates or
// create duplicates.
type Store interface {
	// UpsertAttempt folds one graded attempt into the (userID, taskID)
	// ledger row, creating it on first use.
	UpsertAttempt(ctx context.Context, userID, taskID int64, passed bool, score int, now time.Time) error

	// RecordDailyActivity marks the calendar day as active for the user.
	// Duplicate same-day calls are no-ops.
	RecordDailyActivity(ctx context.Context, userID int64, day time.Time) error

	// ActivityDates returns the user's activity dates, most recent first.
	ActivityDates(ctx context.Context, userID int64) ([]time.Time, error)

	// LessonMasteries returns per-lesson completion counts for the user,
	// covering every lesson that has at least one task.
	LessonMasteries(ctx context.Context, userID int64) ([]domain.LessonMastery, error)

	// InsertBadge inserts a badge row if absent. It reports whether the
	// call actually created the row.
	InsertBadge(ctx context.Context, userID, lessonID int64, now time.Time) (bool, error)

	ListTaskProgress(ctx context.Context, userID int64) ([]domain.TaskProgress, error)
	ListBadges(ctx context.Context, userID int64) ([]domain.LessonBadge, error)

	// Totals returns the user's completed task count and summed attempts.
	Totals(ctx context.Context, userID int64) (completedTasks, totalAttempts int, err error)
	CountBadges(ctx context.Context, userID int64) (int, error)
}

// Service applies graded submissions to the per-user ledger and derives
// streaks, badges, and progress snapshots from it.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a progress service
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// RecordAttempt folds one graded submission into the ledger and stamps
// today's activity. The score is clamped to [0,100] before storage.
func (s *Service) RecordAttempt(ctx context.Context, userID, taskID int64, passed bool, score int) error {
	now := s.now()

	if err := s.store.UpsertAttempt(ctx, userID, taskID, passed, clampScore(score), now); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	if err := s.store.RecordDailyActivity(ctx, userID, now); err != nil {
		return fmt.Errorf("record daily activity: %w", err)
	}
	return nil
}

// NewBadge describes a badge awarded for the first time
type NewBadge struct {
	LessonID    int64  `json:"lesson_id"`
	LessonTitle string `json:"lesson_title"`
}

// AwardBadges issues mastery badges for every lesson whose tasks are all
// completed. Only badges actually created by this call are returned, so
// repeated calls after completion yield nothing. Safe to run on every
// submission.
func (s *Service) AwardBadges(ctx context.Context, userID int64) ([]NewBadge, error) {
	masteries, err := s.store.LessonMasteries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load lesson masteries: %w", err)
	}

	newBadges := []NewBadge{}
	for _, m := range masteries {
		if !m.Mastered() {
			continue
		}
		created, err := s.store.InsertBadge(ctx, userID, m.LessonID, s.now())
		if err != nil {
			return nil, fmt.Errorf("insert badge for lesson %d: %w", m.LessonID, err)
		}
		if created {
			newBadges = append(newBadges, NewBadge{LessonID: m.LessonID, LessonTitle: m.LessonTitle})
		}
	}
	return newBadges, nil
}

// Streak returns the user's consecutive-day activity streak, anchored at
// today or yesterday.
func (s *Service) Streak(ctx context.Context, userID int64) (int, error) {
	dates, err := s.store.ActivityDates(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load activity dates: %w", err)
	}
	return StreakFrom(dates, s.now()), nil
}

// Summary aggregates headline progress numbers
type Summary struct {
	CompletedTasks  int `json:"completed_tasks"`
	TotalAttempts   int `json:"total_attempts"`
	MasteredLessons int `json:"mastered_lessons"`
	StreakDays      int `json:"streak_days"`
}

// TaskSnapshot is the per-task view inside a progress snapshot
type TaskSnapshot struct {
	Attempts    int  `json:"attempts"`
	Passes      int  `json:"passes"`
	BestScore   int  `json:"best_score"`
	IsCompleted bool `json:"is_completed"`
}

// BadgeSnapshot is the per-badge view inside a progress snapshot
type BadgeSnapshot struct {
	LessonID    int64     `json:"lesson_id"`
	LessonTitle string    `json:"lesson_title,omitempty"`
	AwardedAt   time.Time `json:"awarded_at"`
}

// Snapshot is the full progress view returned by the progress endpoint
type Snapshot struct {
	Summary      Summary                `json:"summary"`
	TaskProgress map[int64]TaskSnapshot `json:"task_progress"`
	Badges       []BadgeSnapshot        `json:"badges"`
}

// GetSnapshot builds the user's progress snapshot
func (s *Service) GetSnapshot(ctx context.Context, userID int64) (*Snapshot, error) {
	completed, attempts, err := s.store.Totals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load totals: %w", err)
	}
	badgeCount, err := s.store.CountBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count badges: %w", err)
	}
	streak, err := s.Streak(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.ListTaskProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list task progress: %w", err)
	}
	taskProgress := make(map[int64]TaskSnapshot, len(rows))
	for _, row := range rows {
		taskProgress[row.TaskID] = TaskSnapshot{
			Attempts:    row.Attempts,
			Passes:      row.Passes,
			BestScore:   row.BestScore,
			IsCompleted: row.IsCompleted(),
		}
	}

	badges, err := s.store.ListBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	badgeViews := make([]BadgeSnapshot, 0, len(badges))
	for _, b := range badges {
		badgeViews = append(badgeViews, BadgeSnapshot{
			LessonID:    b.LessonID,
			LessonTitle: b.LessonTitle,
			AwardedAt:   b.AwardedAt,
		})
	}

	return &Snapshot{
		Summary: Summary{
			CompletedTasks:  completed,
			TotalAttempts:   attempts,
			MasteredLessons: badgeCount,
			StreakDays:      streak,
		},
		TaskProgress: taskProgress,
		Badges:       badgeViews,
	}, nil
}

// EmptySnapshot is the zeroed snapshot returned for anonymous callers
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		TaskProgress: map[int64]TaskSnapshot{},
		Badges:       []BadgeSnapshot{},
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
