package domain

import "time"

// TaskProgress is the per-user, per-task attempt ledger row.
// Invariants: passes <= attempts, best_score is non-decreasing, and
// CompletedAt is set once on the first passing attempt and never cleared.
type TaskProgress struct {
	UserID        int64
	TaskID        int64
	Attempts      int
	Passes        int
	BestScore     int
	LastAttemptAt *time.Time
	CompletedAt   *time.Time
}

// IsCompleted reports whether the task has ever been passed
func (p *TaskProgress) IsCompleted() bool {
	return p.CompletedAt != nil
}

// LessonBadge is a write-once mastery award for a fully-completed lesson
type LessonBadge struct {
	UserID    int64
	LessonID  int64
	AwardedAt time.Time

	// Joined for API responses
	LessonTitle string
}

// LessonMastery summarizes a user's completion state for one lesson
type LessonMastery struct {
	LessonID       int64
	LessonTitle    string
	TotalTasks     int
	CompletedTasks int
}

// Mastered reports whether every task in the lesson has been completed.
// Lessons with zero tasks are never mastered.
func (m LessonMastery) Mastered() bool {
	return m.TotalTasks > 0 && m.CompletedTasks == m.TotalTasks
}
