package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/codedojo/codedojo/internal/domain"
)

const dateLayout = "2006-01-02"

// ProgressStore persists the per-user grading ledger: task attempts,
// daily activity, and lesson mastery badges.
type ProgressStore struct {
	db *DB
}

// NewProgressStore creates a new SQLite-backed progress store.
func NewProgressStore(db *DB) *ProgressStore {
	return &ProgressStore{db: db}
}

// UpsertAttempt folds one graded attempt into the (user, task) row as a
// single atomic upsert. completed_at is set on the first passing attempt
// and the COALESCE keeps it frozen afterwards; best_score only ratchets
// upward via MAX.
func (s *ProgressStore) UpsertAttempt(ctx context.Context, userID, taskID int64, passed bool, score int, now time.Time) error {
	passes := 0
	var completedAt sql.NullTime
	if passed {
		passes = 1
		completedAt = sql.NullTime{Time: now, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_task_progress (user_id, task_id, attempts, passes, best_score, last_attempt_at, completed_at)
		VALUES (?, ?, 1, ?, ?, ?, ?)
		ON CONFLICT(user_id, task_id) DO UPDATE SET
			attempts        = attempts + 1,
			passes          = passes + excluded.passes,
			best_score      = MAX(best_score, excluded.best_score),
			last_attempt_at = excluded.last_attempt_at,
			completed_at    = COALESCE(completed_at, excluded.completed_at)`,
		userID, taskID, passes, score, now, completedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert task progress: %w", err)
	}
	return nil
}

// RecordDailyActivity stamps the calendar day. Duplicate same-day calls
// are ignored by the primary key.
func (s *ProgressStore) RecordDailyActivity(ctx context.Context, userID int64, day time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_daily_activity (user_id, activity_date)
		VALUES (?, ?)`,
		userID, day.Format(dateLayout),
	)
	if err != nil {
		return fmt.Errorf("record daily activity: %w", err)
	}
	return nil
}

// ActivityDates returns the user's activity dates, most recent first.
func (s *ProgressStore) ActivityDates(ctx context.Context, userID int64) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT activity_date FROM user_daily_activity
		WHERE user_id = ?
		ORDER BY activity_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query activity dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan activity date: %w", err)
		}
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("parse activity date %q: %w", raw, err)
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}

// LessonMasteries returns completion counts for every lesson that has at
// least one task, joined against the user's ledger.
func (s *ProgressStore) LessonMasteries(ctx context.Context, userID int64) ([]domain.LessonMastery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			l.id,
			l.title,
			COUNT(pt.id),
			COALESCE(SUM(CASE WHEN utp.completed_at IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM lessons l
		JOIN practice_tasks pt ON pt.lesson_id = l.id
		LEFT JOIN user_task_progress utp ON utp.task_id = pt.id AND utp.user_id = ?
		GROUP BY l.id, l.title`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query lesson masteries: %w", err)
	}
	defer rows.Close()

	var masteries []domain.LessonMastery
	for rows.Next() {
		var m domain.LessonMastery
		if err := rows.Scan(&m.LessonID, &m.LessonTitle, &m.TotalTasks, &m.CompletedTasks); err != nil {
			return nil, fmt.Errorf("scan lesson mastery: %w", err)
		}
		masteries = append(masteries, m)
	}
	return masteries, rows.Err()
}

// InsertBadge inserts a badge row if absent and reports whether the call
// created it. Concurrent duplicate attempts produce exactly one row.
func (s *ProgressStore) InsertBadge(ctx context.Context, userID, lessonID int64, now time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_lesson_badges (user_id, lesson_id, awarded_at)
		VALUES (?, ?, ?)`,
		userID, lessonID, now,
	)
	if err != nil {
		return false, fmt.Errorf("insert badge: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("badge rows affected: %w", err)
	}
	return n > 0, nil
}

// ListTaskProgress returns every ledger row for the user.
func (s *ProgressStore) ListTaskProgress(ctx context.Context, userID int64) ([]domain.TaskProgress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, task_id, attempts, passes, best_score, last_attempt_at, completed_at
		FROM user_task_progress
		WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query task progress: %w", err)
	}
	defer rows.Close()

	var progress []domain.TaskProgress
	for rows.Next() {
		var p domain.TaskProgress
		var lastAttempt, completedAt sql.NullTime
		if err := rows.Scan(&p.UserID, &p.TaskID, &p.Attempts, &p.Passes, &p.BestScore, &lastAttempt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan task progress: %w", err)
		}
		if lastAttempt.Valid {
			p.LastAttemptAt = &lastAttempt.Time
		}
		if completedAt.Valid {
			p.CompletedAt = &completedAt.Time
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

// ListBadges returns the user's badges, newest first, with lesson titles.
func (s *ProgressStore) ListBadges(ctx context.Context, userID int64) ([]domain.LessonBadge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.user_id, b.lesson_id, b.awarded_at, COALESCE(l.title, '')
		FROM user_lesson_badges b
		LEFT JOIN lessons l ON l.id = b.lesson_id
		WHERE b.user_id = ?
		ORDER BY b.awarded_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}
	defer rows.Close()

	var badges []domain.LessonBadge
	for rows.Next() {
		var b domain.LessonBadge
		if err := rows.Scan(&b.UserID, &b.LessonID, &b.AwardedAt, &b.LessonTitle); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// Totals returns the user's completed task count and summed attempts.
func (s *ProgressStore) Totals(ctx context.Context, userID int64) (int, int, error) {
	var completed, attempts int
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN completed_at IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(attempts), 0)
		FROM user_task_progress
		WHERE user_id = ?`,
		userID,
	).Scan(&completed, &attempts)
	if err != nil {
		return 0, 0, fmt.Errorf("query progress totals: %w", err)
	}
	return completed, attempts, nil
}

// CountBadges returns the number of badges the user holds.
func (s *ProgressStore) CountBadges(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_lesson_badges WHERE user_id = ?", userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count badges: %w", err)
	}
	return count, nil
}
