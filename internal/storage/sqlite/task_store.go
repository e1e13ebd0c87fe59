package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/codedojo/codedojo/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// TaskStore reads the lesson/task catalog. Content management happens
// elsewhere; this store is read-only.
type TaskStore struct {
	db *DB
}

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskColumns = `
	pt.id, pt.lesson_id, pt.title, pt.instruction, pt.grading_rules, pt.order_num, pt.created_at,
	COALESCE(l.title, ''), COALESCE(l.difficulty, '')`

// GetTask retrieves a task by ID with its lesson title and difficulty.
func (s *TaskStore) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM practice_tasks pt
		LEFT JOIN lessons l ON l.id = pt.lesson_id
		WHERE pt.id = ?`, id)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

// ListTasks returns every task ordered by lesson then task order.
func (s *TaskStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM practice_tasks pt
		LEFT JOIN lessons l ON l.id = pt.lesson_id
		ORDER BY l.order_num ASC, pt.order_num ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// ListTasksByLesson returns the tasks of one lesson in order.
func (s *TaskStore) ListTasksByLesson(ctx context.Context, lessonID int64) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM practice_tasks pt
		LEFT JOIN lessons l ON l.id = pt.lesson_id
		WHERE pt.lesson_id = ?
		ORDER BY pt.order_num ASC`, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list tasks for lesson %d: %w", lessonID, err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// ListLessons returns all lessons in display order.
func (s *TaskStore) ListLessons(ctx context.Context) ([]domain.Lesson, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, difficulty, order_num, created_at
		FROM lessons
		ORDER BY order_num ASC`)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []domain.Lesson
	for rows.Next() {
		var l domain.Lesson
		if err := rows.Scan(&l.ID, &l.Title, &l.Difficulty, &l.OrderNum, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var rules sql.NullString
	err := row.Scan(
		&task.ID, &task.LessonID, &task.Title, &task.Instruction, &rules,
		&task.OrderNum, &task.CreatedAt,
		&task.LessonTitle, &task.LessonDifficulty,
	)
	if err != nil {
		return nil, err
	}
	if rules.Valid {
		task.GradingRules = &rules.String
	}
	return &task, nil
}

func collectTasks(rows *sql.Rows) ([]domain.Task, error) {
	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}
