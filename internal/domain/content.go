package domain

import "time"

// Lesson groups practice tasks into a learning unit
type Lesson struct {
	ID         int64
	Title      string
	Difficulty string
	OrderNum   int
	CreatedAt  time.Time
}

// Task is a single practice assignment within a lesson
type Task struct {
	ID          int64
	LessonID    int64
	Title       string
	Instruction string
	// GradingRules holds the stored rule set as raw JSON, nil when the
	// task relies on title-based rule inference.
	GradingRules *string
	OrderNum     int
	CreatedAt    time.Time

	// Joined lesson fields, populated by catalog queries
	LessonTitle      string
	LessonDifficulty string
}

// Practice is a saved playground submission
type Practice struct {
	ID        int64
	UserID    *int64 // nil for anonymous saves
	TaskID    *int64 // nil for freeform practice
	Title     string
	HTMLCode  string
	CreatedAt time.Time
}
