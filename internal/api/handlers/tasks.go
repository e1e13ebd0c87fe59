package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/codedojo/codedojo/internal/domain"
	"github.com/codedojo/codedojo/internal/storage/sqlite"
)

// Catalog lists lessons and tasks.
type Catalog interface {
	TaskGetter
	ListTasks(ctx context.Context) ([]domain.Task, error)
	ListTasksByLesson(ctx context.Context, lessonID int64) ([]domain.Task, error)
	ListLessons(ctx context.Context) ([]domain.Lesson, error)
}

// TaskHandler serves the lesson and task catalog
type TaskHandler struct {
	catalog Catalog
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(catalog Catalog) *TaskHandler {
	return &TaskHandler{catalog: catalog}
}

// LessonResponse is the catalog view of a lesson
type LessonResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	OrderNum   int    `json:"order_num"`
}

// TaskResponse is the catalog view of a task
type TaskResponse struct {
	ID          int64  `json:"id"`
	LessonID    int64  `json:"lesson_id"`
	Title       string `json:"title"`
	Instruction string `json:"instruction"`
	OrderNum    int    `json:"order_num"`
	LessonTitle string `json:"lesson_title,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ListLessons handles GET /api/v1/lessons
func (h *TaskHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.catalog.ListLessons(r.Context())
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to load lessons")
		return
	}

	out := make([]LessonResponse, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, LessonResponse{
			ID:         l.ID,
			Title:      l.Title,
			Difficulty: l.Difficulty,
			OrderNum:   l.OrderNum,
		})
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{"lessons": out})
}

// ListTasks handles GET /api/v1/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.catalog.ListTasks(r.Context())
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to load tasks")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{"tasks": taskViews(tasks)})
}

// ListLessonTasks handles GET /api/v1/lessons/{id}/tasks
func (h *TaskHandler) ListLessonTasks(w http.ResponseWriter, r *http.Request) {
	lessonID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || lessonID <= 0 {
		h.jsonError(w, http.StatusBadRequest, "invalid lesson id")
		return
	}

	tasks, err := h.catalog.ListTasksByLesson(r.Context(), lessonID)
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to load tasks")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{"tasks": taskViews(tasks)})
}

// GetTask handles GET /api/v1/tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || taskID <= 0 {
		h.jsonError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.catalog.GetTask(r.Context(), taskID)
	if errors.Is(err, sqlite.ErrNotFound) {
		h.jsonError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to load task")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{"task": taskView(*task)})
}

func taskView(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		LessonID:    t.LessonID,
		Title:       t.Title,
		Instruction: t.Instruction,
		OrderNum:    t.OrderNum,
		LessonTitle: t.LessonTitle,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

func taskViews(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskView(t))
	}
	return out
}

func (h *TaskHandler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *TaskHandler) jsonError(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}
