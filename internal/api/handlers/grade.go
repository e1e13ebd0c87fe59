package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/codedojo/codedojo/internal/api/middleware"
	"github.com/codedojo/codedojo/internal/domain"
	"github.com/codedojo/codedojo/internal/grading"
	"github.com/codedojo/codedojo/internal/progress"
	"github.com/codedojo/codedojo/internal/storage/sqlite"
)

// maxSubmissionBytes caps the accepted HTML payload. The editor is a
// small in-browser textarea; anything larger is abuse.
const maxSubmissionBytes = 100_000

// TaskGetter loads a single task from the catalog.
type TaskGetter interface {
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
}

// GradeHandler grades HTML submissions against task rules and, for
// logged-in users, records the attempt in the progress ledger.
type GradeHandler struct {
	tasks    TaskGetter
	resolver *grading.Resolver
	progress *progress.Service
}

// NewGradeHandler creates a new grade handler
func NewGradeHandler(tasks TaskGetter, resolver *grading.Resolver, progressSvc *progress.Service) *GradeHandler {
	return &GradeHandler{
		tasks:    tasks,
		resolver: resolver,
		progress: progressSvc,
	}
}

// GradeRequest is the request body for a grading submission
type GradeRequest struct {
	TaskID   int64  `json:"task_id"`
	HTMLCode string `json:"html_code"`
}

// GradeResponse is the grading result returned to the editor
type GradeResponse struct {
	Passed     bool                  `json:"passed"`
	Score      int                   `json:"score"`
	Checks     []grading.CheckResult `json:"checks"`
	StreakDays int                   `json:"streak_days"`
	NewBadges  []progress.NewBadge   `json:"new_badges"`
}

// Grade handles POST /api/v1/grade. Anonymous submissions are graded
// but leave no trace in the ledger.
func (h *GradeHandler) Grade(w http.ResponseWriter, r *http.Request) {
	var req GradeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmissionBytes)).Decode(&req); err != nil {
		h.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.TaskID <= 0 {
		h.jsonError(w, http.StatusBadRequest, "task_id is required")
		return
	}

	task, err := h.tasks.GetTask(r.Context(), req.TaskID)
	if errors.Is(err, sqlite.ErrNotFound) {
		h.jsonError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to load task")
		return
	}

	rules := h.resolver.Resolve(task)
	result := grading.Grade(req.HTMLCode, rules)
	middleware.ObserveGrading(result.Passed, result.Score)

	resp := GradeResponse{
		Passed:    result.Passed,
		Score:     result.Score,
		Checks:    result.Checks,
		NewBadges: []progress.NewBadge{},
	}

	user := UserFrom(r.Context())
	if user == nil {
		h.jsonResponse(w, http.StatusOK, resp)
		return
	}

	// Ledger writes are best effort relative to the grading result.
	// The learner still gets their score if a write fails.
	if err := h.progress.RecordAttempt(r.Context(), user.ID, task.ID, result.Passed, result.Score); err != nil {
		slog.Error("record attempt failed",
			"error", err,
			"user_id", user.ID,
			"task_id", task.ID,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		h.jsonResponse(w, http.StatusOK, resp)
		return
	}

	if result.Passed {
		newBadges, err := h.progress.AwardBadges(r.Context(), user.ID)
		if err != nil {
			slog.Error("award badges failed",
				"error", err,
				"user_id", user.ID,
				"request_id", middleware.GetRequestID(r.Context()),
			)
		} else {
			resp.NewBadges = newBadges
			middleware.ObserveBadges(len(newBadges))
		}
	}

	streak, err := h.progress.Streak(r.Context(), user.ID)
	if err != nil {
		slog.Error("streak lookup failed",
			"error", err,
			"user_id", user.ID,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	} else {
		resp.StreakDays = streak
	}

	h.jsonResponse(w, http.StatusOK, resp)
}

func (h *GradeHandler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *GradeHandler) jsonError(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}
