package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/codedojo/codedojo/internal/api/middleware"
	"github.com/codedojo/codedojo/internal/progress"
)

// ProgressHandler serves the learner's progress snapshot
type ProgressHandler struct {
	progress *progress.Service
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressSvc *progress.Service) *ProgressHandler {
	return &ProgressHandler{progress: progressSvc}
}

// ProgressResponse wraps the snapshot with the caller's login state, so
// the dashboard can render a sign-in prompt instead of empty stats.
type ProgressResponse struct {
	IsLoggedIn   bool                            `json:"is_logged_in"`
	Summary      progress.Summary                `json:"summary"`
	TaskProgress map[int64]progress.TaskSnapshot `json:"task_progress"`
	Badges       []progress.BadgeSnapshot        `json:"badges"`
}

// Get handles GET /api/v1/progress. Anonymous callers get a zeroed
// snapshot rather than an error.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if user == nil {
		snap := progress.EmptySnapshot()
		h.jsonResponse(w, http.StatusOK, ProgressResponse{
			IsLoggedIn:   false,
			Summary:      snap.Summary,
			TaskProgress: snap.TaskProgress,
			Badges:       snap.Badges,
		})
		return
	}

	snap, err := h.progress.GetSnapshot(r.Context(), user.ID)
	if err != nil {
		slog.Error("progress snapshot failed",
			"error", err,
			"user_id", user.ID,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		h.jsonError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}

	h.jsonResponse(w, http.StatusOK, ProgressResponse{
		IsLoggedIn:   true,
		Summary:      snap.Summary,
		TaskProgress: snap.TaskProgress,
		Badges:       snap.Badges,
	})
}

func (h *ProgressHandler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *ProgressHandler) jsonError(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}
