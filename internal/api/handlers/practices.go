package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codedojo/codedojo/internal/domain"
	"github.com/codedojo/codedojo/internal/storage/sqlite"
)

// PracticeRepository stores playground submissions.
type PracticeRepository interface {
	Create(ctx context.Context, practice *domain.Practice) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Practice, error)
	List(ctx context.Context) ([]domain.Practice, error)
	Delete(ctx context.Context, id int64) error
}

// PracticeHandler handles saved playground submissions
type PracticeHandler struct {
	practices PracticeRepository
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practices PracticeRepository) *PracticeHandler {
	return &PracticeHandler{practices: practices}
}

// CreatePracticeRequest is the request body for saving a practice
type CreatePracticeRequest struct {
	Title    string `json:"title"`
	HTMLCode string `json:"html_code"`
	TaskID   *int64 `json:"task_id,omitempty"`
}

// PracticeResponse is the stored practice view
type PracticeResponse struct {
	ID        int64  `json:"id"`
	UserID    *int64 `json:"user_id,omitempty"`
	TaskID    *int64 `json:"task_id,omitempty"`
	Title     string `json:"title"`
	HTMLCode  string `json:"html_code"`
	CreatedAt string `json:"created_at"`
}

// Create handles POST /api/v1/practices. Anonymous saves are allowed
// and simply carry no owner.
func (h *PracticeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePracticeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmissionBytes)).Decode(&req); err != nil {
		h.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		h.jsonError(w, http.StatusBadRequest, "title is required")
		return
	}
	if strings.TrimSpace(req.HTMLCode) == "" {
		h.jsonError(w, http.StatusBadRequest, "html_code is required")
		return
	}

	practice := &domain.Practice{
		TaskID:    req.TaskID,
		Title:     req.Title,
		HTMLCode:  req.HTMLCode,
		CreatedAt: time.Now().UTC(),
	}
	if user := UserFrom(r.Context()); user != nil {
		practice.UserID = &user.ID
	}

	id, err := h.practices.Create(r.Context(), practice)
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to save practice")
		return
	}
	practice.ID = id

	h.jsonResponse(w, http.StatusCreated, map[string]any{"practice": practiceView(*practice)})
}

// List handles GET /api/v1/practices
func (h *PracticeHandler) List(w http.ResponseWriter, r *http.Request) {
	practices, err := h.practices.List(r.Context())
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to load practices")
		return
	}

	out := make([]PracticeResponse, 0, len(practices))
	for _, p := range practices {
		out = append(out, practiceView(p))
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{"practices": out})
}

// Get handles GET /api/v1/practices/{id}
func (h *PracticeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		h.jsonError(w, http.StatusBadRequest, "invalid practice id")
		return
	}

	practice, err := h.practices.Get(r.Context(), id)
	if errors.Is(err, sqlite.ErrNotFound) {
		h.jsonError(w, http.StatusNotFound, "practice not found")
		return
	}
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to load practice")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{"practice": practiceView(*practice)})
}

// Delete handles DELETE /api/v1/practices/{id}. Only the owner may
// delete; anonymous saves have no owner and stay put.
func (h *PracticeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if user == nil {
		h.jsonError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		h.jsonError(w, http.StatusBadRequest, "invalid practice id")
		return
	}

	practice, err := h.practices.Get(r.Context(), id)
	if errors.Is(err, sqlite.ErrNotFound) {
		h.jsonError(w, http.StatusNotFound, "practice not found")
		return
	}
	if err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to load practice")
		return
	}

	if practice.UserID == nil || *practice.UserID != user.ID {
		h.jsonError(w, http.StatusForbidden, "not your practice")
		return
	}

	if err := h.practices.Delete(r.Context(), id); err != nil {
		h.jsonError(w, http.StatusInternalServerError, "failed to delete practice")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]string{"message": "practice deleted"})
}

func practiceView(p domain.Practice) PracticeResponse {
	return PracticeResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		TaskID:    p.TaskID,
		Title:     p.Title,
		HTMLCode:  p.HTMLCode,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func (h *PracticeHandler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *PracticeHandler) jsonError(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}
