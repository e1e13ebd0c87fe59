package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codedojo/codedojo/internal/api/handlers"
	"github.com/codedojo/codedojo/internal/api/middleware"
)

// Router wraps the HTTP multiplexer with middleware and handlers
type Router struct {
	mux      *http.ServeMux
	app      *App
	auth     *handlers.AuthHandler
	grade    *handlers.GradeHandler
	progress *handlers.ProgressHandler
	tasks    *handlers.TaskHandler
	practice *handlers.PracticeHandler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(app *App) http.Handler {
	r := &Router{
		mux: http.NewServeMux(),
		app: app,
	}

	r.auth = handlers.NewAuthHandler(app.Auth, !app.Config.Debug, app.Config.SessionMaxAge)
	r.grade = handlers.NewGradeHandler(app.Tasks, app.Resolver, app.Progress)
	r.progress = handlers.NewProgressHandler(app.Progress)
	r.tasks = handlers.NewTaskHandler(app.Tasks)
	r.practice = handlers.NewPracticeHandler(app.Practices)

	r.registerRoutes()

	return r.buildMiddlewareChain(r.mux, app)
}

func (r *Router) registerRoutes() {
	// Health check
	r.mux.HandleFunc("GET /health", r.handleHealth)
	r.mux.HandleFunc("GET /ready", r.handleReady)
	r.mux.Handle("GET /metrics", promhttp.Handler())

	// Auth
	r.mux.HandleFunc("POST /api/v1/auth/register", r.auth.Register)
	r.mux.HandleFunc("POST /api/v1/auth/login", r.auth.Login)
	r.mux.HandleFunc("POST /api/v1/auth/logout", r.auth.Logout)
	r.mux.HandleFunc("GET /api/v1/auth/me", r.auth.Me)

	// Catalog (public)
	r.mux.HandleFunc("GET /api/v1/lessons", r.tasks.ListLessons)
	r.mux.HandleFunc("GET /api/v1/lessons/{id}/tasks", r.tasks.ListLessonTasks)
	r.mux.HandleFunc("GET /api/v1/tasks", r.tasks.ListTasks)
	r.mux.HandleFunc("GET /api/v1/tasks/{id}", r.tasks.GetTask)

	// Grading. Anonymous submissions are graded without touching the
	// ledger, so the route resolves the session when present instead
	// of requiring one.
	gradeLimit := middleware.GradeRateLimit(r.app.Config.GradeRatePerMinute)
	r.mux.Handle("POST /api/v1/grade", gradeLimit(r.withUser(r.grade.Grade)))

	// Progress dashboard (works anonymously)
	r.mux.HandleFunc("GET /api/v1/progress", r.withUser(r.progress.Get))

	// Saved practices
	r.mux.HandleFunc("POST /api/v1/practices", r.withUser(r.practice.Create))
	r.mux.HandleFunc("GET /api/v1/practices", r.practice.List)
	r.mux.HandleFunc("GET /api/v1/practices/{id}", r.practice.Get)
	r.mux.HandleFunc("DELETE /api/v1/practices/{id}", r.requireAuth(r.practice.Delete))
}

func (r *Router) buildMiddlewareChain(handler http.Handler, app *App) http.Handler {
	// Apply middleware in reverse order (last applied = first executed)
	handler = middleware.Recovery(handler)
	handler = middleware.Logger(handler)
	handler = middleware.Metrics(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.CORS(app.Config.AllowedOrigin)(handler)

	return handler
}

// withUser resolves the session cookie when present and attaches the
// user to the request context. Missing or invalid sessions fall through
// as anonymous rather than failing.
func (r *Router) withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		cookie, err := req.Cookie(r.auth.CookieName())
		if err != nil {
			next(w, req)
			return
		}

		user, _, err := r.app.Auth.ValidateSession(req.Context(), cookie.Value)
		if err != nil {
			slog.Debug("anonymous request with stale session",
				"error", err,
				"request_id", middleware.GetRequestID(req.Context()),
			)
			next(w, req)
			return
		}

		ctx := context.WithValue(req.Context(), handlers.ContextKeyUser, user)
		next(w, req.WithContext(ctx))
	}
}

// requireAuth wraps a handler with authentication
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		cookie, err := req.Cookie(r.auth.CookieName())
		if err != nil {
			Unauthorized(w, req, "authentication required")
			return
		}

		user, _, err := r.app.Auth.ValidateSession(req.Context(), cookie.Value)
		if err != nil {
			slog.Warn("invalid session",
				"error", err,
				"request_id", middleware.GetRequestID(req.Context()),
			)
			Unauthorized(w, req, "invalid or expired session")
			return
		}

		ctx := context.WithValue(req.Context(), handlers.ContextKeyUser, user)
		next(w, req.WithContext(ctx))
	}
}

// Health check handlers
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	r.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Router) handleReady(w http.ResponseWriter, req *http.Request) {
	// Check database connectivity
	if err := r.app.DB.PingContext(req.Context()); err != nil {
		slog.Error("database health check failed",
			"error", err,
			"request_id", middleware.GetRequestID(req.Context()),
		)
		r.jsonResponse(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not ready",
			"checks": map[string]string{
				"database": "unhealthy",
			},
		})
		return
	}

	r.jsonResponse(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": map[string]string{
			"database": "healthy",
		},
	})
}

// Helper for JSON responses
func (r *Router) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
