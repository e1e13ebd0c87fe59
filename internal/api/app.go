package api

import (
	"fmt"
	"time"

	"github.com/codedojo/codedojo/internal/auth"
	"github.com/codedojo/codedojo/internal/config"
	"github.com/codedojo/codedojo/internal/grading"
	"github.com/codedojo/codedojo/internal/progress"
	"github.com/codedojo/codedojo/internal/storage/sqlite"
)

// App holds all application dependencies
type App struct {
	Config    *config.Config
	DB        *sqlite.DB
	Auth      *auth.Service
	Tasks     *sqlite.TaskStore
	Practices *sqlite.PracticeStore
	Progress  *progress.Service
	Resolver  *grading.Resolver
}

// NewApp creates a new application instance with all dependencies wired
func NewApp(cfg *config.Config, db *sqlite.DB) (*App, error) {
	resolver, err := grading.NewResolver()
	if err != nil {
		return nil, fmt.Errorf("load grading archetypes: %w", err)
	}

	app := &App{
		Config:    cfg,
		DB:        db,
		Auth:      auth.NewService(sqlite.NewAuthStore(db), time.Duration(cfg.SessionMaxAge)*time.Second),
		Tasks:     sqlite.NewTaskStore(db),
		Practices: sqlite.NewPracticeStore(db),
		Progress:  progress.NewService(sqlite.NewProgressStore(db)),
		Resolver:  resolver,
	}

	return app, nil
}

// Close cleans up application resources
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
