package sqlite

import (
	"github.com/codedojo/codedojo/internal/auth"
	"github.com/codedojo/codedojo/internal/progress"
)

// Ensure SQLite stores implement the storage interfaces.
var (
	_ progress.Store  = (*ProgressStore)(nil)
	_ auth.Repository = (*AuthStore)(nil)
)
