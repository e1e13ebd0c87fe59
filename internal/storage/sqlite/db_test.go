package sqlite

import "testing"

// openTestDB opens a fresh in-memory database with all migrations applied.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	return db
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)

	version, err := db.Version()
	if err != nil {
		t.Fatalf("Version() error: %v", err)
	}
	if version < 2 {
		t.Errorf("schema version = %d, want at least 2", version)
	}

	// Re-running is a no-op.
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate() error: %v", err)
	}
	again, err := db.Version()
	if err != nil {
		t.Fatalf("Version() error: %v", err)
	}
	if again != version {
		t.Errorf("version changed on re-run: %d -> %d", version, again)
	}
}

func TestMigrate_SeedsContent(t *testing.T) {
	db := openTestDB(t)

	var lessons, tasks int
	if err := db.QueryRow("SELECT COUNT(*) FROM lessons").Scan(&lessons); err != nil {
		t.Fatalf("count lessons: %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM practice_tasks").Scan(&tasks); err != nil {
		t.Fatalf("count tasks: %v", err)
	}

	if lessons != 4 {
		t.Errorf("seeded lessons = %d, want 4", lessons)
	}
	if tasks != 10 {
		t.Errorf("seeded tasks = %d, want 10", tasks)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		want    int
		wantErr bool
	}{
		{"initial", "001_initial.sql", 1, false},
		{"double digit", "012_add_column.sql", 12, false},
		{"no underscore", "readme.sql", 0, true},
		{"non-numeric prefix", "abc_def.sql", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVersion(tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseVersion(%q) error = %v, wantErr %v", tt.file, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseVersion(%q) = %d, want %d", tt.file, got, tt.want)
			}
		})
	}
}
