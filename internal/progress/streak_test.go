package progress

import (
	"testing"
	"time"
)

func day(t *testing.T, offset int) time.Time {
	t.Helper()
	base := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestStreakFrom(t *testing.T) {
	now := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		offsets []int // days relative to now, most recent first
		want    int
	}{
		{"no activity", nil, 0},
		{"today only", []int{0}, 1},
		{"three consecutive days", []int{0, -1, -2}, 3},
		{"anchored at yesterday", []int{-1, -2}, 2},
		{"latest older than yesterday", []int{-2}, 0},
		{"gap stops the walk", []int{0, -1, -3}, 2},
		{"gap right after latest", []int{0, -2, -3}, 1},
		{"long unbroken run", []int{0, -1, -2, -3, -4, -5, -6}, 7},
		{"stale history ignored", []int{-5, -6, -7}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dates []time.Time
			for _, off := range tt.offsets {
				dates = append(dates, day(t, off))
			}
			if got := StreakFrom(dates, now); got != tt.want {
				t.Errorf("StreakFrom(%v) = %d, want %d", tt.offsets, got, tt.want)
			}
		})
	}
}

func TestStreakFrom_LocationIndependent(t *testing.T) {
	// Store dates come back in UTC; the server clock may be local.
	loc := time.FixedZone("UTC+11", 11*3600)
	now := time.Date(2026, 3, 15, 1, 0, 0, 0, loc)

	dates := []time.Time{
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}

	if got := StreakFrom(dates, now); got != 2 {
		t.Errorf("StreakFrom across locations = %d, want 2", got)
	}
}
