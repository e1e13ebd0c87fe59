package progress

import "time"

// StreakFrom computes the consecutive-day streak from activity dates
// ordered most recent first. The streak is anchored at today or
// yesterday: if the latest activity is older than yesterday the streak
// is 0. Each counted date must be exactly one calendar day before the
// previously counted one.
func StreakFrom(dates []time.Time, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	today := truncateToDay(now)
	yesterday := today.AddDate(0, 0, -1)

	latest := truncateToDay(dates[0])
	if latest.Before(yesterday) {
		return 0
	}

	streak := 0
	expected := latest
	for _, d := range dates {
		if !truncateToDay(d).Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}

// truncateToDay pins a timestamp's civil date to UTC midnight so that
// dates read from the store and the caller's wall clock compare as
// plain calendar days regardless of location.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
