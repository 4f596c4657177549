package quiz

import "time"

// monthWindow computes the UTC calendar-month window containing now:
// [first instant of the month, first instant of the next month). It is
// recomputed on every call rather than cached.
func monthWindow(now time.Time) (start, end time.Time) {
	now = now.UTC()
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}
