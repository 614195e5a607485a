package grading

import "time"

// WeekBounds returns the start and end of the ISO calendar week containing
// the reference instant: Monday 00:00:00 through Sunday 23:59:59.999999999,
// in the reference's location. Deadline notices use this inclusive window.
func WeekBounds(reference time.Time) (time.Time, time.Time) {
	weekday := int(reference.Weekday())
	if weekday == 0 {
		weekday = 7 // time.Sunday is 0, ISO weeks end on Sunday
	}

	year, month, day := reference.AddDate(0, 0, 1-weekday).Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, reference.Location())
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)

	return start, end
}

// InCurrentWeek reports whether t falls inside the ISO week containing the
// reference instant, boundaries included.
func InCurrentWeek(t, reference time.Time) bool {
	start, end := WeekBounds(reference)
	return !t.Before(start) && !t.After(end)
}
