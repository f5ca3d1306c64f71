package models

import "time"

// DateOnly normalizes a timestamp to a calendar date: midnight UTC.
// All period arithmetic operates on values in this form.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two timestamps fall on the same calendar date
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// DaysBetween returns the whole calendar days from a to b (negative if b is
// earlier). Inputs are normalized first so time-of-day never skews the count.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}
