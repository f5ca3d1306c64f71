// Package period implements the pure calendar arithmetic underneath
// provisioning and goal windows: period bounds per time mode, week
// boundaries with a configurable start day, and timezone-aware "today".
//
// Every function is total and deterministic. Unknown time modes fall back to
// daily behavior; bad timezones fall back to UTC. Nothing here errors.
package period

import (
	"fmt"
	"time"

	"github.com/14harshaldhote/trackpro/internal/models"
)

// Bounds returns the inclusive [start, end] period containing ref for the
// given time mode. Dates are normalized to midnight UTC.
func Bounds(mode models.TimeMode, ref time.Time) (start, end time.Time) {
	ref = models.DateOnly(ref)

	switch mode {
	case models.TimeModeWeekly:
		start = ref.AddDate(0, 0, -isoWeekday(ref))
		end = start.AddDate(0, 0, 6)
	case models.TimeModeMonthly:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		// Last day of the month via calendar arithmetic so leap years and
		// variable month lengths come out right.
		end = start.AddDate(0, 1, 0).AddDate(0, 0, -1)
	default:
		// Daily, and the explicit fallback for unknown modes.
		start, end = ref, ref
	}
	return start, end
}

// WeekBoundaries returns the week containing date when weeks start on
// weekStartDay (0=Monday .. 6=Sunday). Out-of-range start days are treated
// as Monday.
func WeekBoundaries(date time.Time, weekStartDay int) (start, end time.Time) {
	if weekStartDay < 0 || weekStartDay > 6 {
		weekStartDay = 0
	}
	date = models.DateOnly(date)
	back := (isoWeekday(date) - weekStartDay + 7) % 7
	start = date.AddDate(0, 0, -back)
	return start, start.AddDate(0, 0, 6)
}

// NextPeriodStart returns the first day of the period after one ending on
// end. Periods tile the calendar, so this is end + 1 day for every mode.
func NextPeriodStart(_ models.TimeMode, end time.Time) time.Time {
	return models.DateOnly(end).AddDate(0, 0, 1)
}

// LocalToday converts a UTC instant to the calendar date the owner sees in
// their IANA timezone. An empty or unparseable zone falls back to UTC.
func LocalToday(nowUTC time.Time, timezone string) time.Time {
	loc := time.UTC
	if timezone != "" {
		if l, err := time.LoadLocation(timezone); err == nil {
			loc = l
		}
	}
	return models.DateOnly(nowUTC.In(loc))
}

// Format renders a period for display
func Format(mode models.TimeMode, start, end time.Time) string {
	switch mode {
	case models.TimeModeWeekly:
		return fmt.Sprintf("%s – %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
	case models.TimeModeMonthly:
		return start.Format("January 2006")
	default:
		return start.Format("Mon, Jan 2, 2006")
	}
}

// isoWeekday maps Go's Sunday-first weekday to ISO numbering, Monday=0
func isoWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
