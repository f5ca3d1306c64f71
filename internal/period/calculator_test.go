package period

import (
	"testing"
	"time"

	"github.com/14harshaldhote/trackpro/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mode      models.TimeMode
		ref       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "daily is a single day",
			mode:      models.TimeModeDaily,
			ref:       date(2025, time.March, 15),
			wantStart: date(2025, time.March, 15),
			wantEnd:   date(2025, time.March, 15),
		},
		{
			name:      "weekly starts on most recent Monday",
			mode:      models.TimeModeWeekly,
			ref:       date(2025, time.March, 13), // Thursday
			wantStart: date(2025, time.March, 10),
			wantEnd:   date(2025, time.March, 16),
		},
		{
			name:      "weekly on a Monday starts that Monday",
			mode:      models.TimeModeWeekly,
			ref:       date(2025, time.March, 10),
			wantStart: date(2025, time.March, 10),
			wantEnd:   date(2025, time.March, 16),
		},
		{
			name:      "weekly on a Sunday reaches back six days",
			mode:      models.TimeModeWeekly,
			ref:       date(2025, time.March, 16),
			wantStart: date(2025, time.March, 10),
			wantEnd:   date(2025, time.March, 16),
		},
		{
			name:      "weekly crossing a year boundary",
			mode:      models.TimeModeWeekly,
			ref:       date(2025, time.December, 31), // Wednesday
			wantStart: date(2025, time.December, 29),
			wantEnd:   date(2026, time.January, 4),
		},
		{
			name:      "monthly non-leap February",
			mode:      models.TimeModeMonthly,
			ref:       date(2025, time.February, 14),
			wantStart: date(2025, time.February, 1),
			wantEnd:   date(2025, time.February, 28),
		},
		{
			name:      "monthly leap February",
			mode:      models.TimeModeMonthly,
			ref:       date(2024, time.February, 14),
			wantStart: date(2024, time.February, 1),
			wantEnd:   date(2024, time.February, 29),
		},
		{
			name:      "monthly December",
			mode:      models.TimeModeMonthly,
			ref:       date(2025, time.December, 5),
			wantStart: date(2025, time.December, 1),
			wantEnd:   date(2025, time.December, 31),
		},
		{
			name:      "unknown mode falls back to daily",
			mode:      models.TimeMode("fortnightly"),
			ref:       date(2025, time.June, 20),
			wantStart: date(2025, time.June, 20),
			wantEnd:   date(2025, time.June, 20),
		},
		{
			name:      "time of day on the reference is ignored",
			mode:      models.TimeModeDaily,
			ref:       time.Date(2025, time.March, 15, 23, 59, 0, 0, time.UTC),
			wantStart: date(2025, time.March, 15),
			wantEnd:   date(2025, time.March, 15),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			start, end := Bounds(tt.mode, tt.ref)
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("Bounds(%s, %s) = [%s, %s], want [%s, %s]",
					tt.mode, tt.ref.Format(time.DateOnly),
					start.Format(time.DateOnly), end.Format(time.DateOnly),
					tt.wantStart.Format(time.DateOnly), tt.wantEnd.Format(time.DateOnly))
			}
		})
	}
}

func TestBoundsContainReference(t *testing.T) {
	t.Parallel()

	// Walk two years of days under every mode: the reference must always be
	// inside its own period and the span must be 0, 6, or days-in-month - 1.
	modes := []models.TimeMode{models.TimeModeDaily, models.TimeModeWeekly, models.TimeModeMonthly}
	for ref := date(2024, time.January, 1); ref.Year() < 2026; ref = ref.AddDate(0, 0, 1) {
		for _, mode := range modes {
			start, end := Bounds(mode, ref)
			if start.After(ref) || end.Before(ref) {
				t.Fatalf("mode %s: reference %s outside period [%s, %s]",
					mode, ref.Format(time.DateOnly), start.Format(time.DateOnly), end.Format(time.DateOnly))
			}
			span := models.DaysBetween(start, end)
			switch mode {
			case models.TimeModeDaily:
				if span != 0 {
					t.Fatalf("daily span = %d at %s", span, ref.Format(time.DateOnly))
				}
			case models.TimeModeWeekly:
				if span != 6 {
					t.Fatalf("weekly span = %d at %s", span, ref.Format(time.DateOnly))
				}
			case models.TimeModeMonthly:
				if span < 27 || span > 30 {
					t.Fatalf("monthly span = %d at %s", span, ref.Format(time.DateOnly))
				}
			}
		}
	}
}

func TestPeriodsTileTheCalendar(t *testing.T) {
	t.Parallel()

	// Following NextPeriodStart from any period end must land on the start
	// of the next period with no gap or overlap.
	for _, mode := range []models.TimeMode{models.TimeModeDaily, models.TimeModeWeekly, models.TimeModeMonthly} {
		ref := date(2025, time.January, 1)
		for i := 0; i < 40; i++ {
			start, end := Bounds(mode, ref)
			next := NextPeriodStart(mode, end)
			if got := models.DaysBetween(end, next); got != 1 {
				t.Fatalf("mode %s: next start is %d days after period end", mode, got)
			}
			nextStart, _ := Bounds(mode, next)
			if !nextStart.Equal(next) {
				t.Fatalf("mode %s: %s is not the start of its own period (got %s)",
					mode, next.Format(time.DateOnly), nextStart.Format(time.DateOnly))
			}
			_ = start
			ref = next
		}
	}
}

func TestWeekBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		date         time.Time
		weekStartDay int
		wantStart    time.Time
	}{
		{"monday start on a thursday", date(2025, time.March, 13), 0, date(2025, time.March, 10)},
		{"sunday start on a thursday", date(2025, time.March, 13), 6, date(2025, time.March, 9)},
		{"saturday start on a saturday", date(2025, time.March, 15), 5, date(2025, time.March, 15)},
		{"out of range start day treated as monday", date(2025, time.March, 13), 9, date(2025, time.March, 10)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			start, end := WeekBoundaries(tt.date, tt.weekStartDay)
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %s, want %s", start.Format(time.DateOnly), tt.wantStart.Format(time.DateOnly))
			}
			if got := models.DaysBetween(start, end); got != 6 {
				t.Errorf("week span = %d days, want 6", got)
			}
		})
	}
}

func TestLocalToday(t *testing.T) {
	t.Parallel()

	// 2025-03-15 02:30 UTC is still 2025-03-14 in New York.
	now := time.Date(2025, time.March, 15, 2, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		timezone string
		want     time.Time
	}{
		{"new york is a day behind", "America/New_York", date(2025, time.March, 14)},
		{"tokyo is the same date", "Asia/Tokyo", date(2025, time.March, 15)},
		{"empty zone falls back to UTC", "", date(2025, time.March, 15)},
		{"garbage zone falls back to UTC", "Not/AZone", date(2025, time.March, 15)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := LocalToday(now, tt.timezone); !got.Equal(tt.want) {
				t.Errorf("LocalToday(%s) = %s, want %s", tt.timezone, got.Format(time.DateOnly), tt.want.Format(time.DateOnly))
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	start, end := Bounds(models.TimeModeMonthly, date(2025, time.February, 10))
	if got := Format(models.TimeModeMonthly, start, end); got != "February 2025" {
		t.Errorf("monthly format = %q", got)
	}
	start, end = Bounds(models.TimeModeDaily, date(2025, time.March, 10))
	if got := Format(models.TimeModeDaily, start, end); got != "Mon, Mar 10, 2025" {
		t.Errorf("daily format = %q", got)
	}
}
