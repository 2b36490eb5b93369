package service

import (
	"fmt"
	"time"
)

// Shift times are stored as wall-clock time of day ("HH:MM") and only gain a
// date when anchored to an attendance record's day. All comparisons happen in
// the date's location so a record keeps meaning the same thing regardless of
// server timezone.

// timeOfDayOn anchors an "HH:MM" (or "HH:MM:SS") time of day to the given date.
func timeOfDayOn(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		t, err = time.Parse("15:04:05", hhmm)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time of day %q: %w", hhmm, err)
		}
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), t.Second(), 0,
		date.Location(),
	), nil
}

// minutesBetween returns the number of whole minutes from earlier to later.
// Negative when later precedes earlier.
func minutesBetween(earlier, later time.Time) int {
	return int(later.Sub(earlier).Minutes())
}

// dateOnly truncates a timestamp to midnight in its own location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
