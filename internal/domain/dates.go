package domain

import (
	"math"
	"time"
)

const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, InvalidField("date", "must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// Nights is the number of whole days between start and end, rounded to nearest.
func Nights(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Hours() / 24))
}

// DaysBetween lists every day in [from, to) at UTC midnight.
func DaysBetween(from, to time.Time) []time.Time {
	from, to = Day(from), Day(to)
	var days []time.Time
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
