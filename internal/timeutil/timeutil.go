package timeutil

import "time"

// DateLayout defines the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date string as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate formats a time as YYYY-MM-DD in its current location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatUTCDate formats the UTC calendar day of t.
func FormatUTCDate(t time.Time) string {
	return FormatDate(t.UTC())
}

// EndOfDay returns the last second of the day that starts at day.
func EndOfDay(day time.Time) time.Time {
	return day.Add(24*time.Hour - time.Second)
}
