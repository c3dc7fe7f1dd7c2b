package utils

import "time"

// DateOnly truncates t to midnight in its own location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Days returns n consecutive calendar days starting at start's date
func Days(start time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	first := DateOnly(start)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = first.AddDate(0, 0, i)
	}
	return out
}

// ParseDate parses a YYYY-MM-DD date in UTC
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
