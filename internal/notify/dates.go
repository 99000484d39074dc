package notify

import "time"

// dateOf truncates a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysUntil returns the whole calendar days from now until t.
// Negative when t is in the past.
func daysUntil(now, t time.Time) int {
	return int(dateOf(t).Sub(dateOf(now)) / (24 * time.Hour))
}

// daysSince returns the whole calendar days from t until now.
func daysSince(now, t time.Time) int {
	return -daysUntil(now, t)
}

// addDays returns t shifted by calendar days, as a pointer for the
// nullable due-date columns.
func addDays(t time.Time, days int) *time.Time {
	d := dateOf(t).AddDate(0, 0, days)
	return &d
}
