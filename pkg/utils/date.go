package utils

import (
	"time"
)

// Today returns the current UTC date at midnight.
func Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

func FormatDate(date time.Time) string {
	return date.Format("2006-01-02")
}
