package domain

import "time"

// TimestampLayout is a fixed-width UTC ISO-8601 layout with milliseconds, so
// timestamps order correctly under plain string comparison.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
