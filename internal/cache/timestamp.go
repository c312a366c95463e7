package cache

import "time"

// TimestampLayout is the stored timestamp format: seconds precision with a
// colon-separated UTC offset, e.g. 2024-03-01T14:05:09+01:00.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// FormatTimestamp renders t in TimestampLayout, keeping t's own zone offset.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a value produced by FormatTimestamp.
func ParseTimestamp(value string) (time.Time, error) {
	return time.Parse(TimestampLayout, value)
}
