package sqlite

import "time"

// Timestamps round-trip as RFC 3339 UTC strings so lexical order matches
// chronological order. The fractional part is fixed-width; RFC3339Nano
// trims trailing zeros, which would break lexical sorting.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// decodeTime parses a stored timestamp, decoding leniently to "now" when
// the stored value is unparsable.
func decodeTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
