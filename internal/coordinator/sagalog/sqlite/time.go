package sqlite

import (
	"fmt"
	"time"
)

// timeLayout keeps nanoseconds and always ends in Z, so stored values sort
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t the way every table in the database stores it.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseRFC3339 parses the timestamp strings stored in SQLite, which has no
// native datetime type.
func parseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
