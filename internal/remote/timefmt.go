package remote

import (
	"fmt"
	"time"
)

// wireTimeLayout is the backend's timestamp shape: ISO-8601 with millisecond
// precision and an explicit offset. Values are always serialized in UTC, so
// the offset renders as +00:00.
const wireTimeLayout = "2006-01-02T15:04:05.000-07:00"

func formatWireTime(t time.Time) string {
	return t.UTC().Format(wireTimeLayout)
}

var wireTimeParseLayouts = []string{
	wireTimeLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseWireTime(s string) (time.Time, error) {
	for _, layout := range wireTimeParseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
