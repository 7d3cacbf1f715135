package sqlite

import (
	"database/sql"
	"time"
)

// Timestamps are stored as RFC 3339 UTC text so rows stay readable with any
// SQLite tooling.
const storedTimeLayout = "2006-01-02T15:04:05.999999999Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func encodeTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(storedTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func decodeTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := decodeTime(s.String)
	if t.IsZero() {
		return nil
	}
	return &t
}
