package remote

import "fmt"

// StatusError is any non-2xx backend response. The gateway never retries;
// retry policy belongs to the caller.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Message)
}

// DecodeError is a malformed backend payload. It indicates a schema
// mismatch and is never silently skipped.
type DecodeError struct {
	Entity string
	Field  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s row: missing %s", e.Entity, e.Field)
}
