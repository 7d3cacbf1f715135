package remote

import (
	"strings"
	"time"
)

// rawRecord is one loosely-shaped backend row. The backend's column names
// shifted over time (and joined queries nest sub-objects), so every read
// goes through an explicit fallback chain instead of struct tags, failing
// when no candidate is present instead of defaulting to a wrong value.
type rawRecord map[string]any

// str returns the first non-empty string among the named keys.
func (r rawRecord) str(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// obj returns a nested sub-object, as produced by PostgREST joins.
func (r rawRecord) obj(key string) rawRecord {
	if v, ok := r[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return rawRecord(m)
		}
	}
	return nil
}

// boolish reads a bool that some backend versions serialize as a string.
func (r rawRecord) boolish(keys ...string) (bool, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t, true
		case string:
			return strings.EqualFold(t, "true"), true
		}
	}
	return false, false
}

func (r rawRecord) timePtr(keys ...string) *time.Time {
	s := r.str(keys...)
	if s == "" {
		return nil
	}
	t, err := parseWireTime(s)
	if err != nil {
		return nil
	}
	return &t
}

func (r rawRecord) timeVal(keys ...string) time.Time {
	if t := r.timePtr(keys...); t != nil {
		return *t
	}
	return time.Time{}
}
