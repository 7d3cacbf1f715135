package domain

import "time"

type LogKind string

const (
	LogKindInfo    LogKind = "info"
	LogKindSuccess LogKind = "success"
	LogKindWarning LogKind = "warning"
	LogKindError   LogKind = "error"
)

// LogEntry is one line of the device's append-only audit trail. Entries are
// never updated, only inserted and pruned by age.
type LogEntry struct {
	ID        string
	Action    string
	EventID   string
	CodeID    string
	Details   string
	User      string
	Timestamp time.Time
	Kind      LogKind
	Synced    bool
}
