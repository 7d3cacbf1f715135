package domain

import "time"

// TicketCode is a single admission credential scoped to one event and one
// sector. Code strings are only unique within an event.
//
// Synced is local-only: true once the backend has acknowledged this row's
// current used state. It is cleared when the device validates the code and
// set again after a confirmed upload; rows downloaded from the backend are
// synced by definition.
type TicketCode struct {
	ID          string
	EventID     string
	SectorID    string
	Code        string
	Used        bool
	UsedAt      *time.Time
	ValidatedBy string
	Synced      bool
}
