package domain

import "time"

type EventStatus string

const (
	EventStatusActive   EventStatus = "active"
	EventStatusInactive EventStatus = "inactive"
)

// Event is one entry of the backend's event catalog. The whole set is
// replaced on every full sync; which event this device is working is a
// local selection kept in settings, not a backend fact.
type Event struct {
	ID        string
	Name      string
	Date      string
	Time      string
	Status    EventStatus
	VenueID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Valid reports whether the event carries the minimum a device can work
// with. Backend rows occasionally arrive half-filled; those are dropped
// during sync instead of being cached.
func (e Event) Valid() bool {
	return e.ID != "" && e.Name != "" && e.Date != ""
}
