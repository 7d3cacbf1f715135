package domain

// Sector is an access zone within an event. A validating device is
// authorized for a subset of its active event's sectors.
type Sector struct {
	ID      string
	EventID string
	Name    string
	Active  bool
}
