package domain

// Session is the device operator's current working context: the active
// event, the sectors this station admits into, and the operator identifier
// recorded on accepted tickets. Validation receives it explicitly instead
// of reading ambient state.
type Session struct {
	EventID   string
	SectorIDs []string
	Operator  string
}

// AllowsSector reports whether the session admits into the given sector.
// An empty selection admits nothing: the station stays closed until the
// operator picks at least one sector.
func (s Session) AllowsSector(id string) bool {
	for _, sid := range s.SectorIDs {
		if sid == id {
			return true
		}
	}
	return false
}
