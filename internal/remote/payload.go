package remote

import "github.com/inovatickets/validador/internal/domain"

// slimTicketUpdate is the upsert body: only the columns the backend keeps
// on its codes table. Event linkage is inferred server-side from sector_id,
// and the local-only synced flag never goes on the wire.
type slimTicketUpdate struct {
	ID       string  `json:"id"`
	Code     string  `json:"code"`
	Used     bool    `json:"used"`
	Device   *string `json:"device"`
	SectorID string  `json:"sector_id"`
	UsedAt   *string `json:"used_at"`
}

func newSlimTicketUpdate(tc domain.TicketCode) slimTicketUpdate {
	u := slimTicketUpdate{
		ID:       tc.ID,
		Code:     tc.Code,
		Used:     tc.Used,
		SectorID: tc.SectorID,
	}
	if tc.ValidatedBy != "" {
		device := tc.ValidatedBy
		u.Device = &device
	}
	if tc.UsedAt != nil {
		usedAt := formatWireTime(*tc.UsedAt)
		u.UsedAt = &usedAt
	}
	return u
}
