package remote

import "github.com/inovatickets/validador/internal/domain"

func decodeEvent(r rawRecord) (domain.Event, error) {
	id := r.str("id")
	if id == "" {
		return domain.Event{}, &DecodeError{Entity: "event", Field: "id"}
	}

	status := domain.EventStatusInactive
	switch r.str("status") {
	case "active", "ativo":
		status = domain.EventStatusActive
	}

	return domain.Event{
		ID:        id,
		Name:      r.str("name", "nome"),
		Date:      r.str("date", "data"),
		Time:      r.str("time", "hora"),
		Status:    status,
		VenueID:   r.str("venue_id", "local_id"),
		CreatedAt: r.timeVal("created_at"),
		UpdatedAt: r.timeVal("updated_at"),
	}, nil
}

func decodeSector(r rawRecord) (domain.Sector, error) {
	id := r.str("id")
	if id == "" {
		return domain.Sector{}, &DecodeError{Entity: "sector", Field: "id"}
	}
	eventID := r.str("event_id", "evento_id")
	if eventID == "" {
		return domain.Sector{}, &DecodeError{Entity: "sector", Field: "event_id"}
	}
	name := r.str("name", "nome_setor")
	if name == "" {
		return domain.Sector{}, &DecodeError{Entity: "sector", Field: "name"}
	}

	active, ok := r.boolish("active", "ativo")
	if !ok {
		active = true
	}

	return domain.Sector{
		ID:      id,
		EventID: eventID,
		Name:    name,
		Active:  active,
	}, nil
}

// decodeTicketCode accepts both query shapes the backend produces: the
// event id may sit on the row itself or nested inside the joined sector
// sub-object. Only when every candidate is absent does decoding fail.
func decodeTicketCode(r rawRecord) (domain.TicketCode, error) {
	id := r.str("id")
	if id == "" {
		return domain.TicketCode{}, &DecodeError{Entity: "code", Field: "id"}
	}
	code := r.str("code", "codigo")
	if code == "" {
		return domain.TicketCode{}, &DecodeError{Entity: "code", Field: "code"}
	}
	sectorID := r.str("sector_id", "setor_id")
	if sectorID == "" {
		return domain.TicketCode{}, &DecodeError{Entity: "code", Field: "sector_id"}
	}

	eventID := r.str("event_id")
	if eventID == "" {
		if nested := r.obj("sectors"); nested != nil {
			eventID = nested.str("event_id", "evento_id")
		}
	}
	if eventID == "" {
		eventID = r.str("evento_id")
	}
	if eventID == "" {
		return domain.TicketCode{}, &DecodeError{Entity: "code", Field: "event_id"}
	}

	used, _ := r.boolish("used", "utilizado")

	return domain.TicketCode{
		ID:          id,
		EventID:     eventID,
		SectorID:    sectorID,
		Code:        code,
		Used:        used,
		UsedAt:      r.timePtr("used_at", "data_utilizacao"),
		ValidatedBy: r.str("device", "aparelho"),
	}, nil
}
