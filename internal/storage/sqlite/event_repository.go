package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/inovatickets/validador/internal/domain"
)

// EventRepository serves event selection, session settings and the status
// counters shown on the device.
type EventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithTx(ctx, fn)
}

const eventColumns = `id, name, date, time, status, venue_id, created_at, updated_at`

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date, name`

	rows, err := r.db.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (r *EventRepository) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`

	e, err := scanEvent(r.db.queryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) DeactivateAllEvents(ctx context.Context) error {
	if _, err := r.db.exec(ctx, `UPDATE events SET status = ?`, string(domain.EventStatusInactive)); err != nil {
		return fmt.Errorf("deactivate events: %w", err)
	}
	return nil
}

func (r *EventRepository) SetEventStatus(ctx context.Context, id string, status domain.EventStatus) error {
	res, err := r.db.exec(ctx, `UPDATE events SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("set event status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set event status: rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// ClearEvents drops the whole local cache; sectors and codes go with their
// events through the foreign-key cascade.
func (r *EventRepository) ClearEvents(ctx context.Context) error {
	if _, err := r.db.exec(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	return nil
}

func (r *EventRepository) ListSectors(ctx context.Context, eventID string) ([]domain.Sector, error) {
	const query = `SELECT id, event_id, name, active FROM sectors WHERE event_id = ? ORDER BY name`

	rows, err := r.db.query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	defer rows.Close()

	var out []domain.Sector
	for rows.Next() {
		var s domain.Sector
		if err := rows.Scan(&s.ID, &s.EventID, &s.Name, &s.Active); err != nil {
			return nil, fmt.Errorf("list sectors: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	return out, nil
}

// CountCodes reports total and used code counts for an event.
func (r *EventRepository) CountCodes(ctx context.Context, eventID string) (total, used int, err error) {
	const query = `
SELECT COUNT(*), COALESCE(SUM(used), 0) FROM ticket_codes WHERE event_id = ?`

	if err := r.db.queryRow(ctx, query, eventID).Scan(&total, &used); err != nil {
		return 0, 0, fmt.Errorf("count codes: %w", err)
	}
	return total, used, nil
}

// CountPendingCodes reports how many local validations still await upload.
func (r *EventRepository) CountPendingCodes(ctx context.Context) (int, error) {
	var n int
	if err := r.db.queryRow(ctx, `SELECT COUNT(*) FROM ticket_codes WHERE synced = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}

func (r *EventRepository) GetSetting(ctx context.Context, key string) (string, error) {
	return getSetting(ctx, r.db, key)
}

func (r *EventRepository) SetSetting(ctx context.Context, key, value string) error {
	return setSetting(ctx, r.db, key, value)
}

func (r *EventRepository) DeleteSetting(ctx context.Context, key string) error {
	return deleteSetting(ctx, r.db, key)
}

func scanEvent(row rowScanner) (domain.Event, error) {
	var (
		e                    domain.Event
		status               string
		createdAt, updatedAt string
	)
	err := row.Scan(&e.ID, &e.Name, &e.Date, &e.Time, &status, &e.VenueID, &createdAt, &updatedAt)
	if err != nil {
		return domain.Event{}, err
	}
	e.Status = domain.EventStatus(status)
	e.CreatedAt = decodeTime(createdAt)
	e.UpdatedAt = decodeTime(updatedAt)
	return e, nil
}
