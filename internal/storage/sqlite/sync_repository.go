package sqlite

import (
	"context"
	"fmt"

	"github.com/inovatickets/validador/internal/domain"
)

// SyncRepository serves the sync orchestrator: pending-upload queries,
// synced-flag bookkeeping and wholesale snapshot replacement.
type SyncRepository struct {
	db *DB
}

func NewSyncRepository(db *DB) *SyncRepository {
	return &SyncRepository{db: db}
}

func (r *SyncRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithTx(ctx, fn)
}

// PendingCodes returns every ticket whose current state the backend has not
// acknowledged yet.
func (r *SyncRepository) PendingCodes(ctx context.Context) ([]domain.TicketCode, error) {
	query := `SELECT ` + codeColumns + ` FROM ticket_codes WHERE synced = 0 ORDER BY id`

	rows, err := r.db.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pending codes: %w", err)
	}
	defer rows.Close()

	var out []domain.TicketCode
	for rows.Next() {
		tc, err := scanCode(rows)
		if err != nil {
			return nil, fmt.Errorf("pending codes: %w", err)
		}
		out = append(out, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending codes: %w", err)
	}
	return out, nil
}

// MarkCodesSynced records a confirmed upload for the given ids.
func (r *SyncRepository) MarkCodesSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			if _, err := r.db.exec(ctx, `UPDATE ticket_codes SET synced = 1 WHERE id = ?`, id); err != nil {
				return fmt.Errorf("mark synced %s: %w", id, err)
			}
		}
		return nil
	})
}

// ClearSnapshot deletes the cached events, sectors and codes. Callers run it
// inside WithTx together with the inserts so the store never stays cleared
// without a replacement.
func (r *SyncRepository) ClearSnapshot(ctx context.Context) error {
	for _, table := range []string{"ticket_codes", "sectors", "events"} {
		if _, err := r.db.exec(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func (r *SyncRepository) InsertEvents(ctx context.Context, events []domain.Event) error {
	const stmt = `
INSERT OR REPLACE INTO events (id, name, date, time, status, venue_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	for _, e := range events {
		status := e.Status
		if status == "" {
			status = domain.EventStatusInactive
		}
		_, err := r.db.exec(ctx, stmt,
			e.ID, e.Name, e.Date, e.Time, string(status), e.VenueID,
			encodeTime(e.CreatedAt), encodeTime(e.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}
	}
	return nil
}

func (r *SyncRepository) InsertSectors(ctx context.Context, sectors []domain.Sector) error {
	const stmt = `
INSERT OR REPLACE INTO sectors (id, event_id, name, active)
VALUES (?, ?, ?, ?)`

	for _, s := range sectors {
		if _, err := r.db.exec(ctx, stmt, s.ID, s.EventID, s.Name, s.Active); err != nil {
			return fmt.Errorf("insert sector %s: %w", s.ID, err)
		}
	}
	return nil
}

func (r *SyncRepository) InsertCodes(ctx context.Context, codes []domain.TicketCode) error {
	const stmt = `
INSERT OR REPLACE INTO ticket_codes (id, event_id, sector_id, code, used, used_at, validated_by, synced)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	for _, c := range codes {
		_, err := r.db.exec(ctx, stmt,
			c.ID, c.EventID, c.SectorID, c.Code, c.Used,
			encodeTimePtr(c.UsedAt), c.ValidatedBy, c.Synced,
		)
		if err != nil {
			return fmt.Errorf("insert code %s: %w", c.ID, err)
		}
	}
	return nil
}

func (r *SyncRepository) SetSetting(ctx context.Context, key, value string) error {
	return setSetting(ctx, r.db, key, value)
}
