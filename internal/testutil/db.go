// Package testutil provides database fixtures shared by repository and
// service tests. Everything runs against a real file-backed store in a
// per-test temp dir, so tests exercise the same pragmas and cascades as
// production.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/inovatickets/validador/internal/domain"
	"github.com/inovatickets/validador/internal/storage/sqlite"
	"github.com/inovatickets/validador/migrations"
)

// OpenDB opens a migrated throwaway database. Cleanup is registered on t.
func OpenDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "validador.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})

	if err := migrations.Apply(context.Background(), db.Conn()); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

// InsertEvent seeds one event row.
func InsertEvent(t *testing.T, db *sqlite.DB, e domain.Event) {
	t.Helper()

	if e.Status == "" {
		e.Status = domain.EventStatusInactive
	}
	_, err := db.Conn().Exec(`
INSERT INTO events (id, name, date, time, status, venue_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Date, e.Time, string(e.Status), e.VenueID,
		e.CreatedAt.UTC().Format(time.RFC3339), e.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("insert event %s: %v", e.ID, err)
	}
}

// InsertSector seeds one sector row.
func InsertSector(t *testing.T, db *sqlite.DB, s domain.Sector) {
	t.Helper()

	_, err := db.Conn().Exec(`INSERT INTO sectors (id, event_id, name, active) VALUES (?, ?, ?, ?)`,
		s.ID, s.EventID, s.Name, s.Active)
	if err != nil {
		t.Fatalf("insert sector %s: %v", s.ID, err)
	}
}

// InsertCode seeds one ticket code row.
func InsertCode(t *testing.T, db *sqlite.DB, c domain.TicketCode) {
	t.Helper()

	var usedAt any
	if c.UsedAt != nil {
		usedAt = c.UsedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := db.Conn().Exec(`
INSERT INTO ticket_codes (id, event_id, sector_id, code, used, used_at, validated_by, synced)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.EventID, c.SectorID, c.Code, c.Used, usedAt, c.ValidatedBy, c.Synced)
	if err != nil {
		t.Fatalf("insert code %s: %v", c.ID, err)
	}
}

// SeedSnapshot inserts one event with a sector and an unused code, the
// minimum a validation test needs.
func SeedSnapshot(t *testing.T, db *sqlite.DB) (domain.Event, domain.Sector, domain.TicketCode) {
	t.Helper()

	event := domain.Event{ID: "ev-1", Name: "Opening Night", Date: "2026-09-01", Status: domain.EventStatusActive}
	sector := domain.Sector{ID: "sec-1", EventID: event.ID, Name: "Main Floor", Active: true}
	code := domain.TicketCode{ID: "tc-1", EventID: event.ID, SectorID: sector.ID, Code: "ABC123", Synced: true}

	InsertEvent(t, db, event)
	InsertSector(t, db, sector)
	InsertCode(t, db, code)
	return event, sector, code
}
