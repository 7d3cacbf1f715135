package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/inovatickets/validador/internal/domain"
)

// CodeRepository serves the validation engine.
type CodeRepository struct {
	db *DB
}

func NewCodeRepository(db *DB) *CodeRepository {
	return &CodeRepository{db: db}
}

func (r *CodeRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithTx(ctx, fn)
}

const codeColumns = `id, event_id, sector_id, code, used, used_at, validated_by, synced`

// FindCode looks a ticket up by its scanned value, scoped to one event.
// The same code string may exist under other events and must not match.
// Returns nil when no row exists.
func (r *CodeRepository) FindCode(ctx context.Context, eventID, code string) (*domain.TicketCode, error) {
	query := `SELECT ` + codeColumns + ` FROM ticket_codes WHERE event_id = ? AND code = ?`

	tc, err := scanCode(r.db.queryRow(ctx, query, eventID, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find code: %w", err)
	}
	return &tc, nil
}

// MarkCodeUsed flips used on the given row if and only if it is still
// unused, clearing the synced flag in the same statement. The returned bool
// reports whether this caller won; a false result means a concurrent
// validation got there first.
func (r *CodeRepository) MarkCodeUsed(ctx context.Context, id string, usedAt time.Time, operator string) (bool, error) {
	const stmt = `
UPDATE ticket_codes
SET used = 1, used_at = ?, validated_by = ?, synced = 0
WHERE id = ? AND used = 0`

	res, err := r.db.exec(ctx, stmt, encodeTime(usedAt), operator, id)
	if err != nil {
		return false, fmt.Errorf("mark code used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark code used: rows affected: %w", err)
	}
	return n == 1, nil
}

// CountValidatedBy reports how many tickets of the event this operator has
// admitted. The figure is derived, never stored.
func (r *CodeRepository) CountValidatedBy(ctx context.Context, eventID, operator string) (int, error) {
	const query = `
SELECT COUNT(*) FROM ticket_codes
WHERE event_id = ? AND used = 1 AND validated_by = ?`

	var n int
	if err := r.db.queryRow(ctx, query, eventID, operator).Scan(&n); err != nil {
		return 0, fmt.Errorf("count validated: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCode(row rowScanner) (domain.TicketCode, error) {
	var (
		tc     domain.TicketCode
		usedAt sql.NullString
	)
	err := row.Scan(&tc.ID, &tc.EventID, &tc.SectorID, &tc.Code, &tc.Used, &usedAt, &tc.ValidatedBy, &tc.Synced)
	if err != nil {
		return domain.TicketCode{}, err
	}
	tc.UsedAt = decodeTimePtr(usedAt)
	return tc, nil
}
