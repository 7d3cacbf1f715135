package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/inovatickets/validador/internal/domain"
)

// LogRepository persists the append-only audit trail.
type LogRepository struct {
	db *DB
}

func NewLogRepository(db *DB) *LogRepository {
	return &LogRepository{db: db}
}

func (r *LogRepository) InsertLog(ctx context.Context, entry domain.LogEntry) error {
	const stmt = `
INSERT INTO logs (id, action, event_id, code_id, details, user, timestamp, kind, synced)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.exec(ctx, stmt,
		entry.ID, entry.Action, entry.EventID, entry.CodeID, entry.Details,
		entry.User, encodeTime(entry.Timestamp), string(entry.Kind), entry.Synced,
	)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

func (r *LogRepository) ListLogs(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	const query = `
SELECT id, action, event_id, code_id, details, user, timestamp, kind, synced
FROM logs ORDER BY timestamp DESC LIMIT ?`

	rows, err := r.db.query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var out []domain.LogEntry
	for rows.Next() {
		var (
			e    domain.LogEntry
			ts   string
			kind string
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.EventID, &e.CodeID, &e.Details, &e.User, &ts, &kind, &e.Synced); err != nil {
			return nil, fmt.Errorf("list logs: %w", err)
		}
		e.Timestamp = decodeTime(ts)
		e.Kind = domain.LogKind(kind)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return out, nil
}

// PruneLogs deletes entries older than the cutoff and reports how many went.
func (r *LogRepository) PruneLogs(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.exec(ctx, `DELETE FROM logs WHERE timestamp < ?`, encodeTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune logs: rows affected: %w", err)
	}
	return int(n), nil
}
