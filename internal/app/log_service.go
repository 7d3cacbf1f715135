package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/inovatickets/validador/internal/clock"
	"github.com/inovatickets/validador/internal/domain"
)

type LogStore interface {
	InsertLog(ctx context.Context, entry domain.LogEntry) error
	ListLogs(ctx context.Context, limit int) ([]domain.LogEntry, error)
	PruneLogs(ctx context.Context, cutoff time.Time) (int, error)
}

// LogService owns the device's audit trail.
type LogService struct {
	store LogStore
	clock clock.Clock
	log   *slog.Logger
}

func NewLogService(store LogStore, clk clock.Clock, log *slog.Logger) *LogService {
	return &LogService{
		store: store,
		clock: clk,
		log:   log,
	}
}

// Record appends an entry, filling id and timestamp when absent.
func (s *LogService) Record(ctx context.Context, entry domain.LogEntry) error {
	const op = "log.Record"

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.clock.Now()
	}
	if entry.Kind == "" {
		entry.Kind = domain.LogKindInfo
	}

	if err := s.store.InsertLog(ctx, entry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *LogService) List(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	const op = "log.List"

	if limit <= 0 {
		limit = 50
	}
	entries, err := s.store.ListLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// Prune drops entries older than the retention window.
func (s *LogService) Prune(ctx context.Context, retention time.Duration) (int, error) {
	const op = "log.Prune"

	cutoff := s.clock.Now().Add(-retention)
	n, err := s.store.PruneLogs(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		s.log.Info("pruned audit log", "op", op, "removed", n, "cutoff", cutoff)
	}
	return n, nil
}
