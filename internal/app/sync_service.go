package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inovatickets/validador/internal/clock"
	"github.com/inovatickets/validador/internal/domain"
)

type SyncRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	PendingCodes(ctx context.Context) ([]domain.TicketCode, error)
	MarkCodesSynced(ctx context.Context, ids []string) error
	ClearSnapshot(ctx context.Context) error
	InsertEvents(ctx context.Context, events []domain.Event) error
	InsertSectors(ctx context.Context, sectors []domain.Sector) error
	InsertCodes(ctx context.Context, codes []domain.TicketCode) error
	SetSetting(ctx context.Context, key, value string) error
}

// Gateway is the remote side of reconciliation.
type Gateway interface {
	FetchEvents(ctx context.Context) ([]domain.Event, error)
	FetchSectors(ctx context.Context, eventID string) ([]domain.Sector, error)
	FetchTicketCodes(ctx context.Context, eventID string) ([]domain.TicketCode, error)
	UploadValidations(ctx context.Context, codes []domain.TicketCode) error
}

// SyncService drives bidirectional reconciliation: push local validations
// up, then rebuild the local snapshot from the backend's current state.
type SyncService struct {
	repo    SyncRepository
	gateway Gateway
	audit   AuditLog
	clock   clock.Clock
	log     *slog.Logger
}

func NewSyncService(repo SyncRepository, gateway Gateway, audit AuditLog, clk clock.Clock, log *slog.Logger) *SyncService {
	return &SyncService{
		repo:    repo,
		gateway: gateway,
		audit:   audit,
		clock:   clk,
		log:     log,
	}
}

type SyncResult struct {
	Uploaded int
	Events   int
	Sectors  int
	Codes    int
	// Skipped is true when the backend returned no usable events; nothing
	// local was replaced and that is not a failure.
	Skipped  bool
	SyncedAt time.Time
}

// SyncAll runs one full reconciliation:
//
//  1. Upload tickets whose state the backend hasn't acknowledged. Any
//     failure aborts the whole sync: a stale backend snapshot must never
//     overwrite validations that haven't been pushed.
//  2. Download the event catalog, dropping malformed rows. An empty result
//     ends the sync cleanly.
//  3. Download each event's sectors and codes, then swap the whole local
//     snapshot in one transaction and stamp the last-sync setting.
//
// Running it twice back-to-back with no local scans in between is a no-op:
// nothing pending, identical snapshot.
func (s *SyncService) SyncAll(ctx context.Context) (SyncResult, error) {
	const op = "sync.SyncAll"
	log := s.log.With("op", op)

	var result SyncResult

	uploaded, err := s.uploadPending(ctx)
	if err != nil {
		s.record(ctx, domain.LogKindError, fmt.Sprintf("upload failed: %v", err))
		return SyncResult{}, fmt.Errorf("%s: %w", op, err)
	}
	result.Uploaded = uploaded

	events, err := s.gateway.FetchEvents(ctx)
	if err != nil {
		s.record(ctx, domain.LogKindError, fmt.Sprintf("event download failed: %v", err))
		return SyncResult{}, fmt.Errorf("%s: fetch events: %w", op, err)
	}
	valid := events[:0]
	for _, e := range events {
		if e.Valid() {
			valid = append(valid, e)
		} else {
			log.Warn("dropping malformed event row", "id", e.ID)
		}
	}
	if len(valid) == 0 {
		log.Info("no events to sync")
		result.Skipped = true
		return result, nil
	}

	// Complete every download before touching the local store, so a failed
	// fetch can never leave a table cleared without its replacement.
	var (
		sectors []domain.Sector
		codes   []domain.TicketCode
	)
	for _, e := range valid {
		evSectors, err := s.gateway.FetchSectors(ctx, e.ID)
		if err != nil {
			s.record(ctx, domain.LogKindError, fmt.Sprintf("sector download failed: %v", err))
			return SyncResult{}, fmt.Errorf("%s: fetch sectors for %s: %w", op, e.ID, err)
		}
		sectors = append(sectors, evSectors...)

		evCodes, err := s.gateway.FetchTicketCodes(ctx, e.ID)
		if err != nil {
			s.record(ctx, domain.LogKindError, fmt.Sprintf("code download failed: %v", err))
			return SyncResult{}, fmt.Errorf("%s: fetch codes for %s: %w", op, e.ID, err)
		}
		for i := range evCodes {
			// Anything the backend hands out already reflects its own state.
			evCodes[i].Synced = true
		}
		codes = append(codes, evCodes...)
	}

	now := s.clock.Now()
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.ClearSnapshot(txCtx); err != nil {
			return err
		}
		if err := s.repo.InsertEvents(txCtx, valid); err != nil {
			return err
		}
		if err := s.repo.InsertSectors(txCtx, sectors); err != nil {
			return err
		}
		if err := s.repo.InsertCodes(txCtx, codes); err != nil {
			return err
		}
		return s.repo.SetSetting(txCtx, domain.SettingLastSync, now.UTC().Format(time.RFC3339))
	})
	if err != nil {
		s.record(ctx, domain.LogKindError, fmt.Sprintf("snapshot replace failed: %v", err))
		return SyncResult{}, fmt.Errorf("%s: replace snapshot: %w", op, err)
	}

	result.Events = len(valid)
	result.Sectors = len(sectors)
	result.Codes = len(codes)
	result.SyncedAt = now

	log.Info("sync complete",
		"uploaded", result.Uploaded,
		"events", result.Events,
		"sectors", result.Sectors,
		"codes", result.Codes,
	)
	s.record(ctx, domain.LogKindSuccess, fmt.Sprintf(
		"sync complete: uploaded=%d events=%d sectors=%d codes=%d",
		result.Uploaded, result.Events, result.Sectors, result.Codes,
	))
	return result, nil
}

// uploadPending pushes locally-validated tickets and marks them synced once
// the backend acknowledges. Uploads are merge-by-id, so re-sending after a
// lost response cannot create duplicates.
func (s *SyncService) uploadPending(ctx context.Context) (int, error) {
	pending, err := s.repo.PendingCodes(ctx)
	if err != nil {
		return 0, fmt.Errorf("pending codes: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	if err := s.gateway.UploadValidations(ctx, pending); err != nil {
		return 0, fmt.Errorf("upload pending: %w", err)
	}

	ids := make([]string, 0, len(pending))
	for _, tc := range pending {
		ids = append(ids, tc.ID)
	}
	if err := s.repo.MarkCodesSynced(ctx, ids); err != nil {
		return 0, fmt.Errorf("mark synced: %w", err)
	}
	return len(pending), nil
}

func (s *SyncService) record(ctx context.Context, kind domain.LogKind, details string) {
	err := s.audit.Record(ctx, domain.LogEntry{
		Action:  "sync",
		Details: details,
		Kind:    kind,
	})
	if err != nil {
		s.log.Warn("audit record failed", "op", "sync.record", "err", err)
	}
}
