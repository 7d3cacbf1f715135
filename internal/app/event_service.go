package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inovatickets/validador/internal/domain"
)

type EventRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id string) (domain.Event, error)
	DeactivateAllEvents(ctx context.Context) error
	SetEventStatus(ctx context.Context, id string, status domain.EventStatus) error
	ClearEvents(ctx context.Context) error
	ListSectors(ctx context.Context, eventID string) ([]domain.Sector, error)
	CountCodes(ctx context.Context, eventID string) (total, used int, err error)
	CountPendingCodes(ctx context.Context) (int, error)
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// EventService manages the device's local selection: which event is being
// worked and which sectors this station admits into.
type EventService struct {
	repo     EventRepository
	audit    AuditLog
	operator string
	log      *slog.Logger
}

func NewEventService(repo EventRepository, audit AuditLog, operator string, log *slog.Logger) *EventService {
	return &EventService{
		repo:     repo,
		audit:    audit,
		operator: operator,
		log:      log,
	}
}

func (s *EventService) List(ctx context.Context) ([]domain.Event, error) {
	const op = "event.List"

	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

// Activate selects the working event: exactly one event is active locally
// at a time. The permitted-sector selection is cleared because it belonged
// to the previous event; validation stays closed until the operator picks
// sectors again.
func (s *EventService) Activate(ctx context.Context, id string) error {
	const op = "event.Activate"

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetEvent(txCtx, id); err != nil {
			return err
		}
		if err := s.repo.DeactivateAllEvents(txCtx); err != nil {
			return err
		}
		if err := s.repo.SetEventStatus(txCtx, id, domain.EventStatusActive); err != nil {
			return err
		}
		if err := s.repo.SetSetting(txCtx, domain.SettingActiveEvent, id); err != nil {
			return err
		}
		return s.repo.DeleteSetting(txCtx, domain.SettingPermittedSectors)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.recordAudit(ctx, id, domain.LogKindInfo, "event activated")
	return nil
}

// ActiveEvent resolves the locally selected event, nil when none is
// selected or the selection no longer exists after a sync.
func (s *EventService) ActiveEvent(ctx context.Context) (*domain.Event, error) {
	const op = "event.ActiveEvent"

	id, err := s.repo.GetSetting(ctx, domain.SettingActiveEvent)
	if err != nil {
		if errors.Is(err, domain.ErrSettingNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &event, nil
}

func (s *EventService) Sectors(ctx context.Context, eventID string) ([]domain.Sector, error) {
	const op = "event.Sectors"

	sectors, err := s.repo.ListSectors(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sectors, nil
}

// AllowSectors persists the station's sector assignment for the active
// event. Every id must name a sector of that event, and at least one is
// required: an empty selection keeps the station closed.
func (s *EventService) AllowSectors(ctx context.Context, ids []string) error {
	const op = "event.AllowSectors"

	if len(ids) == 0 {
		return fmt.Errorf("%s: at least one sector required", op)
	}

	active, err := s.ActiveEvent(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if active == nil {
		return fmt.Errorf("%s: %w", op, domain.ErrEventNotFound)
	}

	sectors, err := s.repo.ListSectors(ctx, active.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	known := make(map[string]bool, len(sectors))
	for _, sec := range sectors {
		known[sec.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("%s: sector %s: %w", op, id, domain.ErrSectorNotFound)
		}
	}

	if err := s.repo.SetSetting(ctx, domain.SettingPermittedSectors, strings.Join(ids, ",")); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Session assembles the operator context the validation engine works
// against: active event, permitted sectors, operator name.
func (s *EventService) Session(ctx context.Context) (domain.Session, error) {
	const op = "event.Session"

	session := domain.Session{Operator: s.operator}

	active, err := s.ActiveEvent(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if active == nil {
		return session, nil
	}
	session.EventID = active.ID

	raw, err := s.repo.GetSetting(ctx, domain.SettingPermittedSectors)
	if err != nil {
		if errors.Is(err, domain.ErrSettingNotFound) {
			return session, nil
		}
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			session.SectorIDs = append(session.SectorIDs, id)
		}
	}
	return session, nil
}

// ClearCache drops the whole local snapshot. Destructive: unsynced
// validations go with it, so callers gate this behind an explicit confirm.
func (s *EventService) ClearCache(ctx context.Context) error {
	const op = "event.ClearCache"

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.ClearEvents(txCtx); err != nil {
			return err
		}
		if err := s.repo.DeleteSetting(txCtx, domain.SettingActiveEvent); err != nil {
			return err
		}
		return s.repo.DeleteSetting(txCtx, domain.SettingPermittedSectors)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.recordAudit(ctx, "", domain.LogKindWarning, "local cache cleared")
	return nil
}

type StatusReport struct {
	ActiveEvent      *domain.Event
	PermittedSectors []string
	Operator         string
	TotalCodes       int
	UsedCodes        int
	PendingUploads   int
	LastSync         time.Time
}

// Status summarizes the device state for the operator.
func (s *EventService) Status(ctx context.Context) (StatusReport, error) {
	const op = "event.Status"

	session, err := s.Session(ctx)
	if err != nil {
		return StatusReport{}, fmt.Errorf("%s: %w", op, err)
	}

	report := StatusReport{
		PermittedSectors: session.SectorIDs,
		Operator:         session.Operator,
	}

	if session.EventID != "" {
		event, err := s.repo.GetEvent(ctx, session.EventID)
		if err != nil && !errors.Is(err, domain.ErrEventNotFound) {
			return StatusReport{}, fmt.Errorf("%s: %w", op, err)
		}
		if err == nil {
			report.ActiveEvent = &event
			total, used, err := s.repo.CountCodes(ctx, event.ID)
			if err != nil {
				return StatusReport{}, fmt.Errorf("%s: %w", op, err)
			}
			report.TotalCodes = total
			report.UsedCodes = used
		}
	}

	pending, err := s.repo.CountPendingCodes(ctx)
	if err != nil {
		return StatusReport{}, fmt.Errorf("%s: %w", op, err)
	}
	report.PendingUploads = pending

	if raw, err := s.repo.GetSetting(ctx, domain.SettingLastSync); err == nil {
		if t, perr := time.Parse(time.RFC3339, raw); perr == nil {
			report.LastSync = t
		}
	} else if !errors.Is(err, domain.ErrSettingNotFound) {
		return StatusReport{}, fmt.Errorf("%s: %w", op, err)
	}

	return report, nil
}

func (s *EventService) recordAudit(ctx context.Context, eventID string, kind domain.LogKind, details string) {
	err := s.audit.Record(ctx, domain.LogEntry{
		Action:  "session",
		EventID: eventID,
		Details: details,
		User:    s.operator,
		Kind:    kind,
	})
	if err != nil {
		s.log.Warn("audit record failed", "op", "event.recordAudit", "err", err)
	}
}
