package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inovatickets/validador/internal/clock"
	"github.com/inovatickets/validador/internal/domain"
)

// Outcome is the result of scanning one code. Rejections are expected
// behavior, not errors: each maps to its own operator feedback and none of
// them touches storage.
type Outcome string

const (
	OutcomeAccepted         Outcome = "accepted"
	OutcomeNoActiveEvent    Outcome = "no_active_event"
	OutcomeInvalidCode      Outcome = "invalid_code"
	OutcomeSectorNotAllowed Outcome = "sector_not_allowed"
	OutcomeAlreadyUsed      Outcome = "already_used"
)

type ValidationRepository interface {
	FindCode(ctx context.Context, eventID, code string) (*domain.TicketCode, error)
	MarkCodeUsed(ctx context.Context, id string, usedAt time.Time, operator string) (bool, error)
	CountValidatedBy(ctx context.Context, eventID, operator string) (int, error)
}

// AuditLog is the narrow slice of LogService the engines append through.
type AuditLog interface {
	Record(ctx context.Context, entry domain.LogEntry) error
}

// ValidationService decides accept/reject for scanned codes against the
// local snapshot. It never talks to the network; an offline gate keeps
// admitting.
type ValidationService struct {
	repo  ValidationRepository
	audit AuditLog
	clock clock.Clock
	log   *slog.Logger
}

func NewValidationService(repo ValidationRepository, audit AuditLog, clk clock.Clock, log *slog.Logger) *ValidationService {
	return &ValidationService{
		repo:  repo,
		audit: audit,
		clock: clk,
		log:   log,
	}
}

type ValidationResult struct {
	Outcome Outcome
	// Code is the matched ticket, populated for accepted, already-used and
	// sector-not-allowed outcomes.
	Code *domain.TicketCode
	// UsedAt carries the original validation instant for already-used
	// tickets, for operator display.
	UsedAt *time.Time
	// Validated is this operator's admission tally for the event,
	// recomputed after each accepted scan.
	Validated int
}

// Validate runs the ticket state machine for one scanned code. The only
// write is a compare-and-swap on the ticket's used flag, so two scans
// racing on the same code yield exactly one accepted outcome.
func (s *ValidationService) Validate(ctx context.Context, session domain.Session, code string) (ValidationResult, error) {
	const op = "validation.Validate"

	if session.EventID == "" {
		s.record(ctx, session, domain.LogKindWarning, "", "no active event")
		return ValidationResult{Outcome: OutcomeNoActiveEvent}, nil
	}

	tc, err := s.repo.FindCode(ctx, session.EventID, code)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if tc == nil {
		s.record(ctx, session, domain.LogKindWarning, "", "code not found: "+code)
		return ValidationResult{Outcome: OutcomeInvalidCode}, nil
	}

	if !session.AllowsSector(tc.SectorID) {
		details := "sector not allowed: " + tc.SectorID
		if len(session.SectorIDs) == 0 {
			details = "no sectors selected"
		}
		s.record(ctx, session, domain.LogKindWarning, tc.ID, details)
		return ValidationResult{Outcome: OutcomeSectorNotAllowed, Code: tc}, nil
	}

	if tc.Used {
		s.record(ctx, session, domain.LogKindWarning, tc.ID, "code already used")
		return ValidationResult{Outcome: OutcomeAlreadyUsed, Code: tc, UsedAt: tc.UsedAt}, nil
	}

	now := s.clock.Now()
	won, err := s.repo.MarkCodeUsed(ctx, tc.ID, now, session.Operator)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if !won {
		// A concurrent scan flipped the flag between our read and the swap.
		current, err := s.repo.FindCode(ctx, session.EventID, code)
		if err != nil {
			return ValidationResult{}, fmt.Errorf("%s: %w", op, err)
		}
		if current == nil {
			// The row vanished under us; only a concurrent full sync does that.
			s.record(ctx, session, domain.LogKindWarning, tc.ID, "code removed during validation")
			return ValidationResult{Outcome: OutcomeInvalidCode}, nil
		}
		s.record(ctx, session, domain.LogKindWarning, current.ID, "code already used")
		return ValidationResult{Outcome: OutcomeAlreadyUsed, Code: current, UsedAt: current.UsedAt}, nil
	}

	updated := *tc
	updated.Used = true
	updated.UsedAt = &now
	updated.ValidatedBy = session.Operator
	updated.Synced = false

	count, err := s.repo.CountValidatedBy(ctx, session.EventID, session.Operator)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("%s: %w", op, err)
	}

	s.record(ctx, session, domain.LogKindSuccess, tc.ID, "access granted")
	return ValidationResult{Outcome: OutcomeAccepted, Code: &updated, Validated: count}, nil
}

// Validated recomputes the operator's admission tally, used when the
// session (operator or active event) changes without a scan.
func (s *ValidationService) Validated(ctx context.Context, session domain.Session) (int, error) {
	const op = "validation.Validated"

	if session.EventID == "" {
		return 0, nil
	}
	count, err := s.repo.CountValidatedBy(ctx, session.EventID, session.Operator)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// record appends to the audit trail. Best effort: a full log table must not
// stop the gate.
func (s *ValidationService) record(ctx context.Context, session domain.Session, kind domain.LogKind, codeID, details string) {
	err := s.audit.Record(ctx, domain.LogEntry{
		Action:  "validate",
		EventID: session.EventID,
		CodeID:  codeID,
		Details: details,
		User:    session.Operator,
		Kind:    kind,
	})
	if err != nil {
		s.log.Warn("audit record failed", "op", "validation.record", "err", err)
	}
}
