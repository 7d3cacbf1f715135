package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/inovatickets/validador/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAudit collects audit entries in memory.
type fakeAudit struct {
	entries []domain.LogEntry
	err     error
}

func (f *fakeAudit) Record(_ context.Context, entry domain.LogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) lastKind() domain.LogKind {
	if len(f.entries) == 0 {
		return ""
	}
	return f.entries[len(f.entries)-1].Kind
}

// fakeCodeRepo backs ValidationService tests with a map of tickets.
type fakeCodeRepo struct {
	codes map[string]*domain.TicketCode // keyed by id

	findErr error
	markErr error
	// stolenBy, when set, flips the code used between FindCode and
	// MarkCodeUsed, simulating a concurrent winner.
	stolenBy string
	// vanish, when set, removes the row at MarkCodeUsed time, simulating a
	// concurrent snapshot replace.
	vanish bool
}

func newFakeCodeRepo(codes ...domain.TicketCode) *fakeCodeRepo {
	f := &fakeCodeRepo{codes: make(map[string]*domain.TicketCode)}
	for i := range codes {
		c := codes[i]
		f.codes[c.ID] = &c
	}
	return f
}

func (f *fakeCodeRepo) FindCode(_ context.Context, eventID, code string) (*domain.TicketCode, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, tc := range f.codes {
		if tc.EventID == eventID && tc.Code == code {
			copied := *tc
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeCodeRepo) MarkCodeUsed(_ context.Context, id string, usedAt time.Time, operator string) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	tc, ok := f.codes[id]
	if !ok {
		return false, nil
	}
	if f.vanish {
		delete(f.codes, id)
		return false, nil
	}
	if f.stolenBy != "" && !tc.Used {
		stolenAt := usedAt.Add(-time.Second)
		tc.Used = true
		tc.UsedAt = &stolenAt
		tc.ValidatedBy = f.stolenBy
	}
	if tc.Used {
		return false, nil
	}
	tc.Used = true
	tc.UsedAt = &usedAt
	tc.ValidatedBy = operator
	tc.Synced = false
	return true, nil
}

func (f *fakeCodeRepo) CountValidatedBy(_ context.Context, eventID, operator string) (int, error) {
	n := 0
	for _, tc := range f.codes {
		if tc.EventID == eventID && tc.Used && tc.ValidatedBy == operator {
			n++
		}
	}
	return n, nil
}
