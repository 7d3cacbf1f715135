package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inovatickets/validador/internal/clock"
	"github.com/inovatickets/validador/internal/domain"
)

// fakeSyncRepo keeps the whole snapshot in memory and records whether the
// replace happened inside a transaction.
type fakeSyncRepo struct {
	pending []domain.TicketCode
	synced  []string

	events  []domain.Event
	sectors []domain.Sector
	codes   []domain.TicketCode
	setting map[string]string

	cleared     bool
	inTx        bool
	clearedInTx bool

	pendingErr error
	markErr    error
	insertErr  error
}

func newFakeSyncRepo() *fakeSyncRepo {
	return &fakeSyncRepo{setting: make(map[string]string)}
}

func (f *fakeSyncRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.inTx = true
	defer func() { f.inTx = false }()
	return fn(ctx)
}

func (f *fakeSyncRepo) PendingCodes(context.Context) ([]domain.TicketCode, error) {
	return f.pending, f.pendingErr
}

func (f *fakeSyncRepo) MarkCodesSynced(_ context.Context, ids []string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.synced = append(f.synced, ids...)
	return nil
}

func (f *fakeSyncRepo) ClearSnapshot(context.Context) error {
	f.cleared = true
	f.clearedInTx = f.inTx
	f.events, f.sectors, f.codes = nil, nil, nil
	return nil
}

func (f *fakeSyncRepo) InsertEvents(_ context.Context, events []domain.Event) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeSyncRepo) InsertSectors(_ context.Context, sectors []domain.Sector) error {
	f.sectors = append(f.sectors, sectors...)
	return nil
}

func (f *fakeSyncRepo) InsertCodes(_ context.Context, codes []domain.TicketCode) error {
	f.codes = append(f.codes, codes...)
	return nil
}

func (f *fakeSyncRepo) SetSetting(_ context.Context, key, value string) error {
	f.setting[key] = value
	return nil
}

// fakeGateway serves canned backend responses.
type fakeGateway struct {
	events  []domain.Event
	sectors map[string][]domain.Sector
	codes   map[string][]domain.TicketCode

	uploaded [][]domain.TicketCode

	eventsErr  error
	sectorsErr error
	codesErr   error
	uploadErr  error
}

func (f *fakeGateway) FetchEvents(context.Context) ([]domain.Event, error) {
	return f.events, f.eventsErr
}

func (f *fakeGateway) FetchSectors(_ context.Context, eventID string) ([]domain.Sector, error) {
	return f.sectors[eventID], f.sectorsErr
}

func (f *fakeGateway) FetchTicketCodes(_ context.Context, eventID string) ([]domain.TicketCode, error) {
	return f.codes[eventID], f.codesErr
}

func (f *fakeGateway) UploadValidations(_ context.Context, codes []domain.TicketCode) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploaded = append(f.uploaded, codes)
	return nil
}

var syncNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newSyncServiceForTest(repo SyncRepository, gw Gateway, audit AuditLog) *SyncService {
	return NewSyncService(repo, gw, audit, clock.NewFixed(syncNow), discardLogger())
}

func backendFixture() *fakeGateway {
	return &fakeGateway{
		events: []domain.Event{
			{ID: "ev-1", Name: "Opening Night", Date: "2026-09-01"},
		},
		sectors: map[string][]domain.Sector{
			"ev-1": {{ID: "sec-1", EventID: "ev-1", Name: "Main Floor", Active: true}},
		},
		codes: map[string][]domain.TicketCode{
			"ev-1": {{ID: "tc-1", EventID: "ev-1", SectorID: "sec-1", Code: "ABC123"}},
		},
	}
}

func TestSyncService_SyncAll(t *testing.T) {
	ctx := context.Background()

	t.Run("full cycle", func(t *testing.T) {
		repo := newFakeSyncRepo()
		repo.pending = []domain.TicketCode{
			{ID: "tc-9", EventID: "ev-1", Code: "OLD", Used: true, ValidatedBy: "gate-1"},
		}
		gw := backendFixture()
		audit := &fakeAudit{}
		svc := newSyncServiceForTest(repo, gw, audit)

		res, err := svc.SyncAll(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Uploaded)
		assert.Equal(t, 1, res.Events)
		assert.Equal(t, 1, res.Sectors)
		assert.Equal(t, 1, res.Codes)
		assert.False(t, res.Skipped)
		assert.True(t, res.SyncedAt.Equal(syncNow))

		require.Len(t, gw.uploaded, 1)
		assert.Equal(t, "tc-9", gw.uploaded[0][0].ID)
		assert.Equal(t, []string{"tc-9"}, repo.synced)

		assert.True(t, repo.clearedInTx, "replace must run inside one transaction")
		require.Len(t, repo.codes, 1)
		assert.True(t, repo.codes[0].Synced, "downloaded codes arrive acknowledged")
		assert.Equal(t, syncNow.Format(time.RFC3339), repo.setting[domain.SettingLastSync])
		assert.Equal(t, domain.LogKindSuccess, audit.lastKind())
	})

	t.Run("upload failure aborts everything", func(t *testing.T) {
		repo := newFakeSyncRepo()
		repo.pending = []domain.TicketCode{{ID: "tc-9", Used: true}}
		gw := backendFixture()
		gw.uploadErr = errors.New("backend down")
		audit := &fakeAudit{}
		svc := newSyncServiceForTest(repo, gw, audit)

		_, err := svc.SyncAll(ctx)
		require.Error(t, err)
		assert.False(t, repo.cleared, "a failed upload must leave the snapshot alone")
		assert.Empty(t, repo.synced, "pending rows stay pending")
		assert.Equal(t, domain.LogKindError, audit.lastKind())
	})

	t.Run("event download failure aborts", func(t *testing.T) {
		repo := newFakeSyncRepo()
		gw := backendFixture()
		gw.eventsErr = errors.New("timeout")
		svc := newSyncServiceForTest(repo, gw, &fakeAudit{})

		_, err := svc.SyncAll(ctx)
		require.Error(t, err)
		assert.False(t, repo.cleared)
	})

	t.Run("code download failure aborts before clearing", func(t *testing.T) {
		repo := newFakeSyncRepo()
		gw := backendFixture()
		gw.codesErr = errors.New("timeout")
		svc := newSyncServiceForTest(repo, gw, &fakeAudit{})

		_, err := svc.SyncAll(ctx)
		require.Error(t, err)
		assert.False(t, repo.cleared, "no partial snapshot on a failed download")
	})

	t.Run("no events skips the replace", func(t *testing.T) {
		repo := newFakeSyncRepo()
		gw := backendFixture()
		gw.events = nil
		svc := newSyncServiceForTest(repo, gw, &fakeAudit{})

		res, err := svc.SyncAll(ctx)
		require.NoError(t, err)
		assert.True(t, res.Skipped)
		assert.False(t, repo.cleared, "empty backend must not wipe the device")
	})

	t.Run("malformed events are dropped", func(t *testing.T) {
		repo := newFakeSyncRepo()
		gw := backendFixture()
		gw.events = append(gw.events, domain.Event{ID: "ev-bad"}) // no name, no date
		svc := newSyncServiceForTest(repo, gw, &fakeAudit{})

		res, err := svc.SyncAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Events)
		require.Len(t, repo.events, 1)
		assert.Equal(t, "ev-1", repo.events[0].ID)
	})

	t.Run("nothing pending uploads nothing", func(t *testing.T) {
		repo := newFakeSyncRepo()
		gw := backendFixture()
		svc := newSyncServiceForTest(repo, gw, &fakeAudit{})

		res, err := svc.SyncAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Uploaded)
		assert.Empty(t, gw.uploaded)
	})

	t.Run("back-to-back sync is idempotent", func(t *testing.T) {
		repo := newFakeSyncRepo()
		gw := backendFixture()
		svc := newSyncServiceForTest(repo, gw, &fakeAudit{})

		first, err := svc.SyncAll(ctx)
		require.NoError(t, err)
		second, err := svc.SyncAll(ctx)
		require.NoError(t, err)

		assert.Equal(t, first.Events, second.Events)
		assert.Equal(t, first.Codes, second.Codes)
		assert.Equal(t, 0, second.Uploaded)
		require.Len(t, repo.codes, 1, "replace keeps exactly one copy of the snapshot")
	})
}
