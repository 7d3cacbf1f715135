package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inovatickets/validador/internal/domain"
	"github.com/inovatickets/validador/internal/storage/sqlite"
	"github.com/inovatickets/validador/internal/testutil"
)

func TestSyncRepository_PendingCodes(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := sqlite.NewSyncRepository(db)

	event, sector, _ := testutil.SeedSnapshot(t, db) // seeded code is synced
	now := time.Now().UTC()
	testutil.InsertCode(t, db, domain.TicketCode{
		ID: "tc-b", EventID: event.ID, SectorID: sector.ID, Code: "B",
		Used: true, UsedAt: &now, ValidatedBy: "gate-1",
	})
	testutil.InsertCode(t, db, domain.TicketCode{
		ID: "tc-a", EventID: event.ID, SectorID: sector.ID, Code: "A",
		Used: true, UsedAt: &now, ValidatedBy: "gate-1",
	})

	pending, err := repo.PendingCodes(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "tc-a", pending[0].ID)
	assert.Equal(t, "tc-b", pending[1].ID)

	t.Run("mark synced empties the queue", func(t *testing.T) {
		require.NoError(t, repo.MarkCodesSynced(ctx, []string{"tc-a", "tc-b"}))

		pending, err := repo.PendingCodes(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}

func TestSyncRepository_SnapshotReplace(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := sqlite.NewSyncRepository(db)

	testutil.SeedSnapshot(t, db)

	fresh := domain.Event{ID: "ev-9", Name: "Fresh", Date: "2026-10-01"}
	usedAt := time.Date(2026, 9, 30, 18, 0, 0, 0, time.UTC)
	err := repo.WithTx(ctx, func(ctx context.Context) error {
		if err := repo.ClearSnapshot(ctx); err != nil {
			return err
		}
		if err := repo.InsertEvents(ctx, []domain.Event{fresh}); err != nil {
			return err
		}
		if err := repo.InsertSectors(ctx, []domain.Sector{
			{ID: "sec-9", EventID: fresh.ID, Name: "Pit", Active: true},
		}); err != nil {
			return err
		}
		if err := repo.InsertCodes(ctx, []domain.TicketCode{
			{ID: "tc-9", EventID: fresh.ID, SectorID: "sec-9", Code: "Z9", Used: true, UsedAt: &usedAt, Synced: true},
		}); err != nil {
			return err
		}
		return repo.SetSetting(ctx, domain.SettingLastSync, "2026-10-01T12:00:00Z")
	})
	require.NoError(t, err)

	var events, codes int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM events`).Scan(&events))
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM ticket_codes`).Scan(&codes))
	assert.Equal(t, 1, events, "old snapshot must be gone")
	assert.Equal(t, 1, codes)

	got, err := sqlite.NewCodeRepository(db).FindCode(ctx, fresh.ID, "Z9")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Used)
	assert.True(t, got.Synced)
	require.NotNil(t, got.UsedAt)
	assert.True(t, got.UsedAt.Equal(usedAt))
}

func TestSyncRepository_ReplaceRollsBackAsOne(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := sqlite.NewSyncRepository(db)

	testutil.SeedSnapshot(t, db)

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(ctx context.Context) error {
		if err := repo.ClearSnapshot(ctx); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var events int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM events`).Scan(&events))
	assert.Equal(t, 1, events, "failed replace must leave the old snapshot intact")
}
